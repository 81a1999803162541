package mysql

// The snapshot is replaced wholesale on every successful refresh, so the
// write path is delete-all-then-insert-all inside one transaction. `position`
// preserves upstream ordering on reload.

const deleteDealsSQL = `DELETE FROM deals`

const insertDealsPrefix = `
INSERT INTO deals
  (id, position, title, room_name, location_name, price, original_price,
   rooms_left, rating, image_url, type, lat, lon)
VALUES `

const selectDealsSQL = `
SELECT id, title, room_name, location_name, price, original_price,
       rooms_left, rating, image_url, type, lat, lon
FROM deals
ORDER BY position
`

const upsertMetaSQL = `
INSERT INTO meta (k, v) VALUES (?, ?)
ON DUPLICATE KEY UPDATE v = VALUES(v)
`

const selectMetaSQL = `SELECT v FROM meta WHERE k = ?`

const metaLastFetchedKey = "last_fetched_at"

const deleteFavouriteSQL = `DELETE FROM favourites WHERE user_id = ? AND deal_id = ?`

const insertFavouriteSQL = `INSERT INTO favourites (user_id, deal_id) VALUES (?, ?)`

const selectFavouritesSQL = `
SELECT deal_id FROM favourites WHERE user_id = ? ORDER BY created_at, deal_id
`
