package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"roomrush/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) ReplaceDeals(ctx context.Context, deals []domain.Deal, fetchedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteDealsSQL); err != nil {
		return err
	}

	if len(deals) > 0 {
		values := make([]string, 0, len(deals))
		args := make([]any, 0, len(deals)*13)
		for i, d := range deals {
			values = append(values, "(?,?,?,?,?,?,?,?,?,?,?,?,?)")
			args = append(args,
				d.ID, i, d.Title, d.RoomName, d.LocationName,
				d.Price, d.OriginalPrice, d.RoomsLeft, d.Rating,
				d.ImageURL, d.Type, d.Lat, d.Lon,
			)
		}
		if _, err := tx.ExecContext(ctx, insertDealsPrefix+strings.Join(values, ","), args...); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, upsertMetaSQL, metaLastFetchedKey, fetchedAt.UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *Repo) LoadDeals(ctx context.Context) ([]domain.Deal, error) {
	rows, err := r.db.QueryContext(ctx, selectDealsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Deal
	for rows.Next() {
		var d domain.Deal
		if err := rows.Scan(
			&d.ID, &d.Title, &d.RoomName, &d.LocationName,
			&d.Price, &d.OriginalPrice, &d.RoomsLeft, &d.Rating,
			&d.ImageURL, &d.Type, &d.Lat, &d.Lon,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *Repo) LastFetched(ctx context.Context) (time.Time, error) {
	var v string
	err := r.db.QueryRowContext(ctx, selectMetaSQL, metaLastFetchedKey).Scan(&v)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}

// ToggleFavourite removes the pair if present, inserts it otherwise, and
// reports whether the deal is saved afterwards.
func (r *Repo) ToggleFavourite(ctx context.Context, userID, dealID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, deleteFavouriteSQL, userID, dealID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	saved := false
	if n == 0 {
		if _, err := tx.ExecContext(ctx, insertFavouriteSQL, userID, dealID); err != nil {
			return false, err
		}
		saved = true
	}
	return saved, tx.Commit()
}

func (r *Repo) ListFavourites(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, selectFavouritesSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
