//go:build integration || !unit

package mysql_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"roomrush/internal/domain"
	mysqlrepo "roomrush/internal/storage/mysql"
)

// ---------- small helpers ----------

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/sql)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)

	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

func startMySQL(t *testing.T) *sql.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}

	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=roomrush",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "roomrush")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)
	return db
}

func sampleDeals() []domain.Deal {
	return []domain.Deal{
		{ID: "HLBRU001", Title: "Grand Place Inn", RoomName: "Last-Minute Special", LocationName: "Brussels",
			Price: 95, OriginalPrice: 180, RoomsLeft: 2, Rating: 4.5,
			ImageURL: "https://example.com/a.jpg", Type: "Hotel", Lat: 50.8466, Lon: 4.3528},
		{ID: "HLBRU002", Title: "Sablon Suites", RoomName: "Last-Minute Special", LocationName: "Brussels",
			Price: 130, OriginalPrice: 200, RoomsLeft: 4, Rating: 4.2,
			ImageURL: "https://example.com/b.jpg", Type: "Hotel", Lat: 50.84, Lon: 4.355},
	}
}

// ---------- the tests ----------

func TestRepo_MySQL_ReplaceAndLoadSnapshot(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	fetchedAt := time.Now().UTC().Truncate(time.Second)
	if err := repo.ReplaceDeals(ctx, sampleDeals(), fetchedAt); err != nil {
		t.Fatalf("ReplaceDeals: %v", err)
	}

	got, err := repo.LoadDeals(ctx)
	if err != nil {
		t.Fatalf("LoadDeals: %v", err)
	}
	if len(got) != 2 || got[0].ID != "HLBRU001" || got[1].ID != "HLBRU002" {
		t.Fatalf("unexpected snapshot (order must survive): %+v", got)
	}
	if got[0].Price != 95 || got[0].OriginalPrice != 180 || got[0].LocationName != "Brussels" {
		t.Fatalf("unexpected first deal: %+v", got[0])
	}

	ts, err := repo.LastFetched(ctx)
	if err != nil {
		t.Fatalf("LastFetched: %v", err)
	}
	if !ts.Equal(fetchedAt) {
		t.Fatalf("LastFetched = %v, want %v", ts, fetchedAt)
	}

	// A second replace fully supersedes the previous snapshot.
	next := []domain.Deal{{ID: "HLANT001", Title: "Zoo Station Hotel", RoomName: "Last-Minute Special",
		LocationName: "Antwerp", Price: 88, OriginalPrice: 165, RoomsLeft: 1, Rating: 4.7,
		ImageURL: "https://example.com/c.jpg", Type: "Hotel", Lat: 51.2194, Lon: 4.4025}}
	if err := repo.ReplaceDeals(ctx, next, time.Now()); err != nil {
		t.Fatalf("ReplaceDeals #2: %v", err)
	}
	got, err = repo.LoadDeals(ctx)
	if err != nil {
		t.Fatalf("LoadDeals #2: %v", err)
	}
	if len(got) != 1 || got[0].ID != "HLANT001" {
		t.Fatalf("old snapshot not replaced: %+v", got)
	}
}

func TestRepo_MySQL_EmptySnapshotAndNoTimestamp(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	got, err := repo.LoadDeals(ctx)
	if err != nil {
		t.Fatalf("LoadDeals: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", got)
	}

	ts, err := repo.LastFetched(ctx)
	if err != nil {
		t.Fatalf("LastFetched: %v", err)
	}
	if !ts.IsZero() {
		t.Fatalf("expected zero timestamp before first fetch, got %v", ts)
	}

	// Replacing with an empty list is valid: it clears the table.
	if err := repo.ReplaceDeals(ctx, nil, time.Now()); err != nil {
		t.Fatalf("ReplaceDeals(empty): %v", err)
	}
}

func TestRepo_MySQL_ToggleFavourites(t *testing.T) {
	db := startMySQL(t)
	repo := mysqlrepo.New(db)
	ctx := context.Background()

	saved, err := repo.ToggleFavourite(ctx, "user-1", "HLBRU001")
	if err != nil {
		t.Fatalf("Toggle #1: %v", err)
	}
	if !saved {
		t.Fatalf("expected first toggle to save")
	}

	if _, err := repo.ToggleFavourite(ctx, "user-1", "HLBRU002"); err != nil {
		t.Fatalf("Toggle #2: %v", err)
	}

	ids, err := repo.ListFavourites(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListFavourites: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 favourites, got %v", ids)
	}

	// Toggling again removes it.
	saved, err = repo.ToggleFavourite(ctx, "user-1", "HLBRU001")
	if err != nil {
		t.Fatalf("Toggle #3: %v", err)
	}
	if saved {
		t.Fatalf("expected second toggle to unsave")
	}
	ids, _ = repo.ListFavourites(ctx, "user-1")
	if len(ids) != 1 || ids[0] != "HLBRU002" {
		t.Fatalf("unexpected favourites: %v", ids)
	}

	// Other users are unaffected.
	ids, _ = repo.ListFavourites(ctx, "user-2")
	if len(ids) != 0 {
		t.Fatalf("expected no favourites for user-2, got %v", ids)
	}
}
