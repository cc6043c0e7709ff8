package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/you/go-dish-demand/internal/service"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS history_snapshots (
    id          TEXT    PRIMARY KEY,
    created_at  INTEGER NOT NULL,
    total_units INTEGER NOT NULL DEFAULT 0
);

-- one row per (snapshot, year, dish); positions keep the configured order
CREATE TABLE IF NOT EXISTS history_sales (
    snapshot_id TEXT    NOT NULL REFERENCES history_snapshots(id) ON DELETE CASCADE,
    year        INTEGER NOT NULL,
    year_pos    INTEGER NOT NULL,
    dish        TEXT    NOT NULL,
    dish_pos    INTEGER NOT NULL,
    units       INTEGER NOT NULL,
    PRIMARY KEY (snapshot_id, year_pos, dish_pos)
);

CREATE INDEX IF NOT EXISTS idx_snapshots_created ON history_snapshots(created_at DESC);
`

const retention = 30 * 24 * time.Hour

// SQLite stores epoch snapshots in a SQLite file (pure Go driver, no CGo).
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path, applies the schema and
// drops snapshots past retention.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store.NewSQLite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store.NewSQLite: enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store.NewSQLite: apply schema: %w", err)
	}

	s := &SQLite{db: db}
	s.pruneOld(context.Background(), time.Now())
	return s, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Save(ctx context.Context, snap service.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store.Save: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO history_snapshots (id, created_at, total_units) VALUES (?, ?, ?)`,
		snap.ID, snap.CreatedAt.UnixNano(), snap.Report.TotalUnits,
	); err != nil {
		return fmt.Errorf("store.Save: insert snapshot %s: %w", snap.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO history_sales (snapshot_id, year, year_pos, dish, dish_pos, units) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("store.Save: prepare: %w", err)
	}
	defer stmt.Close()

	for yi, yr := range snap.Report.ByYear {
		for di, rec := range yr.SalesByDish {
			if _, err := stmt.ExecContext(ctx, snap.ID, yr.Year, yi, rec.Dish, di, rec.Units); err != nil {
				return fmt.Errorf("store.Save: insert %d/%s: %w", yr.Year, rec.Dish, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store.Save: commit: %w", err)
	}
	return nil
}

func (s *SQLite) Latest(ctx context.Context) (service.Snapshot, bool, error) {
	var (
		snap    service.Snapshot
		created int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, total_units FROM history_snapshots ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	).Scan(&snap.ID, &created, &snap.Report.TotalUnits)
	if err == sql.ErrNoRows {
		return service.Snapshot{}, false, nil
	}
	if err != nil {
		return service.Snapshot{}, false, fmt.Errorf("store.Latest: query snapshot: %w", err)
	}
	snap.CreatedAt = time.Unix(0, created).UTC()

	rows, err := s.db.QueryContext(ctx,
		`SELECT year, year_pos, dish, units FROM history_sales
		 WHERE snapshot_id = ? ORDER BY year_pos, dish_pos`, snap.ID)
	if err != nil {
		return service.Snapshot{}, false, fmt.Errorf("store.Latest: query sales: %w", err)
	}
	defer rows.Close()

	lastPos := -1
	for rows.Next() {
		var (
			rec     service.SalesRecord
			yearPos int
		)
		if err := rows.Scan(&rec.Year, &yearPos, &rec.Dish, &rec.Units); err != nil {
			return service.Snapshot{}, false, fmt.Errorf("store.Latest: scan: %w", err)
		}
		if yearPos != lastPos {
			snap.Report.ByYear = append(snap.Report.ByYear, service.YearlyReport{Year: rec.Year})
			lastPos = yearPos
		}
		yr := &snap.Report.ByYear[len(snap.Report.ByYear)-1]
		yr.SalesByDish = append(yr.SalesByDish, rec)
	}
	if err := rows.Err(); err != nil {
		return service.Snapshot{}, false, fmt.Errorf("store.Latest: rows: %w", err)
	}
	return snap, true, nil
}

func (s *SQLite) pruneOld(ctx context.Context, now time.Time) {
	cutoff := now.Add(-retention).UnixNano()
	res, err := s.db.ExecContext(ctx, `DELETE FROM history_snapshots WHERE created_at < ?`, cutoff)
	if err != nil {
		slog.Warn("snapshot prune failed", "err", err)
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.Info("pruned old history snapshots", "count", n)
	}
}
