package bulk

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/SilviaTerra/BiometricsBits/pkg/constants"
	"github.com/SilviaTerra/BiometricsBits/pkg/errors"
	"github.com/SilviaTerra/BiometricsBits/pkg/inventory"
)

// Store persists downloaded state tables in a local SQLite database so
// repeat runs against the same state skip the multi-hundred-megabyte
// download.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS states (
	state      TEXT PRIMARY KEY,
	fetched_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS trees (
	state     TEXT NOT NULL,
	plot_cn   TEXT NOT NULL,
	tpa_unadj REAL,
	dia       REAL
);
CREATE INDEX IF NOT EXISTS trees_state ON trees (state);
CREATE TABLE IF NOT EXISTS plots (
	state  TEXT    NOT NULL,
	cn     TEXT    NOT NULL,
	plot   INTEGER NOT NULL,
	invyr  INTEGER NOT NULL,
	lat    REAL    NOT NULL,
	lon    REAL    NOT NULL
);
CREATE INDEX IF NOT EXISTS plots_state ON plots (state);
`

// OpenStore opens (creating if needed) the bulk store at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.WrapIO("migrate", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Fresh reports whether the state's tables are present and newer than the
// store TTL.
func (s *Store) Fresh(ctx context.Context, state string) (bool, error) {
	var fetchedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT fetched_at FROM states WHERE state = ?`, state).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.WrapIO("read", "states", err)
	}
	return time.Since(time.Unix(fetchedAt, 0)) < constants.BulkStoreTTL, nil
}

// ReplaceState atomically replaces the state's tables with fresh data.
func (s *Store) ReplaceState(ctx context.Context, state string, trees []inventory.TreeRecord, plots []plotRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapIO("begin", "bulk store", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM trees WHERE state = ?`,
		`DELETE FROM plots WHERE state = ?`,
		`DELETE FROM states WHERE state = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, state); err != nil {
			return errors.WrapIO("delete", "bulk store", err)
		}
	}

	treeStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO trees (state, plot_cn, tpa_unadj, dia) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errors.WrapIO("prepare", "trees", err)
	}
	defer func() { _ = treeStmt.Close() }()

	for _, t := range trees {
		var tpa, dia any
		if t.TPAUnadjusted != nil {
			tpa = *t.TPAUnadjusted
		}
		if t.Diameter != nil {
			dia = *t.Diameter
		}
		if _, err := treeStmt.ExecContext(ctx, state, t.PlotID, tpa, dia); err != nil {
			return errors.WrapIO("insert", "trees", err)
		}
	}

	plotStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO plots (state, cn, plot, invyr, lat, lon) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.WrapIO("prepare", "plots", err)
	}
	defer func() { _ = plotStmt.Close() }()

	for _, p := range plots {
		if _, err := plotStmt.ExecContext(ctx, state, p.CN, p.Plot, p.InvYear, p.Lat, p.Lon); err != nil {
			return errors.WrapIO("insert", "plots", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO states (state, fetched_at) VALUES (?, ?)`,
		state, time.Now().Unix()); err != nil {
		return errors.WrapIO("insert", "states", err)
	}

	return tx.Commit()
}

// Trees loads the state's tree records.
func (s *Store) Trees(ctx context.Context, state string) ([]inventory.TreeRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT plot_cn, tpa_unadj, dia FROM trees WHERE state = ?`, state)
	if err != nil {
		return nil, errors.WrapIO("read", "trees", err)
	}
	defer func() { _ = rows.Close() }()

	var trees []inventory.TreeRecord
	for rows.Next() {
		var (
			cn  string
			tpa sql.NullFloat64
			dia sql.NullFloat64
		)
		if err := rows.Scan(&cn, &tpa, &dia); err != nil {
			return nil, errors.WrapIO("scan", "trees", err)
		}

		tree := inventory.TreeRecord{PlotID: cn}
		if tpa.Valid {
			tree.TPAUnadjusted = inventory.Float64(tpa.Float64)
		}
		if dia.Valid {
			tree.Diameter = inventory.Float64(dia.Float64)
		}
		trees = append(trees, tree)
	}
	return trees, rows.Err()
}

// Plots loads the state's plot rows.
func (s *Store) Plots(ctx context.Context, state string) ([]plotRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cn, plot, invyr, lat, lon FROM plots WHERE state = ?`, state)
	if err != nil {
		return nil, errors.WrapIO("read", "plots", err)
	}
	defer func() { _ = rows.Close() }()

	var plots []plotRow
	for rows.Next() {
		var p plotRow
		if err := rows.Scan(&p.CN, &p.Plot, &p.InvYear, &p.Lat, &p.Lon); err != nil {
			return nil, errors.WrapIO("scan", "plots", err)
		}
		plots = append(plots, p)
	}
	return plots, rows.Err()
}
