package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS stars (
	hip        INTEGER PRIMARY KEY,
	magnitude  REAL NOT NULL,
	ra_deg     REAL NOT NULL,
	dec_deg    REAL NOT NULL,
	plx_mas    REAL NOT NULL,
	pmra_mas   REAL NOT NULL,
	pmdec_mas  REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS imports (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	star_count  INTEGER NOT NULL,
	imported_at TEXT NOT NULL
);
`

// SnapshotInfo describes the import that produced a SQLite snapshot.
type SnapshotInfo struct {
	ID         string
	Source     string
	StarCount  int
	ImportedAt time.Time
}

func openSnapshot(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to snapshot: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// WriteSQLite replaces the snapshot at path with stars, recording source as
// the import's origin.
func WriteSQLite(ctx context.Context, path, source string, stars []Star) (SnapshotInfo, error) {
	db, err := openSnapshot(path)
	if err != nil {
		return SnapshotInfo{}, err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, snapshotSchema); err != nil {
		return SnapshotInfo{}, fmt.Errorf("applying snapshot schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM stars"); err != nil {
		return SnapshotInfo{}, fmt.Errorf("clearing stars: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO stars (hip, magnitude, ra_deg, dec_deg, plx_mas, pmra_mas, pmdec_mas)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range stars {
		if _, err := stmt.ExecContext(ctx, s.HIP, s.Magnitude, s.RADegrees, s.DecDegrees,
			s.ParallaxMas, s.PMRAMasPerYear, s.PMDecMasPerYear); err != nil {
			return SnapshotInfo{}, fmt.Errorf("inserting HIP %d: %w", s.HIP, err)
		}
	}

	info := SnapshotInfo{
		ID:         uuid.Must(uuid.NewV7()).String(),
		Source:     source,
		StarCount:  len(stars),
		ImportedAt: time.Now().UTC().Truncate(time.Second),
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO imports (id, source, star_count, imported_at) VALUES (?, ?, ?, ?)",
		info.ID, info.Source, info.StarCount, info.ImportedAt.Format(time.RFC3339)); err != nil {
		return SnapshotInfo{}, fmt.Errorf("recording import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return SnapshotInfo{}, fmt.Errorf("committing import: %w", err)
	}
	return info, nil
}

// ReadSQLite loads every star from the snapshot at path in HIP order,
// together with the most recent import record.
func ReadSQLite(ctx context.Context, path string) ([]Star, SnapshotInfo, error) {
	// The driver would otherwise create an empty database.
	if _, err := os.Stat(path); err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("snapshot %s: %w", path, err)
	}
	db, err := openSnapshot(path)
	if err != nil {
		return nil, SnapshotInfo{}, err
	}
	defer db.Close()

	var info SnapshotInfo
	var importedAt string
	err = db.QueryRowContext(ctx,
		"SELECT id, source, star_count, imported_at FROM imports ORDER BY id DESC LIMIT 1").
		Scan(&info.ID, &info.Source, &info.StarCount, &importedAt)
	if err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("reading import record: %w", err)
	}
	if info.ImportedAt, err = time.Parse(time.RFC3339, importedAt); err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("parsing import time %q: %w", importedAt, err)
	}

	rows, err := db.QueryContext(ctx,
		"SELECT hip, magnitude, ra_deg, dec_deg, plx_mas, pmra_mas, pmdec_mas FROM stars ORDER BY hip")
	if err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("querying stars: %w", err)
	}
	defer rows.Close()

	stars := make([]Star, 0, info.StarCount)
	for rows.Next() {
		var s Star
		if err := rows.Scan(&s.HIP, &s.Magnitude, &s.RADegrees, &s.DecDegrees,
			&s.ParallaxMas, &s.PMRAMasPerYear, &s.PMDecMasPerYear); err != nil {
			return nil, SnapshotInfo{}, fmt.Errorf("scanning star: %w", err)
		}
		stars = append(stars, s)
	}
	if err := rows.Err(); err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("iterating stars: %w", err)
	}
	if len(stars) != info.StarCount {
		return nil, SnapshotInfo{}, fmt.Errorf("snapshot holds %d stars, import %s recorded %d",
			len(stars), info.ID, info.StarCount)
	}
	return stars, info, nil
}
