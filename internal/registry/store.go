package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS scanned_files (
    path TEXT PRIMARY KEY,
    filename TEXT NOT NULL,
    format TEXT NOT NULL,
    format_detail TEXT NOT NULL DEFAULT '',
    dv_profile INTEGER NOT NULL DEFAULT 0,
    dv_el_type TEXT NOT NULL DEFAULT '',
    resolution TEXT NOT NULL DEFAULT '',
    audio_codec TEXT NOT NULL DEFAULT '',
    audio_bitrate_kbps INTEGER NOT NULL DEFAULT 0,
    video_bitrate_kbps INTEGER NOT NULL DEFAULT 0,
    duration_seconds REAL NOT NULL DEFAULT 0,
    file_size_bytes INTEGER NOT NULL DEFAULT 0,
    tmdb_id INTEGER NOT NULL DEFAULT 0,
    poster_url TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    year TEXT NOT NULL DEFAULT '',
    rating REAL NOT NULL DEFAULT 0,
    plot TEXT NOT NULL DEFAULT '',
    directors TEXT NOT NULL DEFAULT '[]',
    cast_members TEXT NOT NULL DEFAULT '[]',
    scanned_at TEXT NOT NULL DEFAULT ''
)`

// Store persists registry snapshots in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore initializes or connects to the registry database.
func OpenStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "registry.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Save replaces the stored snapshot with the given records in one
// transaction.
func (s *Store) Save(ctx context.Context, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM scanned_files"); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO scanned_files (
        path, filename, format, format_detail, dv_profile, dv_el_type,
        resolution, audio_codec, audio_bitrate_kbps, video_bitrate_kbps,
        duration_seconds, file_size_bytes, tmdb_id, poster_url, title, year,
        rating, plot, directors, cast_members, scanned_at
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		directors, err := json.Marshal(sliceOrEmpty(record.Directors))
		if err != nil {
			return fmt.Errorf("marshal directors for %s: %w", record.Path, err)
		}
		cast, err := json.Marshal(sliceOrEmpty(record.Cast))
		if err != nil {
			return fmt.Errorf("marshal cast for %s: %w", record.Path, err)
		}
		scannedAt := ""
		if !record.ScannedAt.IsZero() {
			scannedAt = record.ScannedAt.UTC().Format(time.RFC3339Nano)
		}
		if _, err := stmt.ExecContext(ctx,
			record.Path, record.Filename, record.Format, record.FormatDetail,
			record.DVProfile, record.DVELType, record.Resolution,
			record.AudioCodec, record.AudioBitrateKbps, record.VideoBitrateKbps,
			record.DurationSeconds, record.FileSizeBytes, record.TMDBID,
			record.PosterURL, record.Title, record.Year, record.Rating,
			record.Plot, string(directors), string(cast), scannedAt,
		); err != nil {
			return fmt.Errorf("insert record %s: %w", record.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Load reads the persisted snapshot ordered by path.
func (s *Store) Load(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
        path, filename, format, format_detail, dv_profile, dv_el_type,
        resolution, audio_codec, audio_bitrate_kbps, video_bitrate_kbps,
        duration_seconds, file_size_bytes, tmdb_id, poster_url, title, year,
        rating, plot, directors, cast_members, scanned_at
    FROM scanned_files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		var directors, cast, scannedAt string
		if err := rows.Scan(
			&record.Path, &record.Filename, &record.Format, &record.FormatDetail,
			&record.DVProfile, &record.DVELType, &record.Resolution,
			&record.AudioCodec, &record.AudioBitrateKbps, &record.VideoBitrateKbps,
			&record.DurationSeconds, &record.FileSizeBytes, &record.TMDBID,
			&record.PosterURL, &record.Title, &record.Year, &record.Rating,
			&record.Plot, &directors, &cast, &scannedAt,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if err := json.Unmarshal([]byte(directors), &record.Directors); err != nil {
			return nil, fmt.Errorf("decode directors for %s: %w", record.Path, err)
		}
		if err := json.Unmarshal([]byte(cast), &record.Cast); err != nil {
			return nil, fmt.Errorf("decode cast for %s: %w", record.Path, err)
		}
		if scannedAt != "" {
			if parsed, err := time.Parse(time.RFC3339Nano, scannedAt); err == nil {
				record.ScannedAt = parsed
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}
	return records, nil
}

func sliceOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
