package db

import (
	"database/sql"
	"time"

	"github.com/sworl/mill/internal/errors"
)

// SaveSnapshot stores (or replaces) the single persisted catalog snapshot.
// The payload is the raw creator graph JSON; fetchedAt marks freshness.
func SaveSnapshot(db *sql.DB, payload []byte, fetchedAt time.Time) error {
	query := `
		INSERT INTO catalog_snapshot (id, payload, fetched_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at
	`
	if _, err := db.Exec(query, string(payload), fetchedAt.Unix()); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// LoadSnapshot returns the persisted catalog snapshot and its fetch time.
// ok is false when no snapshot has been saved.
func LoadSnapshot(db *sql.DB) (payload []byte, fetchedAt time.Time, ok bool, err error) {
	var raw string
	var unix int64
	row := db.QueryRow(`SELECT payload, fetched_at FROM catalog_snapshot WHERE id = 1`)
	if err := row.Scan(&raw, &unix); err != nil {
		if err == sql.ErrNoRows {
			return nil, time.Time{}, false, nil
		}
		return nil, time.Time{}, false, errors.NewInternal(err)
	}
	return []byte(raw), time.Unix(unix, 0), true, nil
}

// ClearSnapshot removes the persisted catalog snapshot. Idempotent.
func ClearSnapshot(db *sql.DB) error {
	if _, err := db.Exec(`DELETE FROM catalog_snapshot WHERE id = 1`); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// Download is one recorded download in the ledger.
type Download struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	LocalPath string `json:"local_path"`
	Bytes     int64  `json:"bytes"`
	CreatedAt int64  `json:"created_at"`
}

// RecordDownload appends one entry to the download ledger.
func RecordDownload(db *sql.DB, url, localPath string, bytes int64, at time.Time) error {
	query := `
		INSERT INTO downloads (url, local_path, bytes, created_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := db.Exec(query, url, localPath, bytes, at.Unix()); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// RecentDownloads returns the most recent ledger entries, newest first.
func RecentDownloads(db *sql.DB, limit int) ([]Download, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT id, url, local_path, bytes, created_at
		FROM downloads
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var items []Download
	for rows.Next() {
		var d Download
		if err := rows.Scan(&d.ID, &d.URL, &d.LocalPath, &d.Bytes, &d.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}
