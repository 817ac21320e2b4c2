package sharestore

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/a-cold-bird/cloudimgs-sub000/internal/types"
	_ "github.com/mattn/go-sqlite3"
)

// Store persists share records in SQLite, one row per record. It
// implements the read-all / write-all collection contract of
// share.Store: WriteAll replaces an album's rows inside a single
// transaction, so a concurrent ReadAll sees either the old or the new
// collection, never a mix.
type Store struct {
	ctx *sql.DB
}

// New prepares the shares table on an existing database handle,
// typically the one backing the catalog.
func New(ctx *sql.DB) (*Store, error) {
	if _, err := ctx.Exec(`
	CREATE TABLE IF NOT EXISTS shares (
		token TEXT PRIMARY KEY,
		signature TEXT NOT NULL,
		album_id TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		expire_seconds INTEGER NOT NULL DEFAULT 0,
		burn_after_reading INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		burned_at INTEGER NOT NULL DEFAULT 0
	)`); err != nil {
		return nil, err
	}
	if _, err := ctx.Exec(`
	CREATE INDEX IF NOT EXISTS shares_album_id ON shares (album_id)`); err != nil {
		return nil, err
	}
	return &Store{ctx: ctx}, nil
}

// Open opens a standalone SQLite database at path for the share
// collection.
func Open(path string) (*Store, error) {
	log.Printf("reading share DB from %s", path)
	ctx, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := ctx.Exec(`
		PRAGMA temp_store = FILE;
		PRAGMA journal_mode = WAL;
	`); err != nil {
		return nil, err
	}
	return New(ctx)
}

func (s *Store) ReadAll(albumID types.AlbumID) ([]types.ShareRecord, error) {
	query := `
		SELECT
			token,
			signature,
			album_id,
			created_at,
			expire_seconds,
			burn_after_reading,
			status,
			burned_at
		FROM
			shares`
	args := []interface{}{}
	if albumID != "" {
		query += ` WHERE album_id=?`
		args = append(args, albumID)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := s.ctx.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []types.ShareRecord{}
	for rows.Next() {
		var rec types.ShareRecord
		var albumID string
		var status string
		if err := rows.Scan(
			&rec.Token,
			&rec.Signature,
			&albumID,
			&rec.CreatedAt,
			&rec.ExpireSeconds,
			&rec.BurnAfterReading,
			&status,
			&rec.BurnedAt,
		); err != nil {
			return nil, err
		}
		rec.AlbumID = types.AlbumID(albumID)
		rec.Status = types.ShareStatus(status)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) WriteAll(albumID types.AlbumID, records []types.ShareRecord) error {
	if albumID == "" {
		return errors.New("album id required for share collection write")
	}

	tx, err := s.ctx.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`
	DELETE FROM
		shares
	WHERE
		album_id=?`, albumID); err != nil {
		tx.Rollback()
		return err
	}

	for _, rec := range records {
		if _, err := tx.Exec(`
		INSERT INTO
			shares
		(
			token,
			signature,
			album_id,
			created_at,
			expire_seconds,
			burn_after_reading,
			status,
			burned_at
		)
		VALUES(?,?,?,?,?,?,?,?)`,
			rec.Token,
			rec.Signature,
			rec.AlbumID,
			rec.CreatedAt,
			rec.ExpireSeconds,
			rec.BurnAfterReading,
			rec.Status,
			rec.BurnedAt,
		); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}
