package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"path"
	"sort"
	"strconv"
	"time"

	"github.com/a-cold-bird/cloudimgs-sub000/internal/store"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/store/db/file"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/types"
	_ "github.com/mattn/go-sqlite3"
)

const (
	timeFormat = time.RFC3339
)

type DB struct {
	ctx       *sql.DB
	chunkSize int
}

type dbMigration struct {
	version int
	query   string
}

//go:embed migrations/*.sql
var migrationsFs embed.FS

func New(path string, defaultChunkSize int, optimizeForLiteStream bool) store.Store {
	return NewWithChunkSize(path, defaultChunkSize, optimizeForLiteStream)
}

func NewWithChunkSize(path string, chunkSize int, optimizeForLiteStream bool) *DB {
	log.Printf("reading DB from %s", path)
	ctx, err := sql.Open("sqlite3", path)
	if err != nil {
		log.Fatalln(err)
	}

	if _, err := ctx.Exec(`
		PRAGMA temp_store = FILE;
		PRAGMA journal_mode = WAL;
	`); err != nil {
		log.Fatalf("failed to set up pragmas database: %v", err)
	}

	if optimizeForLiteStream {
		if _, err := ctx.Exec(`
			PRAGMA busy_timeout = 5000;
			PRAGMA synchronous = NORMAL;
			PRAGMA wal_autocheckpoint = 0;
		`); err != nil {
			log.Fatalf("failed to set up Litestream pragmas %v", err)
		}
	}

	migrations(ctx)

	return &DB{
		ctx:       ctx,
		chunkSize: chunkSize,
	}
}

// Handle exposes the underlying connection so sibling stores (the share
// record store) can live in the same database file.
func (d *DB) Handle() *sql.DB {
	return d.ctx
}

func (d *DB) CreateAlbum(album types.Album) error {
	log.Printf("Create a new album %s", album.ID)

	_, err := d.ctx.Exec(`
	INSERT INTO
		albums
	(
		id,
		name,
		public,
		create_at
	)
	VALUES(?,?,?,?)`,
		album.ID,
		album.Name,
		album.Public,
		album.CreateAt.UTC().Format(timeFormat),
	)
	if err != nil {
		log.Printf("failed to insert album into `albums` table: %v", err)
	}
	return err
}

func (d *DB) GetAlbum(id types.AlbumID) (types.Album, error) {
	var name string
	var public bool
	var createAtTime string

	err := d.ctx.QueryRow(`
		SELECT
			name,
			public,
			create_at
		FROM
			albums
		WHERE
			id=?`, id).Scan(&name, &public, &createAtTime)
	if err == sql.ErrNoRows {
		return types.Album{}, types.ErrAlbumNotExists{ID: id}
	}
	if err != nil {
		return types.Album{}, err
	}

	createAt, err := time.Parse(timeFormat, createAtTime)
	if err != nil {
		return types.Album{}, err
	}

	return types.Album{
		ID:       id,
		Name:     name,
		Public:   public,
		CreateAt: createAt,
	}, nil
}

func (d *DB) ListAlbums() ([]types.Album, error) {
	rows, err := d.ctx.Query(`
		SELECT
			id,
			name,
			public,
			create_at
		FROM
			albums
		ORDER BY
			create_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	albums := []types.Album{}
	for rows.Next() {
		var id string
		var name string
		var public bool
		var createAtTime string
		if err := rows.Scan(&id, &name, &public, &createAtTime); err != nil {
			return nil, err
		}
		createAt, err := time.Parse(timeFormat, createAtTime)
		if err != nil {
			return nil, err
		}
		albums = append(albums, types.Album{
			ID:       types.AlbumID(id),
			Name:     name,
			Public:   public,
			CreateAt: createAt,
		})
	}
	return albums, rows.Err()
}

func (d *DB) SetAlbumPublic(id types.AlbumID, public bool) error {
	res, err := d.ctx.Exec(`
		UPDATE albums
		SET
			public = ?
		WHERE
			id=?
	`, public, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return types.ErrAlbumNotExists{ID: id}
	}
	return nil
}

func (d *DB) DeleteAlbum(id types.AlbumID) error {
	tx, err := d.ctx.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
	DELETE FROM
		asset_chunks
	WHERE
		key IN (SELECT key FROM assets WHERE album_id=?)`, id)
	if err != nil {
		tx.Rollback()
		return err
	}

	_, err = tx.Exec(`
	DELETE FROM
		assets
	WHERE
		album_id=?`, id)
	if err != nil {
		tx.Rollback()
		return err
	}

	_, err = tx.Exec(`
	DELETE FROM
		albums
	WHERE
		id=?`, id)
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (d *DB) InsertAsset(reader io.Reader, metadata types.Metadata) error {
	log.Printf("Create a new asset %s", metadata.Key)

	w := file.NewWriter(d.ctx, metadata.Key, d.chunkSize)
	size, err := io.Copy(w, reader)
	if err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	_, err = d.ctx.Exec(`
	INSERT INTO
		assets
	(
		key,
		album_id,
		filename,
		note,
		content_type,
		size,
		create_at
	)
	VALUES(?,?,?,?,?,?,?)`,
		metadata.Key,
		metadata.AlbumID,
		metadata.Filename,
		metadata.Note,
		metadata.ContentType,
		size,
		metadata.CreateAt.UTC().Format(timeFormat),
	)

	if err != nil {
		log.Printf("failed to insert asset into `assets` table: %v", err)
		return err
	}

	return nil
}

func (d *DB) GetAsset(key types.AssetKey) (types.UploadRecord, error) {
	metadata, err := d.GetMetadata(key)
	if err != nil {
		return types.UploadRecord{}, err
	}

	r, err := file.NewReader(d.ctx, key)
	if err != nil {
		return types.UploadRecord{}, err
	}

	return types.UploadRecord{
		Metadata: metadata,
		Reader:   r,
	}, nil
}

func (d *DB) GetMetadata(key types.AssetKey) (types.Metadata, error) {
	var albumID string
	var filename string
	var note string
	var contentType string
	var size int64
	var createAtTime string

	err := d.ctx.QueryRow(`
		SELECT
			album_id,
			filename,
			note,
			content_type,
			size,
			create_at
		FROM
			assets
		WHERE
			key=?`, key).Scan(&albumID, &filename, &note, &contentType, &size, &createAtTime)
	if err == sql.ErrNoRows {
		return types.Metadata{}, types.ErrAssetNotExists{Key: key}
	}
	if err != nil {
		return types.Metadata{}, err
	}

	createAt, err := time.Parse(timeFormat, createAtTime)
	if err != nil {
		return types.Metadata{}, err
	}

	return types.Metadata{
		Key:         key,
		AlbumID:     types.AlbumID(albumID),
		Filename:    types.Filename(filename),
		Note:        types.Note(note),
		ContentType: types.ContentType(contentType),
		Size:        size,
		CreateAt:    createAt,
	}, nil
}

func (d *DB) ListAssets(albumID types.AlbumID, offset, limit int) ([]types.Metadata, int, error) {
	var total int
	if err := d.ctx.QueryRow(`
		SELECT COUNT(*) FROM assets WHERE album_id=?`, albumID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := d.ctx.Query(`
		SELECT
			key,
			filename,
			note,
			content_type,
			size,
			create_at
		FROM
			assets
		WHERE
			album_id=?
		ORDER BY
			create_at ASC
		LIMIT ? OFFSET ?`, albumID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	assets := []types.Metadata{}
	for rows.Next() {
		var key string
		var filename string
		var note string
		var contentType string
		var size int64
		var createAtTime string
		if err := rows.Scan(&key, &filename, &note, &contentType, &size, &createAtTime); err != nil {
			return nil, 0, err
		}
		createAt, err := time.Parse(timeFormat, createAtTime)
		if err != nil {
			return nil, 0, err
		}
		assets = append(assets, types.Metadata{
			Key:         types.AssetKey(key),
			AlbumID:     albumID,
			Filename:    types.Filename(filename),
			Note:        types.Note(note),
			ContentType: types.ContentType(contentType),
			Size:        size,
			CreateAt:    createAt,
		})
	}
	return assets, total, rows.Err()
}

func (d *DB) DeleteAsset(key types.AssetKey) error {
	tx, err := d.ctx.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
	DELETE FROM
		assets
	WHERE
		key=?`, key)
	if err != nil {
		tx.Rollback()
		return err
	}

	_, err = tx.Exec(`
	DELETE FROM
		asset_chunks
	WHERE
		key=?`, key)
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (d *DB) ResolveAlbumID(key types.AssetKey) (types.AlbumID, error) {
	var albumID string
	err := d.ctx.QueryRow(`
		SELECT album_id FROM assets WHERE key=?`, key).Scan(&albumID)
	if err == sql.ErrNoRows {
		return "", types.ErrAssetNotExists{Key: key}
	}
	if err != nil {
		return "", err
	}
	return types.AlbumID(albumID), nil
}

func (d *DB) IsAlbumPublic(id types.AlbumID) (bool, error) {
	var public bool
	err := d.ctx.QueryRow(`
		SELECT public FROM albums WHERE id=?`, id).Scan(&public)
	if err == sql.ErrNoRows {
		return false, types.ErrAlbumNotExists{ID: id}
	}
	if err != nil {
		return false, err
	}
	return public, nil
}

func migrations(ctx *sql.DB) {
	var currentVersion int
	if err := ctx.QueryRow(`PRAGMA user_version`).Scan(&currentVersion); err != nil {
		log.Fatalf("failed to get user_version: %v", err)
	}

	migrations, err := getMigrationsQuery()
	if err != nil {
		log.Fatalf("error loading database migrations: %v", err)
	}

	log.Printf("start migration stats: %d/%d", currentVersion, len(migrations))

	for _, migration := range migrations {
		if migration.version <= currentVersion {
			continue
		}
		tx, err := ctx.BeginTx(context.Background(), nil)
		if err != nil {
			log.Fatalf("failed to create transaction %d: %v", migration.version, err)
		}

		_, err = tx.Exec(migration.query)
		if err != nil {
			log.Fatalf("failed to perform DB migration %d: %v", migration.version, err)
		}

		_, err = tx.Exec(fmt.Sprintf(`pragma user_version=%d`, migration.version))
		if err != nil {
			log.Fatalf("failed to update DB version to %d: %v", migration.version, err)
		}

		if err = tx.Commit(); err != nil {
			log.Fatalf("failed to commit migration %d: %v", migration.version, err)
		}

		log.Printf("end migration stats: %d/%d", migration.version, len(migrations))
	}
}

func getMigrationsQuery() ([]dbMigration, error) {
	migrations := []dbMigration{}
	dirname := "migrations"

	entries, err := migrationsFs.ReadDir(dirname)
	if err != nil {
		return []dbMigration{}, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		version := getMigrationVersion(entry.Name())

		query, err := migrationsFs.ReadFile(path.Join(dirname, entry.Name()))
		if err != nil {
			return []dbMigration{}, err
		}

		migrations = append(migrations, dbMigration{version: version, query: string(query)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})

	return migrations, nil
}

func getMigrationVersion(filename string) int {
	version, err := strconv.ParseInt(filename[:3], 10, 32)
	if err != nil {
		log.Fatalf("migration version is wrong: %v", filename)
	}
	return int(version)
}
