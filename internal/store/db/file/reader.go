package file

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"log"

	"github.com/a-cold-bird/cloudimgs-sub000/internal/types"
)

type reader struct {
	db         *sql.DB
	key        types.AssetKey
	fileLength int64
	offset     int64
	chunkSize  int64
	buf        *bytes.Buffer
}

// NewReader streams the chunked asset bytes for key back out of the
// asset_chunks table as an io.ReadSeeker.
func NewReader(db *sql.DB, key types.AssetKey) (io.ReadSeeker, error) {
	chunkSize, err := getChunkSize(db, key)
	if err != nil {
		return nil, err
	}

	fileLength, err := getFileLength(db, key, chunkSize)
	if err != nil {
		return nil, err
	}

	return &reader{
		db:         db,
		key:        key,
		fileLength: fileLength,
		offset:     0,
		chunkSize:  chunkSize,
		buf:        bytes.NewBuffer([]byte{}),
	}, nil
}

func (r *reader) Read(p []byte) (n int, err error) {
	read := 0
	for {
		n, err := r.buf.Read(p[read:])
		read += n
		if err == io.EOF {
			if r.offset == r.fileLength {
				return read, io.EOF
			}
			if err := r.populateBuffer(); err != nil {
				return read, err
			}
			continue
		}
		if read >= len(p) {
			break
		}
	}

	return read, nil
}

func (r *reader) Seek(offset int64, whence int) (int64, error) {
	// Seeking invalidates the buffered chunk.
	r.buf = bytes.NewBuffer([]byte{})

	switch whence {
	case io.SeekStart:
		r.offset = offset
	case io.SeekCurrent:
		r.offset += offset
	case io.SeekEnd:
		r.offset = r.fileLength - offset
	default:
		return r.offset, fmt.Errorf("invalid whence value: %d", whence)
	}

	return r.offset, nil
}

func (r *reader) populateBuffer() error {
	if r.offset == r.fileLength {
		return io.EOF
	}
	chunkIndex := r.offset / r.chunkSize

	var chunk []byte
	err := r.db.QueryRow(`
		SELECT chunk
		FROM asset_chunks
		WHERE key=? AND chunk_index=?
		ORDER BY
		    chunk_index ASC
	`, r.key, chunkIndex).Scan(&chunk)
	if err != nil {
		log.Printf("reading chunk failed: %v", err)
		return err
	}

	readStart := r.offset % r.chunkSize

	r.buf = bytes.NewBuffer(chunk[readStart:])
	r.offset += int64(len(chunk)) - readStart

	return nil
}

func getChunkSize(db *sql.DB, key types.AssetKey) (int64, error) {
	var chunkSize int64
	if err := db.QueryRow(`
		SELECT
		LENGTH(chunk) AS chunk_size
		FROM
			asset_chunks
		WHERE
			key=?
		ORDER BY
			chunk_index ASC
		LIMIT 1
	`, key).Scan(&chunkSize); err != nil {
		return 0, err
	}

	return chunkSize, nil
}

func getFileLength(db *sql.DB, key types.AssetKey, chunkSize int64) (int64, error) {
	var chunkIndex int64
	var chunkLen int64
	if err := db.QueryRow(`
		SELECT
			chunk_index,
			LENGTH(chunk) AS chunk_size
		FROM
			asset_chunks
		WHERE
			key=?
		ORDER BY
			chunk_index DESC
		LIMIT 1
	`, key).Scan(&chunkIndex, &chunkLen); err != nil {
		return 0, err
	}

	return (chunkSize * chunkIndex) + chunkLen, nil
}
