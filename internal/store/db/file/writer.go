package file

import (
	"io"

	"github.com/a-cold-bird/cloudimgs-sub000/internal/store/db/wrapper"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/types"
)

type writer struct {
	ctx     wrapper.SqlDB
	key     types.AssetKey
	buf     []byte
	written int
}

// NewWriter creates a writer that splits the asset bytes for key into
// rows of at most chunkLen bytes in the asset_chunks table.
func NewWriter(ctx wrapper.SqlDB, key types.AssetKey, chunkLen int) io.WriteCloser {
	return &writer{
		ctx: ctx,
		key: key,
		buf: make([]byte, chunkLen),
	}
}

func (w *writer) Write(data []byte) (int, error) {
	bytesWritten := 0

	for {
		if bytesWritten == len(data) {
			break
		}
		bufferStart := w.written % len(w.buf)
		copySize := min(len(w.buf)-bufferStart, len(data)-bytesWritten)
		bufferEnd := bufferStart + copySize
		copy(w.buf[bufferStart:bufferEnd], data[bytesWritten:bytesWritten+copySize])

		if bufferEnd == len(w.buf) {
			if err := w.flush(len(w.buf)); err != nil {
				return bytesWritten, err
			}
		}

		w.written += copySize
		bytesWritten += copySize
	}

	return bytesWritten, nil
}

func (w *writer) Close() error {
	unflushed := w.written % len(w.buf)
	if unflushed != 0 {
		return w.flush(unflushed)
	}
	return nil
}

// flush writes the first n buffered bytes as the next chunk row.
func (w *writer) flush(n int) error {
	idx := w.written / len(w.buf)
	_, err := w.ctx.Exec(`
	INSERT INTO
		asset_chunks
	(
		key,
		chunk_index,
		chunk
	)
	VALUES(?,?,?)
 	`, w.key, idx, w.buf[0:n])
	return err
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
