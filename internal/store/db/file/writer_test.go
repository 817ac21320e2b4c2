package file_test

import (
	"database/sql"
	"errors"
	"reflect"
	"testing"

	"github.com/a-cold-bird/cloudimgs-sub000/internal/store/db/file"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/types"
	"github.com/stretchr/testify/require"
)

type (
	mockChunkRow struct {
		key        types.AssetKey
		chunkIndex int
		chunk      []byte
	}

	mockSqlDB struct {
		rows []mockChunkRow
		err  error
	}
)

func (db *mockSqlDB) Exec(query string, args ...interface{}) (sql.Result, error) {
	chunk := args[2].([]byte)
	chunkCopy := make([]byte, len(chunk))
	copy(chunkCopy, chunk)
	db.rows = append(db.rows, mockChunkRow{
		key:        args[0].(types.AssetKey),
		chunkIndex: args[1].(int),
		chunk:      chunkCopy,
	})
	return nil, db.err
}

var errMockSqlFailure = errors.New("wrong SQL")

func TestWriteAsset(t *testing.T) {
	for _, row := range []struct {
		description  string
		key          types.AssetKey
		data         []byte
		chunkSize    int
		sqlExecErr   error
		errExpected  error
		rowsExpected []mockChunkRow
	}{
		{
			description: "data is smaller than chunk size",
			key:         "alb1/a",
			data:        []byte("test test test"),
			chunkSize:   30,
			rowsExpected: []mockChunkRow{
				{
					key:        "alb1/a",
					chunkIndex: 0,
					chunk:      []byte("test test test"),
				},
			},
		},
		{
			description: "data equals chunk size",
			key:         "alb1/b",
			data:        []byte("0123456789"),
			chunkSize:   10,
			rowsExpected: []mockChunkRow{
				{
					key:        "alb1/b",
					chunkIndex: 0,
					chunk:      []byte("0123456789"),
				},
			},
		},
		{
			description: "data spans several chunks",
			key:         "alb1/c",
			data:        []byte("0123456789AB"),
			chunkSize:   5,
			rowsExpected: []mockChunkRow{
				{
					key:        "alb1/c",
					chunkIndex: 0,
					chunk:      []byte("01234"),
				},
				{
					key:        "alb1/c",
					chunkIndex: 1,
					chunk:      []byte("56789"),
				},
				{
					key:        "alb1/c",
					chunkIndex: 2,
					chunk:      []byte("AB"),
				},
			},
		},
		{
			description: "sql failure propagates",
			key:         "alb1/d",
			data:        []byte("0123456789"),
			chunkSize:   5,
			sqlExecErr:  errMockSqlFailure,
			errExpected: errMockSqlFailure,
			rowsExpected: []mockChunkRow{
				{
					key:        "alb1/d",
					chunkIndex: 0,
					chunk:      []byte("01234"),
				},
			},
		},
	} {
		t.Run(row.description, func(t *testing.T) {
			db := &mockSqlDB{err: row.sqlExecErr}

			w := file.NewWriter(db, row.key, row.chunkSize)
			_, err := w.Write(row.data)
			if err == nil {
				err = w.Close()
			}
			require.ErrorIs(t, err, row.errExpected)
			require.True(t, reflect.DeepEqual(row.rowsExpected, db.rows))
		})
	}
}
