package share

import (
	"github.com/a-cold-bird/cloudimgs-sub000/internal/types"
)

// Store is the persistence contract for share records. An empty albumID
// passed to ReadAll selects the whole collection.
//
// WriteAll must replace an album's collection atomically with respect to
// a concurrent ReadAll: readers never observe a partially written set.
// Read-modify-write sequences across requests are deliberately not
// serialized; every status transition is idempotent and never reversed,
// so a lost status update is harmless (last writer wins).
type Store interface {
	ReadAll(albumID types.AlbumID) ([]types.ShareRecord, error)
	WriteAll(albumID types.AlbumID, records []types.ShareRecord) error
}
