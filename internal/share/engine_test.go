package share

import (
	"net/http"
	"testing"
	"time"

	"github.com/a-cold-bird/cloudimgs-sub000/internal/types"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory share.Store used to drive the engine without
// SQLite.
type memStore struct {
	records []types.ShareRecord
}

func (m *memStore) ReadAll(albumID types.AlbumID) ([]types.ShareRecord, error) {
	out := []types.ShareRecord{}
	for _, rec := range m.records {
		if albumID == "" || rec.AlbumID == albumID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memStore) WriteAll(albumID types.AlbumID, records []types.ShareRecord) error {
	kept := []types.ShareRecord{}
	for _, rec := range m.records {
		if rec.AlbumID != albumID {
			kept = append(kept, rec)
		}
	}
	m.records = append(kept, records...)
	return nil
}

func (m *memStore) find(token string) *types.ShareRecord {
	for i := range m.records {
		if m.records[i].Token == token {
			return &m.records[i]
		}
	}
	return nil
}

func newTestEngine(t *testing.T) (*Engine, *memStore, *time.Time) {
	t.Helper()
	store := &memStore{}
	engine := NewEngine(store, NewSigner([]byte("engine test key")), DefaultBurnGrace)
	now := time.Unix(1700000000, 0)
	engine.now = func() time.Time { return now }
	return engine, store, &now
}

func requireStatus(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	se, ok := err.(types.StatusError)
	require.True(t, ok, "expected StatusError, got %v", err)
	require.Equal(t, code, se.Code)
}

func TestIssueAndValidate(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	rec, err := engine.Issue("alb1", 0, false)
	require.NoError(t, err)
	require.Equal(t, types.ShareActive, rec.Status)
	require.NotEmpty(t, rec.Token)
	require.NotEmpty(t, rec.Signature)

	got, err := engine.Validate(rec.Token, ValidateOpts{AlbumID: "alb1"})
	require.NoError(t, err)
	require.Equal(t, rec.Token, got.Token)
}

func TestValidateRejections(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	rec, err := engine.Issue("alb1", 0, false)
	require.NoError(t, err)

	_, err = engine.Validate("", ValidateOpts{})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = engine.Validate("no-such-token", ValidateOpts{})
	requireStatus(t, err, http.StatusNotFound)

	_, err = engine.Validate(rec.Token, ValidateOpts{AlbumID: "alb2"})
	requireStatus(t, err, http.StatusForbidden)
}

func TestIssueRequiresAlbum(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.Issue("", 0, false)
	requireStatus(t, err, http.StatusBadRequest)

	_, err = engine.Issue("alb1", -5, false)
	requireStatus(t, err, http.StatusBadRequest)
}

func TestExpiry(t *testing.T) {
	engine, store, now := newTestEngine(t)

	rec, err := engine.Issue("alb1", 60, false)
	require.NoError(t, err)

	*now = now.Add(10 * time.Second)
	_, err = engine.Validate(rec.Token, ValidateOpts{AlbumID: "alb1"})
	require.NoError(t, err)

	*now = now.Add(60 * time.Second)
	_, err = engine.Validate(rec.Token, ValidateOpts{AlbumID: "alb1"})
	requireStatus(t, err, http.StatusGone)

	// The lazy transition must have been persisted.
	require.Equal(t, types.ShareExpired, store.find(rec.Token).Status)
}

func TestTamperedSignature(t *testing.T) {
	engine, store, _ := newTestEngine(t)

	rec, err := engine.Issue("alb1", 0, false)
	require.NoError(t, err)

	stored := store.find(rec.Token)
	stored.Signature = "x" + stored.Signature[1:]

	_, err = engine.Validate(rec.Token, ValidateOpts{AlbumID: "alb1"})
	requireStatus(t, err, http.StatusForbidden)
}

func TestTamperedAlbum(t *testing.T) {
	engine, store, _ := newTestEngine(t)

	rec, err := engine.Issue("alb1", 0, false)
	require.NoError(t, err)

	// Repointing a record at another album invalidates its binding,
	// even when the album constraint would match.
	stored := store.find(rec.Token)
	stored.AlbumID = "alb2"

	_, err = engine.Validate(rec.Token, ValidateOpts{AlbumID: "alb2"})
	requireStatus(t, err, http.StatusForbidden)
}

func TestRevokeIsPermanent(t *testing.T) {
	engine, store, now := newTestEngine(t)

	rec, err := engine.Issue("alb1", 60, false)
	require.NoError(t, err)
	require.NoError(t, engine.Revoke("alb1", rec.Signature))

	_, err = engine.Validate(rec.Token, ValidateOpts{AlbumID: "alb1"})
	requireStatus(t, err, http.StatusForbidden)

	// Expiry never resurrects or reclassifies a revoked record.
	*now = now.Add(2 * time.Minute)
	_, err = engine.Validate(rec.Token, ValidateOpts{AlbumID: "alb1"})
	requireStatus(t, err, http.StatusForbidden)
	require.Equal(t, types.ShareRevoked, store.find(rec.Token).Status)
}

func TestRevokeNotFound(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	err := engine.Revoke("alb1", "no-such-signature")
	requireStatus(t, err, http.StatusNotFound)
}

func TestDelete(t *testing.T) {
	engine, store, _ := newTestEngine(t)

	rec, err := engine.Issue("alb1", 0, false)
	require.NoError(t, err)
	other, err := engine.Issue("alb1", 0, false)
	require.NoError(t, err)

	require.NoError(t, engine.Delete(rec.Signature))
	require.Nil(t, store.find(rec.Token))
	require.NotNil(t, store.find(other.Token))

	err = engine.Delete(rec.Signature)
	requireStatus(t, err, http.StatusNotFound)
}

func TestBurnAfterReading(t *testing.T) {
	engine, store, now := newTestEngine(t)

	rec, err := engine.Issue("alb1", 0, true)
	require.NoError(t, err)

	// First access listing sees an active record and then burns it.
	_, err = engine.Validate(rec.Token, ValidateOpts{})
	require.NoError(t, err)
	require.NoError(t, engine.MarkAccessed(rec.Token))

	stored := store.find(rec.Token)
	require.Equal(t, types.ShareBurned, stored.Status)
	require.Equal(t, now.UnixMilli(), stored.BurnedAt)

	// Subsequent listings are gone; raw fetches opting into the grace
	// window still pass.
	_, err = engine.Validate(rec.Token, ValidateOpts{})
	requireStatus(t, err, http.StatusGone)

	*now = now.Add(time.Minute)
	_, err = engine.Validate(rec.Token, ValidateOpts{AlbumID: "alb1", AllowBurnedGrace: true})
	require.NoError(t, err)

	*now = now.Add(5 * time.Minute)
	_, err = engine.Validate(rec.Token, ValidateOpts{AlbumID: "alb1", AllowBurnedGrace: true})
	requireStatus(t, err, http.StatusGone)
}

func TestMarkAccessedIdempotent(t *testing.T) {
	engine, store, now := newTestEngine(t)

	rec, err := engine.Issue("alb1", 0, true)
	require.NoError(t, err)

	require.NoError(t, engine.MarkAccessed(rec.Token))
	burnedAt := store.find(rec.Token).BurnedAt

	*now = now.Add(time.Minute)
	require.NoError(t, engine.MarkAccessed(rec.Token))
	require.Equal(t, burnedAt, store.find(rec.Token).BurnedAt)
}

func TestMarkAccessedIgnoresPlainTokens(t *testing.T) {
	engine, store, _ := newTestEngine(t)

	rec, err := engine.Issue("alb1", 0, false)
	require.NoError(t, err)

	require.NoError(t, engine.MarkAccessed(rec.Token))
	require.Equal(t, types.ShareActive, store.find(rec.Token).Status)
}

func TestListRefreshesExpiry(t *testing.T) {
	engine, store, now := newTestEngine(t)

	expiring, err := engine.Issue("alb1", 30, false)
	require.NoError(t, err)
	lasting, err := engine.Issue("alb1", 0, false)
	require.NoError(t, err)

	*now = now.Add(time.Minute)
	records, err := engine.List("alb1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, types.ShareExpired, store.find(expiring.Token).Status)
	require.Equal(t, types.ShareActive, store.find(lasting.Token).Status)
}
