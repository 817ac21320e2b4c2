package share

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/a-cold-bird/cloudimgs-sub000/internal/types"
)

// DefaultBurnGrace is how long raw byte fetches keep succeeding after a
// burn, so URLs handed out by the final listing page do not break mid
// load.
const DefaultBurnGrace = 5 * time.Minute

const tokenBytes = 32

// ValidateOpts constrains a Validate call. AlbumID, when set, requires
// the token to be scoped to exactly that album. AllowBurnedGrace opts
// into the post-burn grace window; only the raw byte-fetch path sets it.
type ValidateOpts struct {
	AlbumID          types.AlbumID
	AllowBurnedGrace bool
}

// Engine owns the share capability lifecycle: issuance, listing,
// revocation, deletion, validation and the burn-after-reading
// transition.
//
// Status is a one-way machine: active may become expired (derived
// lazily from the clock and persisted once observed), revoked (admin
// action) or burned (first access listing); none of those three ever
// transitions again.
type Engine struct {
	store  Store
	signer Signer
	grace  time.Duration
	now    func() time.Time
}

func NewEngine(store Store, signer Signer, grace time.Duration) *Engine {
	if grace <= 0 {
		grace = DefaultBurnGrace
	}
	return &Engine{
		store:  store,
		signer: signer,
		grace:  grace,
		now:    time.Now,
	}
}

// Issue creates a fresh active share record scoped to albumID.
// expireSeconds <= 0 means the record never expires by time.
func (e *Engine) Issue(albumID types.AlbumID, expireSeconds int64, burnAfterReading bool) (types.ShareRecord, error) {
	if albumID == "" {
		return types.ShareRecord{}, types.BadRequest("album id required")
	}
	if expireSeconds < 0 {
		return types.ShareRecord{}, types.BadRequest("negative expire seconds")
	}

	token, err := newToken()
	if err != nil {
		return types.ShareRecord{}, err
	}

	createdAt := e.now().UnixMilli()
	rec := types.ShareRecord{
		Token:            token,
		Signature:        e.signer.Sign(token, albumID, createdAt),
		AlbumID:          albumID,
		CreatedAt:        createdAt,
		ExpireSeconds:    expireSeconds,
		BurnAfterReading: burnAfterReading,
		Status:           types.ShareActive,
	}

	records, err := e.store.ReadAll(albumID)
	if err != nil {
		return types.ShareRecord{}, err
	}
	records = append(records, rec)
	if err := e.store.WriteAll(albumID, records); err != nil {
		return types.ShareRecord{}, err
	}

	return rec, nil
}

// List returns the album's share records with expiry lazily refreshed.
// Any transition observed is persisted before returning.
func (e *Engine) List(albumID types.AlbumID) ([]types.ShareRecord, error) {
	if albumID == "" {
		return nil, types.BadRequest("album id required")
	}

	records, err := e.store.ReadAll(albumID)
	if err != nil {
		return nil, err
	}
	if refreshExpired(records, e.now().UnixMilli()) {
		if err := e.store.WriteAll(albumID, records); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// Revoke permanently invalidates the record matching (albumID,
// signature). Revocation is terminal: the record never validates again.
func (e *Engine) Revoke(albumID types.AlbumID, signature string) error {
	if albumID == "" || signature == "" {
		return types.BadRequest("album id and signature required")
	}

	records, err := e.store.ReadAll(albumID)
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].Signature == signature {
			records[i].Status = types.ShareRevoked
			return e.store.WriteAll(albumID, records)
		}
	}
	return types.NotFound("share not found")
}

// Delete removes the record with the given signature from the store
// entirely, regardless of status.
func (e *Engine) Delete(signature string) error {
	if signature == "" {
		return types.BadRequest("signature required")
	}

	all, err := e.store.ReadAll("")
	if err != nil {
		return err
	}
	var target *types.ShareRecord
	for i := range all {
		if all[i].Signature == signature {
			target = &all[i]
			break
		}
	}
	if target == nil {
		return types.NotFound("share not found")
	}

	albumID := target.AlbumID
	kept := make([]types.ShareRecord, 0)
	for _, rec := range all {
		if rec.AlbumID == albumID && rec.Signature != signature {
			kept = append(kept, rec)
		}
	}
	return e.store.WriteAll(albumID, kept)
}

// Validate checks a presented token and returns the record when it
// grants access. Denials come back as types.StatusError with the reason
// for the caller to surface verbatim; any other error is store I/O.
func (e *Engine) Validate(token string, opts ValidateOpts) (types.ShareRecord, error) {
	if token == "" {
		return types.ShareRecord{}, types.BadRequest("share token required")
	}

	all, err := e.store.ReadAll("")
	if err != nil {
		return types.ShareRecord{}, err
	}

	idx := -1
	for i := range all {
		if all[i].Token == token {
			idx = i
			break
		}
	}
	if idx == -1 {
		return types.ShareRecord{}, types.NotFound("share token not found")
	}

	nowMs := e.now().UnixMilli()
	rec := &all[idx]

	// Lazy expiry: derived from the clock, persisted once observed so
	// direct listings reflect it without recomputation.
	if rec.Status == types.ShareActive && isExpired(*rec, nowMs) {
		rec.Status = types.ShareExpired
		if err := e.writeAlbum(all, rec.AlbumID); err != nil {
			return types.ShareRecord{}, err
		}
	}

	// Tamper check comes before any status branching: a forged record
	// is rejected no matter what status it claims.
	if !e.signer.Verify(*rec) {
		return types.ShareRecord{}, types.Forbidden("share signature mismatch")
	}

	if opts.AlbumID != "" && rec.AlbumID != opts.AlbumID {
		return types.ShareRecord{}, types.Forbidden("share token not valid for this resource")
	}

	switch rec.Status {
	case types.ShareRevoked:
		return types.ShareRecord{}, types.Forbidden("share token revoked")
	case types.ShareExpired:
		return types.ShareRecord{}, types.Gone("share token expired")
	case types.ShareBurned:
		if opts.AllowBurnedGrace && nowMs-rec.BurnedAt <= e.grace.Milliseconds() {
			return *rec, nil
		}
		return types.ShareRecord{}, types.Gone("share token burned")
	case types.ShareActive:
		return *rec, nil
	default:
		return types.ShareRecord{}, types.Forbidden(fmt.Sprintf("unknown share status %q", rec.Status))
	}
}

// MarkAccessed performs the burn-after-reading transition for a token
// that was just served an access listing. Callers invoke it after the
// listing response, so the burning call itself still gets its page.
// Racing calls may both observe active and both burn; the double write
// is idempotent and accepted.
func (e *Engine) MarkAccessed(token string) error {
	all, err := e.store.ReadAll("")
	if err != nil {
		return err
	}
	for i := range all {
		rec := &all[i]
		if rec.Token != token {
			continue
		}
		if !rec.BurnAfterReading || rec.Status != types.ShareActive {
			return nil
		}
		rec.Status = types.ShareBurned
		rec.BurnedAt = e.now().UnixMilli()
		return e.writeAlbum(all, rec.AlbumID)
	}
	return types.NotFound("share token not found")
}

// writeAlbum persists the subset of all belonging to albumID.
func (e *Engine) writeAlbum(all []types.ShareRecord, albumID types.AlbumID) error {
	records := make([]types.ShareRecord, 0)
	for _, rec := range all {
		if rec.AlbumID == albumID {
			records = append(records, rec)
		}
	}
	return e.store.WriteAll(albumID, records)
}

func refreshExpired(records []types.ShareRecord, nowMs int64) bool {
	changed := false
	for i := range records {
		if records[i].Status == types.ShareActive && isExpired(records[i], nowMs) {
			records[i].Status = types.ShareExpired
			changed = true
		}
	}
	return changed
}

func isExpired(rec types.ShareRecord, nowMs int64) bool {
	expiresAt := rec.ExpiresAt()
	return expiresAt != 0 && nowMs > expiresAt
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
