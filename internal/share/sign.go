package share

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"strconv"

	"github.com/a-cold-bird/cloudimgs-sub000/internal/types"
)

// Signer produces the keyed binding of a share record's fixed fields.
// The signature proves a persisted record was issued by this server and
// not edited afterwards; it is independent of whatever integrity the
// store itself provides.
type Signer struct {
	key []byte
}

func NewSigner(key []byte) Signer {
	return Signer{key: key}
}

// Sign computes base64url(HMAC-SHA256(key, token | albumID | createdAt)).
// Deterministic: the same inputs always produce the same signature.
func (s Signer) Sign(token string, albumID types.AlbumID, createdAt int64) string {
	mac := hmac.New(sha256.New, s.key)
	io.WriteString(mac, token)
	io.WriteString(mac, "\n")
	io.WriteString(mac, string(albumID))
	io.WriteString(mac, "\n")
	io.WriteString(mac, strconv.FormatInt(createdAt, 10))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether the record's signature matches its own fields.
func (s Signer) Verify(rec types.ShareRecord) bool {
	want := s.Sign(rec.Token, rec.AlbumID, rec.CreatedAt)
	return hmac.Equal([]byte(want), []byte(rec.Signature))
}
