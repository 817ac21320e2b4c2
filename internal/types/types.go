package types

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type (
	AlbumID     string
	AssetKey    string
	Filename    string
	ContentType string
	Note        string

	ShareStatus string

	Album struct {
		ID       AlbumID   `json:"id"`
		Name     string    `json:"name"`
		Public   bool      `json:"public"`
		CreateAt time.Time `json:"createAt"`
	}

	Metadata struct {
		Key         AssetKey    `json:"key"`
		AlbumID     AlbumID     `json:"albumId"`
		Filename    Filename    `json:"filename"`
		Note        Note        `json:"note,omitempty"`
		ContentType ContentType `json:"contentType,omitempty"`
		CreateAt    time.Time   `json:"createAt"`
		Size        int64       `json:"size"`
	}

	UploadRecord struct {
		Metadata
		Reader io.ReadSeeker
	}

	// ShareRecord is one issued share capability. Token is the bearer
	// secret; Signature binds (Token, AlbumID, CreatedAt) under the
	// server signing key so a tampered record is rejected no matter
	// what the store says. Only Status and BurnedAt ever change after
	// issuance.
	ShareRecord struct {
		Token            string      `json:"token"`
		Signature        string      `json:"signature"`
		AlbumID          AlbumID     `json:"albumId"`
		CreatedAt        int64       `json:"createdAt"` // epoch millis
		ExpireSeconds    int64       `json:"expireSeconds,omitempty"`
		BurnAfterReading bool        `json:"burnAfterReading,omitempty"`
		Status           ShareStatus `json:"status"`
		BurnedAt         int64       `json:"burnedAt,omitempty"` // epoch millis
	}

	Authorizer interface {
		Enabled() bool
		CheckAccess(r *http.Request) bool
		StartSession(c *gin.Context)
		ClearSession(w http.ResponseWriter)
	}
)

const (
	ShareActive  ShareStatus = "active"
	ShareExpired ShareStatus = "expired"
	ShareRevoked ShareStatus = "revoked"
	ShareBurned  ShareStatus = "burned"
)

// ExpiresAt returns the expiry instant in epoch millis, or 0 when the
// record never expires.
func (r ShareRecord) ExpiresAt() int64 {
	if r.ExpireSeconds <= 0 {
		return 0
	}
	return r.CreatedAt + r.ExpireSeconds*1000
}
