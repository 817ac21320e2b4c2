package server

import (
	"net/http"
	"strings"

	"github.com/a-cold-bird/cloudimgs-sub000/internal/types"
	"github.com/gin-gonic/gin"
)

// fileGet streams raw asset bytes. Every fetch goes through the media
// authorization decision first; the verdict's status and reason are
// surfaced to the client exactly as decided.
func (h handlers) fileGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := types.AssetKey(strings.TrimPrefix(c.Param("key"), "/"))

		verdict := h.media.Authorize(c.Request, key)
		h.recordDecision(verdict.Allow, verdict.Reason)
		if !verdict.Allow {
			c.JSON(verdict.Status, gin.H{"error": verdict.Reason})
			return
		}

		record, err := h.db.GetAsset(key)
		if err != nil {
			respondError(c, err)
			return
		}

		if record.ContentType != "" {
			c.Header("Content-Type", string(record.ContentType))
		}
		http.ServeContent(c.Writer, c.Request, string(record.Filename), record.CreateAt, record.Reader)
	}
}

func (h handlers) recordDecision(allowed bool, reason string) {
	if h.stat == nil {
		return
	}
	if allowed {
		h.stat.RecordDecision("allow")
		return
	}
	h.stat.RecordDecision(reason)
}
