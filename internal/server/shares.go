package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/a-cold-bird/cloudimgs-sub000/internal/share"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/types"
	"github.com/gin-gonic/gin"
)

type shareRequest struct {
	ExpireSeconds    int64 `json:"expireSeconds"`
	BurnAfterReading bool  `json:"burnAfterReading"`
}

type shareRevokeRequest struct {
	Signature string `json:"signature" binding:"required"`
}

func (h handlers) sharePost() gin.HandlerFunc {
	return func(c *gin.Context) {
		albumID := types.AlbumID(c.Param("id"))
		if _, err := h.db.GetAlbum(albumID); err != nil {
			respondError(c, err)
			return
		}

		var req shareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Bad request: %v", err),
			})
			return
		}

		rec, err := h.shares.Issue(albumID, req.ExpireSeconds, req.BurnAfterReading)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func (h handlers) sharesGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		albumID := types.AlbumID(c.Param("id"))
		if _, err := h.db.GetAlbum(albumID); err != nil {
			respondError(c, err)
			return
		}

		records, err := h.shares.List(albumID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"shares": records})
	}
}

func (h handlers) shareRevoke() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req shareRevokeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Bad request: %v", err),
			})
			return
		}

		if err := h.shares.Revoke(types.AlbumID(c.Param("id")), req.Signature); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusOK)
	}
}

func (h handlers) shareDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.shares.Delete(c.Param("signature")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusOK)
	}
}

// shareAccess is the listing a share token grants: one page of the
// shared album's assets. This is the call class that burns a
// burn-after-reading token; the burn happens after the page has been
// written, so the first caller still gets its data. The response leaks
// neither signatures nor any other album's contents.
func (h handlers) shareAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		rec, err := h.shares.Validate(token, share.ValidateOpts{})
		if err != nil {
			respondError(c, err)
			return
		}

		album, err := h.db.GetAlbum(rec.AlbumID)
		if err != nil {
			// Album deleted after issuance: the capability no longer
			// has a resource to grant.
			respondError(c, types.Forbidden("resource unresolved"))
			return
		}

		offset, limit, err := parsePagination(c)
		if err != nil {
			respondError(c, err)
			return
		}

		assets, total, err := h.db.ListAssets(album.ID, offset, limit)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"album": gin.H{
				"id":   string(album.ID),
				"name": album.Name,
			},
			"assets": assets,
			"total":  total,
			"offset": offset,
			"limit":  limit,
		})

		if rec.BurnAfterReading {
			if err := h.shares.MarkAccessed(token); err != nil {
				log.Printf("failed to burn share token after access: %v", err)
			}
		}
	}
}
