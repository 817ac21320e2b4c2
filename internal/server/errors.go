package server

import (
	"errors"
	"net/http"

	"github.com/a-cold-bird/cloudimgs-sub000/internal/types"
	"github.com/gin-gonic/gin"
)

// respondError maps domain errors onto transport responses. Reason
// strings pass through as-is; they never carry signatures or secret
// material.
func respondError(c *gin.Context, err error) {
	var se types.StatusError
	if errors.As(err, &se) {
		c.JSON(se.Code, gin.H{"error": se.Reason})
		return
	}

	var albumErr types.ErrAlbumNotExists
	if errors.As(err, &albumErr) {
		c.JSON(http.StatusNotFound, gin.H{"error": albumErr.Error()})
		return
	}

	var assetErr types.ErrAssetNotExists
	if errors.As(err, &assetErr) {
		c.JSON(http.StatusNotFound, gin.H{"error": assetErr.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
