package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/a-cold-bird/cloudimgs-sub000/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type albumRequest struct {
	Name   string `json:"name" binding:"required"`
	Public bool   `json:"public"`
}

type albumPublicRequest struct {
	Public bool `json:"public"`
}

func (h handlers) albumPost() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req albumRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Bad request: %v", err),
			})
			return
		}

		album := types.Album{
			ID:       types.AlbumID(uuid.New().String()),
			Name:     req.Name,
			Public:   req.Public,
			CreateAt: time.Now(),
		}
		if err := h.db.CreateAlbum(album); err != nil {
			log.Printf("failed to create album: %v", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":     string(album.ID),
			"name":   album.Name,
			"public": album.Public,
		})
	}
}

func (h handlers) albumsGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		albums, err := h.db.ListAlbums()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"albums": albums})
	}
}

func (h handlers) albumGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		album, err := h.db.GetAlbum(types.AlbumID(c.Param("id")))
		if err != nil {
			respondError(c, err)
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
			"album":  album,
			"assets": assets,
			"total":  total,
			"offset": offset,
			"limit":  limit,
		})
	}
}

func (h handlers) albumPublicPut() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req albumPublicRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Bad request: %v", err),
			})
			return
		}

		if err := h.db.SetAlbumPublic(types.AlbumID(c.Param("id")), req.Public); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusOK)
	}
}

func (h handlers) albumDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := types.AlbumID(c.Param("id"))
		if _, err := h.db.GetAlbum(id); err != nil {
			respondError(c, err)
			return
		}
		if err := h.db.DeleteAlbum(id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": fmt.Sprintf("Failed to delete album %v: %v", id, err),
			})
			return
		}
		c.Status(http.StatusOK)
	}
}
