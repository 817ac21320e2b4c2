package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/a-cold-bird/cloudimgs-sub000/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h handlers) filePost() gin.HandlerFunc {
	return func(c *gin.Context) {
		albumID := types.AlbumID(c.Param("id"))
		if _, err := h.db.GetAlbum(albumID); err != nil {
			respondError(c, err)
			return
		}

		key, err := h.insertFileFromRequest(c.Request, albumID)
		if err != nil {
			var de dbError
			if errors.As(err, &de) {
				log.Printf("failed to insert uploaded file into data store: %v", err)
				c.AbortWithStatus(http.StatusInternalServerError)
			} else {
				log.Printf("invalid upload: %v", err)
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"key": string(key),
		})
	}
}

func (h handlers) fileDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := types.AssetKey(strings.TrimPrefix(c.Param("key"), "/"))
		if _, err := h.db.GetMetadata(key); err != nil {
			respondError(c, err)
			return
		}

		if err := h.db.DeleteAsset(key); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": fmt.Sprintf("Failed to delete asset %v: %v", key, err),
			})
			return
		}
		c.Status(http.StatusOK)
	}
}

func (h handlers) insertFileFromRequest(r *http.Request, albumID types.AlbumID) (types.AssetKey, error) {
	if err := r.ParseMultipartForm(MULTI_PART_MAX_MEMORY); err != nil {
		return "", err
	}

	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Printf("failed to free multipart form resources: %v", err)
		}
	}()

	reader, metadata, err := r.FormFile("file")
	if err != nil {
		return "", err
	}

	if metadata.Size == 0 {
		return "", errors.New("file is empty")
	}

	if err := validateFilename(metadata.Filename); err != nil {
		return "", err
	}

	note := r.FormValue("note")
	if err := validateFileNote(note); err != nil {
		return "", err
	}

	key := types.AssetKey(fmt.Sprintf("%s/%s", albumID, uuid.New().String()))

	err = h.db.InsertAsset(reader, types.Metadata{
		Key:         key,
		AlbumID:     albumID,
		Filename:    types.Filename(metadata.Filename),
		ContentType: types.ContentType(metadata.Header.Get("Content-Type")),
		Note:        types.Note(note),
		CreateAt:    time.Now(),
	})
	if err != nil {
		log.Printf("failed to insert new asset in db: %v", err)
		return "", dbError{err}
	}

	return key, nil
}

type dbError struct {
	Err error
}

func (dbe dbError) Error() string {
	return fmt.Sprintf("database error: %s", dbe.Err)
}

func (dbe dbError) Unwrap() error {
	return dbe.Err
}
