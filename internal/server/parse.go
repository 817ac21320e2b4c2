package server

import (
	"errors"
	"strconv"
	"strings"

	"github.com/a-cold-bird/cloudimgs-sub000/internal/types"
	"github.com/gin-gonic/gin"
)

const (
	MULTI_PART_MAX_MEMORY = 1048576
	MAX_NOTE_LEN          = 512
	MAX_FILENAME_LEN      = 255

	defaultPageLimit = 50
	maxPageLimit     = 200
)

func validateFilename(s string) error {
	if s == "" {
		return errors.New("filename is empty")
	}
	if len(s) > MAX_FILENAME_LEN {
		return errors.New("filename is too long")
	}
	if s == "." || strings.HasPrefix(s, "..") {
		return errors.New("illegal filename")
	}
	if strings.ContainsAny(s, "/\\") {
		return errors.New("illegal characters in filename")
	}
	return nil
}

func validateFileNote(s string) error {
	if len(s) > MAX_NOTE_LEN {
		return errors.New("note is too long")
	}
	return nil
}

func parsePagination(c *gin.Context) (offset, limit int, err error) {
	offset, err = parseNonNegative(c, "offset", 0)
	if err != nil {
		return 0, 0, err
	}
	limit, err = parseNonNegative(c, "limit", defaultPageLimit)
	if err != nil {
		return 0, 0, err
	}
	if limit == 0 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	return offset, limit, nil
}

func parseNonNegative(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, types.BadRequest("bad " + name + " parameter")
	}
	return v, nil
}
