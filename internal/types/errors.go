package types

import (
	"fmt"
	"net/http"
)

// ErrAssetNotExists is an error when an asset does not exist in the catalog
type ErrAssetNotExists struct {
	Key AssetKey
}

func (e ErrAssetNotExists) Error() string {
	return fmt.Sprintf("No asset found for key %v", e.Key)
}

// ErrAlbumNotExists is an error when an album does not exist in the catalog
type ErrAlbumNotExists struct {
	ID AlbumID
}

func (e ErrAlbumNotExists) Error() string {
	return fmt.Sprintf("No album found ID %v", e.ID)
}

// StatusError is a terminal request verdict: the HTTP status it maps to
// plus a reason safe to return to the client. Nothing carrying secret
// material (signatures, the site password) may go into Reason.
type StatusError struct {
	Code   int
	Reason string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Code, http.StatusText(e.Code), e.Reason)
}

func Unauthorized(reason string) StatusError {
	return StatusError{Code: http.StatusUnauthorized, Reason: reason}
}

func Forbidden(reason string) StatusError {
	return StatusError{Code: http.StatusForbidden, Reason: reason}
}

func NotFound(reason string) StatusError {
	return StatusError{Code: http.StatusNotFound, Reason: reason}
}

func Gone(reason string) StatusError {
	return StatusError{Code: http.StatusGone, Reason: reason}
}

func BadRequest(reason string) StatusError {
	return StatusError{Code: http.StatusBadRequest, Reason: reason}
}
