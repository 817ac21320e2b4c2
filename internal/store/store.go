package store

import (
	"io"

	"github.com/a-cold-bird/cloudimgs-sub000/internal/types"
)

// Store is the relational catalog of albums and assets plus the asset
// bytes themselves.
type Store interface {
	CreateAlbum(album types.Album) error
	GetAlbum(id types.AlbumID) (types.Album, error)
	ListAlbums() ([]types.Album, error)
	SetAlbumPublic(id types.AlbumID, public bool) error
	DeleteAlbum(id types.AlbumID) error

	InsertAsset(reader io.Reader, metadata types.Metadata) error
	GetAsset(key types.AssetKey) (types.UploadRecord, error)
	GetMetadata(key types.AssetKey) (types.Metadata, error)
	ListAssets(albumID types.AlbumID, offset, limit int) ([]types.Metadata, int, error)
	DeleteAsset(key types.AssetKey) error

	// Catalog lookups consumed by the media authorization path.
	ResolveAlbumID(key types.AssetKey) (types.AlbumID, error)
	IsAlbumPublic(id types.AlbumID) (bool, error)
}
