package db_test

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/a-cold-bird/cloudimgs-sub000/internal/store/db"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/store/db/fake_db"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/types"
	"github.com/stretchr/testify/require"
)

const testChunkSize = 5

func TestAlbumRoundTrip(t *testing.T) {
	d := fake_db.NewWithChunkSize(testChunkSize)

	album := types.Album{
		ID:       "alb1",
		Name:     "holiday",
		Public:   false,
		CreateAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, d.CreateAlbum(album))

	got, err := d.GetAlbum("alb1")
	require.NoError(t, err)
	require.Equal(t, album.Name, got.Name)
	require.False(t, got.Public)

	public, err := d.IsAlbumPublic("alb1")
	require.NoError(t, err)
	require.False(t, public)

	require.NoError(t, d.SetAlbumPublic("alb1", true))
	public, err = d.IsAlbumPublic("alb1")
	require.NoError(t, err)
	require.True(t, public)

	albums, err := d.ListAlbums()
	require.NoError(t, err)
	require.Len(t, albums, 1)
}

func TestAlbumNotFound(t *testing.T) {
	d := fake_db.NewWithChunkSize(testChunkSize)

	_, err := d.GetAlbum("missing")
	require.ErrorIs(t, err, types.ErrAlbumNotExists{ID: "missing"})

	err = d.SetAlbumPublic("missing", true)
	require.ErrorIs(t, err, types.ErrAlbumNotExists{ID: "missing"})

	_, err = d.IsAlbumPublic("missing")
	require.ErrorIs(t, err, types.ErrAlbumNotExists{ID: "missing"})
}

func insertTestAsset(t *testing.T, d *db.DB, key types.AssetKey, albumID types.AlbumID, contents string) {
	t.Helper()
	err := d.InsertAsset(strings.NewReader(contents), types.Metadata{
		Key:         key,
		AlbumID:     albumID,
		Filename:    "pic.png",
		ContentType: "image/png",
		CreateAt:    time.Now(),
	})
	require.NoError(t, err)
}

func TestAssetRoundTrip(t *testing.T) {
	d := fake_db.NewWithChunkSize(testChunkSize)

	require.NoError(t, d.CreateAlbum(types.Album{ID: "alb1", Name: "a", CreateAt: time.Now()}))
	insertTestAsset(t, d, "alb1/pic1", "alb1", "hello chunked world")

	record, err := d.GetAsset("alb1/pic1")
	require.NoError(t, err)
	require.Equal(t, types.ContentType("image/png"), record.ContentType)
	require.Equal(t, int64(len("hello chunked world")), record.Size)

	contents, err := io.ReadAll(record.Reader)
	require.NoError(t, err)
	require.Equal(t, "hello chunked world", string(contents))

	albumID, err := d.ResolveAlbumID("alb1/pic1")
	require.NoError(t, err)
	require.Equal(t, types.AlbumID("alb1"), albumID)
}

func TestAssetNotFound(t *testing.T) {
	d := fake_db.NewWithChunkSize(testChunkSize)

	_, err := d.GetMetadata("missing")
	require.ErrorIs(t, err, types.ErrAssetNotExists{Key: "missing"})

	_, err = d.ResolveAlbumID("missing")
	require.ErrorIs(t, err, types.ErrAssetNotExists{Key: "missing"})
}

func TestListAssetsPagination(t *testing.T) {
	d := fake_db.NewWithChunkSize(testChunkSize)

	require.NoError(t, d.CreateAlbum(types.Album{ID: "alb1", Name: "a", CreateAt: time.Now()}))
	insertTestAsset(t, d, "alb1/pic1", "alb1", "one")
	insertTestAsset(t, d, "alb1/pic2", "alb1", "two")
	insertTestAsset(t, d, "alb1/pic3", "alb1", "three")

	assets, total, err := d.ListAssets("alb1", 0, 2)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, assets, 2)

	assets, total, err = d.ListAssets("alb1", 2, 2)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, assets, 1)
}

func TestDeleteAsset(t *testing.T) {
	d := fake_db.NewWithChunkSize(testChunkSize)

	require.NoError(t, d.CreateAlbum(types.Album{ID: "alb1", Name: "a", CreateAt: time.Now()}))
	insertTestAsset(t, d, "alb1/pic1", "alb1", "doomed")

	require.NoError(t, d.DeleteAsset("alb1/pic1"))
	_, err := d.GetMetadata("alb1/pic1")
	require.ErrorIs(t, err, types.ErrAssetNotExists{Key: "alb1/pic1"})
}

func TestDeleteAlbumCascades(t *testing.T) {
	d := fake_db.NewWithChunkSize(testChunkSize)

	require.NoError(t, d.CreateAlbum(types.Album{ID: "alb1", Name: "a", CreateAt: time.Now()}))
	insertTestAsset(t, d, "alb1/pic1", "alb1", "doomed")

	require.NoError(t, d.DeleteAlbum("alb1"))
	_, err := d.GetAlbum("alb1")
	require.ErrorIs(t, err, types.ErrAlbumNotExists{ID: "alb1"})
	_, err = d.GetMetadata("alb1/pic1")
	require.ErrorIs(t, err, types.ErrAssetNotExists{Key: "alb1/pic1"})
}
