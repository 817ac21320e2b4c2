package sharestore_test

import (
	"testing"

	"github.com/a-cold-bird/cloudimgs-sub000/internal/store/sharestore/fake_sharestore"
	"github.com/a-cold-bird/cloudimgs-sub000/internal/types"
	"github.com/stretchr/testify/require"
)

func record(token string, albumID types.AlbumID, createdAt int64) types.ShareRecord {
	return types.ShareRecord{
		Token:            token,
		Signature:        "sig-" + token,
		AlbumID:          albumID,
		CreatedAt:        createdAt,
		ExpireSeconds:    60,
		BurnAfterReading: true,
		Status:           types.ShareActive,
	}
}

func TestReadAllEmpty(t *testing.T) {
	s := fake_sharestore.New()

	records, err := s.ReadAll("")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestWriteAllRoundTrip(t *testing.T) {
	s := fake_sharestore.New()

	rec := record("tok1", "alb1", 1000)
	require.NoError(t, s.WriteAll("alb1", []types.ShareRecord{rec}))

	records, err := s.ReadAll("alb1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, rec, records[0])
}

func TestWriteAllReplacesCollection(t *testing.T) {
	s := fake_sharestore.New()

	require.NoError(t, s.WriteAll("alb1", []types.ShareRecord{
		record("tok1", "alb1", 1000),
		record("tok2", "alb1", 2000),
	}))

	// A write of the album's collection replaces it wholesale.
	updated := record("tok2", "alb1", 2000)
	updated.Status = types.ShareRevoked
	require.NoError(t, s.WriteAll("alb1", []types.ShareRecord{updated}))

	records, err := s.ReadAll("alb1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, types.ShareRevoked, records[0].Status)
}

func TestWriteAllScopedToAlbum(t *testing.T) {
	s := fake_sharestore.New()

	require.NoError(t, s.WriteAll("alb1", []types.ShareRecord{record("tok1", "alb1", 1000)}))
	require.NoError(t, s.WriteAll("alb2", []types.ShareRecord{record("tok2", "alb2", 2000)}))

	// Rewriting alb1 leaves alb2 untouched.
	require.NoError(t, s.WriteAll("alb1", []types.ShareRecord{}))

	records, err := s.ReadAll("")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "tok2", records[0].Token)
}

func TestWriteAllRequiresAlbum(t *testing.T) {
	s := fake_sharestore.New()

	require.Error(t, s.WriteAll("", []types.ShareRecord{record("tok1", "alb1", 1000)}))
}

func TestReadAllOrdersByCreation(t *testing.T) {
	s := fake_sharestore.New()

	require.NoError(t, s.WriteAll("alb1", []types.ShareRecord{
		record("tok2", "alb1", 2000),
		record("tok1", "alb1", 1000),
	}))

	records, err := s.ReadAll("alb1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "tok1", records[0].Token)
	require.Equal(t, "tok2", records[1].Token)
}
