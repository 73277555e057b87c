package gett

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochronus/gogett/internal/gettest"
)

func TestGetShares(t *testing.T) {
	srv := gettest.NewServer()
	defer srv.Close()

	photos := srv.AddShare("Photos",
		gettest.FileFixture{Filename: "a.jpg", Data: []byte("aaa")},
		gettest.FileFixture{Filename: "b.jpg", Data: []byte("bb")},
	)
	docs := srv.AddShare("Docs", gettest.FileFixture{Filename: "cv.pdf", Data: []byte("pdf")})

	client := newTestClient(t, srv)
	shares, err := client.GetShares(context.Background())
	require.NoError(t, err)
	require.Len(t, shares, 2)

	require.Contains(t, shares, photos)
	require.Contains(t, shares, docs)

	p := shares[photos]
	assert.Equal(t, photos, p.Name)
	assert.Equal(t, "Photos", p.Title)
	assert.False(t, p.Created.IsZero())
	require.Len(t, p.Files, 2)
	assert.Equal(t, "a.jpg", p.Files[0].Filename)
	assert.Equal(t, int64(3), p.Files[0].Size)
	assert.Equal(t, "b.jpg", p.Files[1].Filename)
	for _, f := range p.Files {
		assert.Equal(t, photos, f.ShareName)
		assert.True(t, f.IsUploaded())
		assert.NotEmpty(t, f.DownloadURL)
	}

	assert.Equal(t, "cv.pdf", shares[docs].Files[0].Filename)
}

func TestGetSharesListPaging(t *testing.T) {
	srv := gettest.NewServer()
	defer srv.Close()

	names := []string{
		srv.AddShare("one"),
		srv.AddShare("two"),
		srv.AddShare("three"),
		srv.AddShare("four"),
	}

	client := newTestClient(t, srv)
	ctx := context.Background()

	tests := []struct {
		name     string
		opts     []ListOption
		expected []string
	}{
		{"all", nil, names},
		{"limit", []ListOption{WithLimit(2)}, names[:2]},
		{"skip", []ListOption{WithSkip(3)}, names[3:]},
		{"limit and skip", []ListOption{WithSkip(1), WithLimit(2)}, names[1:3]},
		{"non-positive ignored", []ListOption{WithSkip(-1), WithLimit(0)}, names},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := client.GetSharesList(ctx, tt.opts...)
			require.NoError(t, err)

			got := make([]string, 0, len(shares))
			for _, s := range shares {
				got = append(got, s.Name)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestGetSharesEmpty(t *testing.T) {
	srv := gettest.NewServer()
	defer srv.Close()

	client := newTestClient(t, srv)
	shares, err := client.GetShares(context.Background())
	require.NoError(t, err)
	assert.Empty(t, shares)
}

func TestGetShare(t *testing.T) {
	srv := gettest.NewServer()
	defer srv.Close()
	name := srv.AddShare("Music", gettest.FileFixture{Filename: "song.mp3", Data: []byte("la")})

	client := newTestClient(t, srv)
	share, err := client.GetShare(context.Background(), name)
	require.NoError(t, err)

	assert.Equal(t, name, share.Name)
	assert.Equal(t, "Music", share.String())
	assert.NotEmpty(t, share.GettURL)
	require.Len(t, share.Files, 1)
	assert.Equal(t, "song.mp3", share.Files[0].Filename)
}

func TestGetShareNotFound(t *testing.T) {
	srv := gettest.NewServer()
	defer srv.Close()

	client := newTestClient(t, srv)
	share, err := client.GetShare(context.Background(), "doesnotexist")
	require.Error(t, err)
	assert.Nil(t, share)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrAuthentication)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "share not found", apiErr.Message)
}

func TestGetShareEmptyName(t *testing.T) {
	srv := gettest.NewServer()
	defer srv.Close()

	client := newTestClient(t, srv)
	_, err := client.GetShare(context.Background(), "")
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, 0, srv.Requests())
}

func TestShareLifecycle(t *testing.T) {
	srv := gettest.NewServer()
	defer srv.Close()

	client := newTestClient(t, srv)
	ctx := context.Background()

	created, err := client.CreateShare(ctx, "Holiday")
	require.NoError(t, err)
	assert.NotEmpty(t, created.Name)
	assert.Equal(t, "Holiday", created.Title)
	assert.Empty(t, created.Files)

	updated, err := client.UpdateShare(ctx, created.Name, "Holiday 2026")
	require.NoError(t, err)
	assert.Equal(t, created.Name, updated.Name)
	assert.Equal(t, "Holiday 2026", updated.Title)
	// The value returned earlier is untouched.
	assert.Equal(t, "Holiday", created.Title)

	require.NoError(t, client.DestroyShare(ctx, created.Name))

	_, err = client.GetShare(ctx, created.Name)
	assert.ErrorIs(t, err, ErrNotFound)

	err = client.DestroyShare(ctx, created.Name)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateShareWithoutTitle(t *testing.T) {
	srv := gettest.NewServer()
	defer srv.Close()

	client := newTestClient(t, srv)
	share, err := client.CreateShare(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, share.Title)
	assert.Equal(t, share.Name, share.String())
}
