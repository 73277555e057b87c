package gett

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochronus/gogett/internal/gettest"
)

func TestGetFile(t *testing.T) {
	srv := gettest.NewServer()
	defer srv.Close()
	name := srv.AddShare("Docs",
		gettest.FileFixture{Filename: "a.txt", Data: []byte("a")},
		gettest.FileFixture{Filename: "b.txt", Data: []byte("bb")},
		gettest.FileFixture{Filename: "c.txt", Data: []byte("ccc")},
	)

	client := newTestClient(t, srv)
	ctx := context.Background()

	share, err := client.GetShare(ctx, name)
	require.NoError(t, err)

	for index, listed := range share.Files {
		f, err := client.GetFile(ctx, name, index)
		require.NoError(t, err)
		assert.Equal(t, listed.ID, f.ID)
		assert.Equal(t, listed.Filename, f.Filename)
		assert.Equal(t, listed.Size, f.Size)
		assert.Equal(t, name, f.ShareName)
		assert.Empty(t, f.UploadURL)
	}
}

func TestGetFileNotFound(t *testing.T) {
	srv := gettest.NewServer()
	defer srv.Close()
	name := srv.AddShare("Docs", gettest.FileFixture{Filename: "a.txt"})

	client := newTestClient(t, srv)
	ctx := context.Background()

	_, err := client.GetFile(ctx, name, 7)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.GetFile(ctx, "missing", 0)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.GetFile(ctx, name, -1)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestUploadRoundTrip(t *testing.T) {
	srv := gettest.NewServer()
	defer srv.Close()

	client := newTestClient(t, srv)
	ctx := context.Background()

	data := bytes.Repeat([]byte{0x00, 0xff, 'g', 'e', 't', 't'}, 4096)
	f, err := client.UploadFile(ctx, "blob.bin", data, WithTitle("Uploads"))
	require.NoError(t, err)

	assert.Equal(t, "blob.bin", f.Filename)
	assert.Equal(t, int64(len(data)), f.Size)
	assert.True(t, f.IsUploaded())
	assert.NotEmpty(t, f.DownloadURL)

	contents, err := f.Contents(ctx)
	require.NoError(t, err)
	assert.Equal(t, data, contents)

	stored, ok := srv.FileData(f.ShareName, f.ID)
	require.True(t, ok)
	assert.Equal(t, data, stored)

	share, err := client.GetShare(ctx, f.ShareName)
	require.NoError(t, err)
	assert.Equal(t, "Uploads", share.Title)
	require.Len(t, share.Files, 1)
	assert.Equal(t, f.ID, share.Files[0].ID)
}

func TestUploadIntoExistingShare(t *testing.T) {
	srv := gettest.NewServer()
	defer srv.Close()
	name := srv.AddShare("Existing", gettest.FileFixture{Filename: "first.txt", Data: []byte("1")})

	client := newTestClient(t, srv)
	ctx := context.Background()

	f, err := client.UploadReader(ctx, "second.txt", strings.NewReader("second"), WithShare(name), WithTitle("ignored"))
	require.NoError(t, err)
	assert.Equal(t, name, f.ShareName)
	assert.Equal(t, "1", f.ID)

	share, err := client.GetShare(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, "Existing", share.Title)
	require.Len(t, share.Files, 2)

	contents, err := client.Contents(ctx, &share.Files[1])
	require.NoError(t, err)
	assert.Equal(t, "second", string(contents))
}

func TestUploadIntoMissingShare(t *testing.T) {
	srv := gettest.NewServer()
	defer srv.Close()

	client := newTestClient(t, srv)
	_, err := client.UploadFile(context.Background(), "a.txt", []byte("a"), WithShare("missing"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadValidation(t *testing.T) {
	srv := gettest.NewServer()
	defer srv.Close()

	client := newTestClient(t, srv)
	ctx := context.Background()

	_, err := client.UploadFile(ctx, "", []byte("a"))
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = client.UploadReader(ctx, "a.txt", nil)
	assert.ErrorIs(t, err, ErrConfiguration)

	assert.Equal(t, 0, srv.Requests())
}

func TestDownload(t *testing.T) {
	srv := gettest.NewServer()
	defer srv.Close()
	name := srv.AddShare("Docs", gettest.FileFixture{Filename: "a.txt", Data: []byte("streamed")})

	client := newTestClient(t, srv)
	ctx := context.Background()

	f, err := client.GetFile(ctx, name, 0)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := client.Download(ctx, f, &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)
	assert.Equal(t, "streamed", buf.String())

	missing := &File{ID: "9", ShareName: name}
	_, err = client.Download(ctx, missing, &buf)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContentsIgnoresBogusSize(t *testing.T) {
	srv := gettest.NewServer()
	defer srv.Close()
	name := srv.AddShare("Docs", gettest.FileFixture{Filename: "a.txt", Data: []byte("small")})

	client := newTestClient(t, srv)
	ctx := context.Background()

	f, err := client.GetFile(ctx, name, 0)
	require.NoError(t, err)
	f.Size = 1 << 62

	var contents []byte
	require.NotPanics(t, func() {
		contents, err = client.Contents(ctx, f)
	})
	require.NoError(t, err)
	assert.Equal(t, "small", string(contents))
}

func TestDestroyFile(t *testing.T) {
	srv := gettest.NewServer()
	defer srv.Close()
	name := srv.AddShare("Docs",
		gettest.FileFixture{Filename: "a.txt", Data: []byte("a")},
		gettest.FileFixture{Filename: "b.txt", Data: []byte("b")},
	)

	client := newTestClient(t, srv)
	ctx := context.Background()

	f, err := client.GetFile(ctx, name, 0)
	require.NoError(t, err)
	require.NoError(t, client.DestroyFile(ctx, f))

	share, err := client.GetShare(ctx, name)
	require.NoError(t, err)
	require.Len(t, share.Files, 1)
	assert.Equal(t, "b.txt", share.Files[0].Filename)

	_, err = client.GetFile(ctx, name, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContentsUnboundFile(t *testing.T) {
	f := &File{ID: "0", ShareName: "abc"}
	_, err := f.Contents(context.Background())
	assert.Error(t, err)
}

func TestFileString(t *testing.T) {
	f := &File{ID: "3", ShareName: "abc", Filename: "x.txt"}
	assert.Equal(t, "[abc/3: x.txt]", f.String())
}
