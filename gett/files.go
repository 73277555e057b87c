package gett

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

type uploadOptions struct {
	shareName string
	title     string
}

// UploadOption configures an upload.
type UploadOption func(*uploadOptions)

// WithShare uploads into an existing share instead of creating a new one.
func WithShare(name string) UploadOption {
	return func(o *uploadOptions) {
		o.shareName = name
	}
}

// WithTitle sets the title of the share created for the upload. It has no
// effect together with WithShare.
func WithTitle(title string) UploadOption {
	return func(o *uploadOptions) {
		o.title = title
	}
}

// GetFile fetches a file by its Ge.tt file id. Ge.tt assigns ids from 0 in
// upload order and never reuses them, so after a delete the id is not the
// position of the file in Share.Files.
func (c *Client) GetFile(ctx context.Context, shareName string, index int) (*File, error) {
	if index < 0 {
		return nil, &ConfigurationError{Param: "fileid", Reason: "must not be negative"}
	}
	return c.getFile(ctx, shareName, strconv.Itoa(index))
}

func (c *Client) getFile(ctx context.Context, shareName, fileID string) (*File, error) {
	if shareName == "" {
		return nil, &ConfigurationError{Param: "sharename", Reason: "must not be empty"}
	}

	req, err := c.authedRequest(ctx)
	if err != nil {
		return nil, err
	}
	req.SetPathParams(map[string]string{
		"sharename": shareName,
		"fileid":    fileID,
	})

	var result fileJSON
	if err := c.execute("get file", req, http.MethodGet, "/files/{sharename}/{fileid}", &result); err != nil {
		return nil, err
	}
	f := c.newFile(shareName, result)
	return &f, nil
}

// UploadFile uploads data as filename and returns the stored file.
func (c *Client) UploadFile(ctx context.Context, filename string, data []byte, opts ...UploadOption) (*File, error) {
	return c.UploadReader(ctx, filename, bytes.NewReader(data), opts...)
}

// UploadReader is UploadFile for content that is not in memory.
func (c *Client) UploadReader(ctx context.Context, filename string, r io.Reader, opts ...UploadOption) (*File, error) {
	if filename == "" {
		return nil, &ConfigurationError{Param: "filename", Reason: "must not be empty"}
	}
	if r == nil {
		return nil, &ConfigurationError{Param: "data", Reason: "must be given"}
	}

	var o uploadOptions
	for _, opt := range opts {
		opt(&o)
	}

	shareName := o.shareName
	if shareName == "" {
		share, err := c.CreateShare(ctx, o.title)
		if err != nil {
			return nil, err
		}
		shareName = share.Name
	}

	slot, err := c.createFile(ctx, shareName, filename)
	if err != nil {
		return nil, err
	}

	c.logger.Debugf("gett: %s: sending data", slot)
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(r)
	if err := c.execute("upload", req, http.MethodPut, slot.UploadURL, nil); err != nil {
		return nil, err
	}

	return c.getFile(ctx, slot.ShareName, slot.ID)
}

// createFile announces a new file in a share and returns it with its upload URL.
func (c *Client) createFile(ctx context.Context, shareName, filename string) (*File, error) {
	req, err := c.authedRequest(ctx)
	if err != nil {
		return nil, err
	}
	req.SetPathParam("sharename", shareName).SetBody(map[string]string{"filename": filename})

	var result fileJSON
	if err := c.execute("create file", req, http.MethodPost, "/files/{sharename}/create", &result); err != nil {
		return nil, err
	}
	f := c.newFile(shareName, result)
	if f.UploadURL == "" {
		return nil, fmt.Errorf("gett: create file: no upload url for %s", &f)
	}
	return &f, nil
}

// maxContentsPrealloc caps how much of the reported file size Contents
// allocates up front.
const maxContentsPrealloc = 64 << 20

// Contents downloads the whole file into memory.
func (c *Client) Contents(ctx context.Context, f *File) ([]byte, error) {
	var buf bytes.Buffer
	if f.Size > 0 {
		buf.Grow(int(min(f.Size, maxContentsPrealloc)))
	}
	if _, err := c.Download(ctx, f, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Download streams the file content into w and returns the number of bytes written.
func (c *Client) Download(ctx context.Context, f *File, w io.Writer) (int64, error) {
	downloadURL := f.DownloadURL
	if downloadURL == "" {
		downloadURL = c.blobURL(f.ShareName, f.ID)
	}

	req, err := c.authedRequest(ctx)
	if err != nil {
		return 0, err
	}
	req.SetDoNotParseResponse(true).SetHeader("Accept", "*/*")

	const op = "download"
	start := time.Now()
	resp, err := req.Get(downloadURL)
	if err != nil {
		c.metrics.observe(op, 0, time.Since(start))
		return 0, &NetworkError{Op: op, Err: err}
	}
	body := resp.RawBody()
	defer body.Close()
	c.metrics.observe(op, resp.StatusCode(), resp.Time())

	if resp.StatusCode() != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(body, 4096))
		return 0, newAPIError(op, resp.StatusCode(), errorMessage(msg))
	}

	n, err := io.Copy(w, body)
	if err != nil {
		return n, &NetworkError{Op: op, Err: err}
	}
	return n, nil
}

// DestroyFile deletes a file from its share.
func (c *Client) DestroyFile(ctx context.Context, f *File) error {
	req, err := c.authedRequest(ctx)
	if err != nil {
		return err
	}
	req.SetPathParams(map[string]string{
		"sharename": f.ShareName,
		"fileid":    f.ID,
	})

	return c.execute("destroy file", req, http.MethodPost, "/files/{sharename}/{fileid}/destroy", nil)
}
