package gett

import (
	"context"
	"io"
)

// ClientAPI defines the methods required to interact with Ge.tt.
// It mirrors the concrete client so it can be mocked in tests.
type ClientAPI interface {
	Login(ctx context.Context) (*User, error)
	Me(ctx context.Context) (*User, error)
	GetShares(ctx context.Context, opts ...ListOption) (map[string]*Share, error)
	GetSharesList(ctx context.Context, opts ...ListOption) ([]*Share, error)
	GetShare(ctx context.Context, name string) (*Share, error)
	CreateShare(ctx context.Context, title string) (*Share, error)
	UpdateShare(ctx context.Context, name, title string) (*Share, error)
	DestroyShare(ctx context.Context, name string) error
	GetFile(ctx context.Context, shareName string, index int) (*File, error)
	UploadFile(ctx context.Context, filename string, data []byte, opts ...UploadOption) (*File, error)
	UploadReader(ctx context.Context, filename string, r io.Reader, opts ...UploadOption) (*File, error)
	Contents(ctx context.Context, f *File) ([]byte, error)
	Download(ctx context.Context, f *File, w io.Writer) (int64, error)
	DestroyFile(ctx context.Context, f *File) error
}
