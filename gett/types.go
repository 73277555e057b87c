package gett

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Storage is the account quota in bytes.
type Storage struct {
	Used  int64
	Limit int64
	Extra int64
}

// Free returns the remaining quota, never negative.
func (s Storage) Free() int64 {
	free := s.Limit + s.Extra - s.Used
	if free < 0 {
		return 0
	}
	return free
}

// User is the Ge.tt account the client is logged in as.
type User struct {
	ID       string
	FullName string
	Email    string
	Storage  Storage
}

// Share is a named collection of files.
type Share struct {
	Name    string
	Title   string
	Created time.Time
	GettURL string
	Files   []File
}

// String returns the title when set, the share name otherwise.
func (s *Share) String() string {
	if s.Title != "" {
		return s.Title
	}
	return s.Name
}

// File is a single object inside a share. ShareName refers back to the owning share.
type File struct {
	ID          string
	ShareName   string
	Filename    string
	Size        int64
	Created     time.Time
	Downloads   int
	ReadyState  string
	GettURL     string
	DownloadURL string
	UploadURL   string

	client *Client
}

// String returns a formatted string representation of the file
func (f *File) String() string {
	return fmt.Sprintf("[%s/%s: %s]", f.ShareName, f.ID, f.Filename)
}

// IsUploaded reports whether Ge.tt has received the file content.
func (f *File) IsUploaded() bool {
	return f.ReadyState == "uploaded"
}

// Contents downloads the file content using the client the file was fetched with.
func (f *File) Contents(ctx context.Context) ([]byte, error) {
	if f.client == nil {
		return nil, errors.New("gett: file is not bound to a client")
	}
	return f.client.Contents(ctx, f)
}

type storageJSON struct {
	Used  int64 `json:"used"`
	Limit int64 `json:"limit"`
	Extra int64 `json:"extra"`
}

type userJSON struct {
	UserID   string      `json:"userid"`
	FullName string      `json:"fullname"`
	Email    string      `json:"email"`
	Storage  storageJSON `json:"storage"`
}

type loginResponse struct {
	AccessToken  string   `json:"accesstoken"`
	RefreshToken string   `json:"refreshtoken"`
	Expires      int64    `json:"expires"`
	User         userJSON `json:"user"`
}

type uploadJSON struct {
	PutURL  string `json:"puturl"`
	PostURL string `json:"posturl"`
}

type fileJSON struct {
	FileID     string      `json:"fileid"`
	ShareName  string      `json:"sharename"`
	Filename   string      `json:"filename"`
	Size       int64       `json:"size"`
	Created    int64       `json:"created"`
	Downloads  int         `json:"downloads"`
	ReadyState string      `json:"readystate"`
	GettURL    string      `json:"getturl"`
	Upload     *uploadJSON `json:"upload,omitempty"`
}

type shareJSON struct {
	ShareName string     `json:"sharename"`
	Title     string     `json:"title"`
	Created   int64      `json:"created"`
	GettURL   string     `json:"getturl"`
	Files     []fileJSON `json:"files"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (u userJSON) toUser() *User {
	return &User{
		ID:       u.UserID,
		FullName: u.FullName,
		Email:    u.Email,
		Storage: Storage{
			Used:  u.Storage.Used,
			Limit: u.Storage.Limit,
			Extra: u.Storage.Extra,
		},
	}
}

func unixTime(secs int64) time.Time {
	if secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}

// newFile builds a File. shareName is used when the payload omits it, which Ge.tt
// does for files embedded in a share listing.
func (c *Client) newFile(shareName string, fj fileJSON) File {
	if fj.ShareName != "" {
		shareName = fj.ShareName
	}
	f := File{
		ID:          fj.FileID,
		ShareName:   shareName,
		Filename:    fj.Filename,
		Size:        fj.Size,
		Created:     unixTime(fj.Created),
		Downloads:   fj.Downloads,
		ReadyState:  fj.ReadyState,
		GettURL:     fj.GettURL,
		DownloadURL: c.blobURL(shareName, fj.FileID),
		client:      c,
	}
	if fj.Upload != nil {
		f.UploadURL = fj.Upload.PutURL
	}
	return f
}

func (c *Client) newShare(sj shareJSON) *Share {
	s := &Share{
		Name:    sj.ShareName,
		Title:   sj.Title,
		Created: unixTime(sj.Created),
		GettURL: sj.GettURL,
		Files:   make([]File, 0, len(sj.Files)),
	}
	for _, fj := range sj.Files {
		s.Files = append(s.Files, c.newFile(sj.ShareName, fj))
	}
	return s
}
