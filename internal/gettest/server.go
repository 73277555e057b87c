// Package gettest runs an in-memory imitation of the Ge.tt API for tests.
package gettest

import (
	"fmt"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	DefaultAPIKey   = "test-apikey"
	DefaultEmail    = "user@example.com"
	DefaultPassword = "secret"
	DefaultTokenTTL = 24 * time.Hour
)

// FileFixture is a file preloaded into a share.
type FileFixture struct {
	Filename string
	Data     []byte
}

// Server is a fake Ge.tt API backed by an httptest.Server.
type Server struct {
	URL string

	APIKey   string
	Email    string
	Password string
	TokenTTL time.Duration

	srv    *httptest.Server
	router *gin.Engine

	mu            sync.Mutex
	shares        map[string]*share
	order         []string
	accessTokens  map[string]bool
	refreshTokens map[string]bool
	logins        int
	refreshes     int
	requests      int
}

type share struct {
	name    string
	title   string
	created int64
	files   []*file
	nextID  int
}

type file struct {
	id        string
	filename  string
	data      []byte
	uploaded  bool
	created   int64
	downloads int
}

// NewServer starts a fake API accepting the Default* credentials.
func NewServer() *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		APIKey:        DefaultAPIKey,
		Email:         DefaultEmail,
		Password:      DefaultPassword,
		TokenTTL:      DefaultTokenTTL,
		shares:        make(map[string]*share),
		accessTokens:  make(map[string]bool),
		refreshTokens: make(map[string]bool),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		s.mu.Lock()
		s.requests++
		s.mu.Unlock()
		c.Next()
	})

	router.POST("/users/login", s.login)
	router.GET("/users/me", s.requireToken, s.me)

	router.GET("/shares", s.requireToken, s.listShares)
	router.GET("/shares/:sharename", s.getShare)
	// gin cannot register /shares/create next to /shares/:sharename, so
	// "create" is dispatched by the param handlers.
	router.POST("/shares/:sharename", s.requireToken, s.createShare)
	router.POST("/shares/:sharename/:action", s.requireToken, s.shareAction)

	router.GET("/files/:sharename/:fileid", s.getFile)
	router.GET("/files/:sharename/:fileid/blob", s.blob)
	router.POST("/files/:sharename/:fileid", s.requireToken, s.createFile)
	router.POST("/files/:sharename/:fileid/:action", s.requireToken, s.fileAction)

	router.PUT("/upload/:sharename/:fileid", s.upload)

	s.router = router
	s.srv = httptest.NewServer(router)
	s.URL = s.srv.URL
	return s
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}

// AddShare creates a share holding the given files and returns its name.
func (s *Server) AddShare(title string, files ...FileFixture) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh := s.newShareLocked(title)
	for _, f := range files {
		nf := s.newFileLocked(sh, f.Filename)
		nf.data = append([]byte(nil), f.Data...)
		nf.uploaded = true
	}
	return sh.name
}

// FileData returns the stored content of a file.
func (s *Server) FileData(shareName, fileID string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.shares[shareName]
	if !ok {
		return nil, false
	}
	f := sh.find(fileID)
	if f == nil {
		return nil, false
	}
	return append([]byte(nil), f.data...), true
}

// Logins returns how many credential logins succeeded.
func (s *Server) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

// Refreshes returns how many refresh token logins succeeded.
func (s *Server) Refreshes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

// Requests returns the number of requests served.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// RevokeRefreshTokens invalidates every refresh token handed out so far.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshTokens = make(map[string]bool)
}

func (s *Server) newShareLocked(title string) *share {
	sh := &share{
		name:    uuid.NewString()[:8],
		title:   title,
		created: time.Now().Unix(),
	}
	s.shares[sh.name] = sh
	s.order = append(s.order, sh.name)
	return sh
}

func (s *Server) newFileLocked(sh *share, filename string) *file {
	f := &file{
		id:       strconv.Itoa(sh.nextID),
		filename: filename,
		created:  time.Now().Unix(),
	}
	sh.nextID++
	sh.files = append(sh.files, f)
	return f
}

func (sh *share) find(fileID string) *file {
	for _, f := range sh.files {
		if f.id == fileID {
			return f
		}
	}
	return nil
}

func (s *Server) shareURL(name string) string {
	return fmt.Sprintf("%s/web/%s", s.URL, name)
}

func (s *Server) uploadURL(shareName, fileID string) string {
	return fmt.Sprintf("%s/upload/%s/%s", s.URL, shareName, fileID)
}
