package gettest

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const storageLimit = 2 << 30

type loginRequest struct {
	APIKey       string `json:"apikey"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	RefreshToken string `json:"refreshtoken"`
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
	ShareName  string      `json:"sharename,omitempty"`
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
	Title     string     `json:"title,omitempty"`
	Created   int64      `json:"created"`
	GettURL   string     `json:"getturl"`
	Files     []fileJSON `json:"files"`
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.RefreshToken != "" {
		if !s.refreshTokens[req.RefreshToken] {
			abort(c, http.StatusForbidden, "refresh token is invalid")
			return
		}
		delete(s.refreshTokens, req.RefreshToken)
		s.refreshes++
		c.JSON(http.StatusOK, s.issueTokensLocked())
		return
	}

	if req.APIKey != s.APIKey {
		abort(c, http.StatusForbidden, "apikey is invalid")
		return
	}
	if req.Email != s.Email || req.Password != s.Password {
		abort(c, http.StatusForbidden, "email or password is wrong")
		return
	}
	s.logins++
	c.JSON(http.StatusOK, s.issueTokensLocked())
}

func (s *Server) issueTokensLocked() loginResponse {
	access, refresh := uuid.NewString(), uuid.NewString()
	s.accessTokens[access] = true
	s.refreshTokens[refresh] = true
	return loginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Expires:      int64(s.TokenTTL.Seconds()),
		User:         s.userLocked(),
	}
}

func (s *Server) userLocked() userJSON {
	var used int64
	for _, sh := range s.shares {
		for _, f := range sh.files {
			used += int64(len(f.data))
		}
	}
	return userJSON{
		UserID:   "user-1",
		FullName: "Test User",
		Email:    s.Email,
		Storage:  storageJSON{Used: used, Limit: storageLimit},
	}
}

func (s *Server) requireToken(c *gin.Context) {
	token := c.Query("accesstoken")

	s.mu.Lock()
	ok := s.accessTokens[token]
	s.mu.Unlock()

	if !ok {
		abort(c, http.StatusUnauthorized, "access token is invalid")
		return
	}
	c.Next()
}

func (s *Server) me(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.userLocked())
}

func (s *Server) listShares(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	skip, _ := strconv.Atoi(c.Query("skip"))

	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]shareJSON, 0, len(s.order))
	for i, name := range s.order {
		if i < skip {
			continue
		}
		if limit > 0 && len(result) == limit {
			break
		}
		result = append(result, s.shareJSONLocked(s.shares[name]))
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) getShare(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.shares[c.Param("sharename")]
	if !ok {
		abort(c, http.StatusNotFound, "share not found")
		return
	}
	c.JSON(http.StatusOK, s.shareJSONLocked(sh))
}

func (s *Server) createShare(c *gin.Context) {
	if c.Param("sharename") != "create" {
		abort(c, http.StatusNotFound, "not found")
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	_ = c.ShouldBindJSON(&req)

	s.mu.Lock()
	defer s.mu.Unlock()

	sh := s.newShareLocked(req.Title)
	c.JSON(http.StatusOK, s.shareJSONLocked(sh))
}

func (s *Server) shareAction(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := c.Param("sharename")
	sh, ok := s.shares[name]
	if !ok {
		abort(c, http.StatusNotFound, "share not found")
		return
	}

	switch c.Param("action") {
	case "update":
		var req struct {
			Title string `json:"title"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			abort(c, http.StatusBadRequest, err.Error())
			return
		}
		sh.title = req.Title
		c.JSON(http.StatusOK, s.shareJSONLocked(sh))

	case "destroy":
		delete(s.shares, name)
		for i, n := range s.order {
			if n == name {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		c.JSON(http.StatusOK, gin.H{})

	default:
		abort(c, http.StatusNotFound, "not found")
	}
}

func (s *Server) getFile(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, f, ok := s.lookupLocked(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.fileJSONLocked(sh, f, true))
}

func (s *Server) blob(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, f, ok := s.lookupLocked(c)
	if !ok {
		return
	}
	if !f.uploaded {
		abort(c, http.StatusNotFound, "file has no content yet")
		return
	}
	f.downloads++
	c.Data(http.StatusOK, "application/octet-stream", f.data)
}

func (s *Server) createFile(c *gin.Context) {
	if c.Param("fileid") != "create" {
		abort(c, http.StatusNotFound, "not found")
		return
	}

	var req struct {
		Filename string `json:"filename"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Filename == "" {
		abort(c, http.StatusBadRequest, "filename is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.shares[c.Param("sharename")]
	if !ok {
		abort(c, http.StatusNotFound, "share not found")
		return
	}
	f := s.newFileLocked(sh, req.Filename)
	c.JSON(http.StatusOK, s.fileJSONLocked(sh, f, true))
}

func (s *Server) fileAction(c *gin.Context) {
	if c.Param("action") != "destroy" {
		abort(c, http.StatusNotFound, "not found")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sh, f, ok := s.lookupLocked(c)
	if !ok {
		return
	}
	for i, candidate := range sh.files {
		if candidate == f {
			sh.files = append(sh.files[:i], sh.files[i+1:]...)
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) upload(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, f, ok := s.lookupLocked(c)
	if !ok {
		return
	}
	f.data = data
	f.uploaded = true
	c.Status(http.StatusOK)
}

// lookupLocked resolves the :sharename and :fileid params, aborting with 404 when either is unknown.
func (s *Server) lookupLocked(c *gin.Context) (*share, *file, bool) {
	sh, ok := s.shares[c.Param("sharename")]
	if !ok {
		abort(c, http.StatusNotFound, "share not found")
		return nil, nil, false
	}
	f := sh.find(c.Param("fileid"))
	if f == nil {
		abort(c, http.StatusNotFound, "file not found")
		return nil, nil, false
	}
	return sh, f, true
}

func (s *Server) shareJSONLocked(sh *share) shareJSON {
	files := make([]fileJSON, 0, len(sh.files))
	for _, f := range sh.files {
		files = append(files, s.fileJSONLocked(sh, f, false))
	}
	return shareJSON{
		ShareName: sh.name,
		Title:     sh.title,
		Created:   sh.created,
		GettURL:   s.shareURL(sh.name),
		Files:     files,
	}
}

// fileJSONLocked renders a file. Files listed inside a share omit their share name like Ge.tt does.
func (s *Server) fileJSONLocked(sh *share, f *file, withShare bool) fileJSON {
	fj := fileJSON{
		FileID:     f.id,
		Filename:   f.filename,
		Size:       int64(len(f.data)),
		Created:    f.created,
		Downloads:  f.downloads,
		ReadyState: "remote",
		GettURL:    s.shareURL(sh.name) + "/v/" + f.id,
	}
	if withShare {
		fj.ShareName = sh.name
	}
	if f.uploaded {
		fj.ReadyState = "uploaded"
	} else {
		put := s.uploadURL(sh.name, f.id)
		fj.Upload = &uploadJSON{PutURL: put, PostURL: put}
	}
	return fj
}
