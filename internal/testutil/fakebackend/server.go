// Package fakebackend serves the image-processing routes the client talks to,
// recording every request it receives. It backs the client tests.
package fakebackend

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const Prefix = "/api"

// Detail is the error envelope the backend framework answers with.
func Detail(detail string) gin.H {
	return gin.H{"detail": detail}
}

type Received struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// FilePart parses the multipart body and returns the first part named field.
func (r Received) FilePart(field string) (filename, contentType string, content []byte, err error) {
	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return "", "", nil, err
	}
	reader := multipart.NewReader(bytes.NewReader(r.Body), params["boundary"])
	for {
		part, err := reader.NextPart()
		if err != nil {
			return "", "", nil, err
		}
		if part.FormName() != field {
			continue
		}
		content, err = io.ReadAll(part)
		return part.FileName(), part.Header.Get("Content-Type"), content, err
	}
}

type Server struct {
	*httptest.Server

	mu        sync.Mutex
	received  []Received
	overrides map[string]gin.HandlerFunc
	images    map[string][]byte
}

func New() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		overrides: map[string]gin.HandlerFunc{},
		images:    map[string][]byte{},
	}
	e := gin.New()
	e.Use(gin.Recovery(), s.recorder(), s.override())
	initRouter(e, s)
	s.Server = httptest.NewServer(e)
	return s
}

// BaseURL is what the client should be configured with.
func (s *Server) BaseURL() string {
	return s.URL + Prefix
}

// Override replaces the handler of method + path (path without Prefix).
func (s *Server) Override(method, path string, h gin.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method+" "+Prefix+path] = h
}

func (s *Server) PutImage(id string, b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[id] = b
}

func (s *Server) Received() []Received {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := make([]Received, len(s.received))
	copy(ret, s.received)
	return ret
}

func (s *Server) recorder() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		s.mu.Lock()
		s.received = append(s.received, Received{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Header: c.Request.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) override() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		h, ok := s.overrides[c.Request.Method+" "+c.Request.URL.Path]
		s.mu.Unlock()
		if ok {
			h(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

func initRouter(e *gin.Engine, s *Server) {
	imgProc := e.Group(Prefix + "/img_proc")
	{
		imgProc.POST("/uploadOrgImage", s.uploadOrgImage)
		imgProc.POST("/detect_table_image", s.detectTableImage)
		imgProc.POST("/gen_hw_image", s.genHwImage)
		imgProc.GET("/image/:image_id", s.getImage)
	}
}

func (s *Server) readImage(c *gin.Context) (string, []byte, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, Detail("file is required"))
		return "", nil, false
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		c.JSON(http.StatusBadRequest, Detail("文件类型无效，只允许上传图片。"))
		return "", nil, false
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, Detail(err.Error()))
		return "", nil, false
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Detail(err.Error()))
		return "", nil, false
	}
	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = ".jpg"
	}
	id := uuid.New().String() + ext
	s.PutImage(id, b)
	return id, b, true
}

func (s *Server) uploadOrgImage(c *gin.Context) {
	id, _, ok := s.readImage(c)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "上传成功",
		"data":    gin.H{"url": "/static/" + id},
	})
}

func (s *Server) detectTableImage(c *gin.Context) {
	id, b, ok := s.readImage(c)
	if !ok {
		return
	}
	corrected, drawed := "corrected_"+id, "drawed_"+id
	s.PutImage(corrected, b)
	s.PutImage(drawed, b)
	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"img_index_key":      strings.TrimSuffix(id, filepath.Ext(id)),
		"sheet_type":         "singlesheet",
		"original_image_id":  id,
		"corrected_image_id": corrected,
		"drawed_image_id":    drawed,
		"web_tdtr_data":      gin.H{"rows": 1, "cols": 1, "tdtr_cells": [][]gin.H{{{"text": ""}}}},
		"corrected_table_info": gin.H{
			"rows": 1,
			"cols": 1,
		},
	})
}

type hwTableDataRequest struct {
	Rows        int                `json:"rows"`
	Cols        int                `json:"cols"`
	TdtrCells   [][]map[string]any `json:"tdtr_cells" binding:"required"`
	ImgIndexKey string             `json:"img_index_key" binding:"required"`
}

func (s *Server) genHwImage(c *gin.Context) {
	var req hwTableDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, Detail(err.Error()))
		return
	}
	id := "handwriting_" + req.ImgIndexKey + ".jpg"
	s.PutImage(id, []byte("handwriting"))
	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"img_index_key":        req.ImgIndexKey,
		"handwriting_image_id": id,
	})
}

func (s *Server) getImage(c *gin.Context) {
	id := c.Param("image_id")
	s.mu.Lock()
	b, ok := s.images[id]
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, Detail("图片不存在: "+id))
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(b), b)
}
