package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/backmassage/fundusort/internal/pipeline"
)

type stubRunner struct {
	gotFolder string
	gotOpts   pipeline.Options
	result    pipeline.BatchResult
}

func (s *stubRunner) Run(_ context.Context, folder string, opts pipeline.Options) pipeline.BatchResult {
	s.gotFolder = folder
	s.gotOpts = opts
	return s.result
}

type stubVision struct {
	models []string
	err    error
}

func (s *stubVision) Describe(context.Context, []byte, string) (string, error) {
	return "", errors.New("not used")
}

func (s *stubVision) Models(context.Context) ([]string, error) {
	return s.models, s.err
}

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.Health)
	r.POST("/api/batch_process", h.BatchProcess)
	r.GET("/api/status", h.Status)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBatchProcessSuccess(t *testing.T) {
	runner := &stubRunner{result: pipeline.BatchResult{
		Success:      true,
		BatchID:      "b-1",
		TotalFiles:   2,
		SuccessFiles: 2,
		Files: []pipeline.Outcome{
			{OriginalName: "a.jpg", NewName: "张伟_20230101.jpg", Status: pipeline.StatusSuccess},
			{OriginalName: "b.jpg", NewName: "张伟_20230101_1.jpg", Status: pipeline.StatusSuccess},
		},
	}}
	r := newRouter(New(runner, &stubVision{}, zap.NewNop()))

	w := postJSON(t, r, "/api/batch_process", `{"folder_path": "/data/scans"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got pipeline.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.Equal(t, 2, got.TotalFiles)
	require.Len(t, got.Files, 2)
	assert.Equal(t, "张伟_20230101_1.jpg", got.Files[1].NewName)

	assert.Equal(t, "/data/scans", runner.gotFolder)
	assert.Equal(t, pipeline.DefaultOptions(), runner.gotOpts)
}

func TestBatchProcessExplicitOptions(t *testing.T) {
	runner := &stubRunner{result: pipeline.BatchResult{Success: true}}
	r := newRouter(New(runner, &stubVision{}, zap.NewNop()))

	w := postJSON(t, r, "/api/batch_process",
		`{"folder_path": "/data", "options": {"recursive": false}}`)
	require.Equal(t, http.StatusOK, w.Code)

	assert.False(t, runner.gotOpts.Recursive)
	// Omitted options keep their defaults.
	assert.True(t, runner.gotOpts.Overwrite)
	assert.True(t, runner.gotOpts.Preview)
}

func TestBatchProcessFolderValidationIsHTTP200(t *testing.T) {
	runner := &stubRunner{result: pipeline.BatchResult{
		Error: pipeline.ErrNoImages.Error(),
	}}
	r := newRouter(New(runner, &stubVision{}, zap.NewNop()))

	w := postJSON(t, r, "/api/batch_process", `{"folder_path": "/data/empty"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var got pipeline.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.False(t, got.Success)
	assert.Equal(t, pipeline.ErrNoImages.Error(), got.Error)
}

func TestBatchProcessMissingFolderPath(t *testing.T) {
	r := newRouter(New(&stubRunner{}, &stubVision{}, zap.NewNop()))

	w := postJSON(t, r, "/api/batch_process", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "folder_path")
}

func TestBatchProcessMalformedBody(t *testing.T) {
	r := newRouter(New(&stubRunner{}, &stubVision{}, zap.NewNop()))

	w := postJSON(t, r, "/api/batch_process", `{"folder_path": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusConnected(t *testing.T) {
	vc := &stubVision{models: []string{"qwen3-vl:4b", "llava"}}
	r := newRouter(New(&stubRunner{}, vc, zap.NewNop()))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Connected bool     `json:"connected"`
		Models    []string `json:"available_models"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.Connected)
	assert.Equal(t, []string{"qwen3-vl:4b", "llava"}, got.Models)
}

func TestStatusUnreachable(t *testing.T) {
	vc := &stubVision{err: errors.New("connection refused")}
	r := newRouter(New(&stubRunner{}, vc, zap.NewNop()))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Connected bool     `json:"connected"`
		Models    []string `json:"available_models"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.False(t, got.Connected)
	assert.Empty(t, got.Models)
}

func TestHealth(t *testing.T) {
	r := newRouter(New(&stubRunner{}, &stubVision{}, zap.NewNop()))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "OK"}`, w.Body.String())
}
