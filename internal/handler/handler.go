// Package handler exposes the batch rename pipeline over HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/backmassage/fundusort/internal/pipeline"
	"github.com/backmassage/fundusort/internal/vision"
)

// statusTimeout bounds the liveness probe behind GET /api/status.
const statusTimeout = 5 * time.Second

// BatchRunner is what the handler needs from the pipeline.
type BatchRunner interface {
	Run(ctx context.Context, folder string, opts pipeline.Options) pipeline.BatchResult
}

// Handler carries the HTTP endpoints.
type Handler struct {
	runner BatchRunner
	vision vision.Client
	log    *zap.Logger
}

// New builds a handler over the given pipeline and vision client.
func New(runner BatchRunner, vc vision.Client, log *zap.Logger) *Handler {
	return &Handler{runner: runner, vision: vc, log: log}
}

// batchOptions uses pointer fields so omitted options keep their defaults
// while explicit false values still take effect.
type batchOptions struct {
	Overwrite *bool `json:"overwrite"`
	Recursive *bool `json:"recursive"`
	Preview   *bool `json:"preview"`
}

type batchRequest struct {
	FolderPath string        `json:"folder_path"`
	Options    *batchOptions `json:"options"`
}

func (r *batchRequest) options() pipeline.Options {
	opts := pipeline.DefaultOptions()
	if r.Options == nil {
		return opts
	}
	if r.Options.Overwrite != nil {
		opts.Overwrite = *r.Options.Overwrite
	}
	if r.Options.Recursive != nil {
		opts.Recursive = *r.Options.Recursive
	}
	if r.Options.Preview != nil {
		opts.Preview = *r.Options.Preview
	}
	return opts
}

// BatchProcess handles POST /api/batch_process. Malformed bodies and a
// missing folder_path are rejected with 400; folder-level validation
// failures come back as 200 with success=false inside the result, so the
// caller reads one shape for every completed request.
func (h *Handler) BatchProcess(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "request body must be valid JSON"})
		return
	}
	if req.FolderPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "folder_path is required"})
		return
	}

	opts := req.options()
	h.log.Info("batch requested",
		zap.String("folder", req.FolderPath),
		zap.Bool("recursive", opts.Recursive))

	result := h.runner.Run(c.Request.Context(), req.FolderPath, opts)
	c.JSON(http.StatusOK, result)
}

// Status handles GET /api/status: reachability of the inference service and
// the models it offers.
func (h *Handler) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), statusTimeout)
	defer cancel()

	models, err := h.vision.Models(ctx)
	if err != nil {
		h.log.Warn("inference service unreachable", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"connected": false, "available_models": []string{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"connected": true, "available_models": models})
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
