// Package vision talks to an OpenAI-compatible vision-language endpoint
// (Ollama's /v1 API, or any hosted equivalent). The extraction pipeline only
// sees the [Client] interface, so tests run against canned stubs with no
// network.
package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// Client answers a text prompt about one image.
type Client interface {
	// Describe returns the model's free-text answer. An error means the
	// service was unreachable or refused; callers treat it as "no answer".
	Describe(ctx context.Context, imageBytes []byte, prompt string) (string, error)
	// Models lists the identifiers the service reports, doubling as a
	// liveness check.
	Models(ctx context.Context) ([]string, error)
}

// Options configures the production client.
type Options struct {
	BaseURL string // e.g. "http://localhost:11434/v1" for Ollama
	APIKey  string // "ollama" placeholder is fine for local endpoints
	Model   string // e.g. "qwen3-vl:4b"

	// MaxImageWidth downscales larger scans before upload; 0 disables.
	MaxImageWidth int
	// RequestsPerSec throttles calls to the endpoint; 0 disables.
	RequestsPerSec float64
}

// OpenAI is the production [Client].
type OpenAI struct {
	api      *openai.Client
	model    string
	maxWidth int
	limiter  *rate.Limiter
}

// New builds a client for the configured endpoint.
func New(opts Options) *OpenAI {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 1)
	}
	return &OpenAI{
		api:      openai.NewClientWithConfig(cfg),
		model:    opts.Model,
		maxWidth: opts.MaxImageWidth,
		limiter:  limiter,
	}
}

// Describe sends the image as a base64 data URI alongside the prompt.
func (c *OpenAI) Describe(ctx context.Context, imageBytes []byte, prompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	payload, mime := prepareUpload(imageBytes, c.maxWidth)
	dataURI := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(payload))

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURI,
					Detail: openai.ImageURLDetailAuto,
				}},
			},
		}},
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision api: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision api: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Models lists model IDs from the endpoint.
func (c *OpenAI) Models(ctx context.Context) ([]string, error) {
	list, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// prepareUpload optionally downscales the image and reports the mime type of
// the bytes actually sent. Undecodable inputs pass through untouched with a
// sniffed mime type; the endpoint gets to make its own judgment.
func prepareUpload(imageBytes []byte, maxWidth int) ([]byte, string) {
	if maxWidth > 0 {
		if shrunk, err := shrink(imageBytes, maxWidth); err == nil {
			return shrunk, "image/jpeg"
		}
	}
	return imageBytes, http.DetectContentType(imageBytes)
}
