package extract

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/backmassage/fundusort/internal/identity"
	"github.com/backmassage/fundusort/internal/vision"
)

// Prompt sent with every image. The fixed response shape (姓名：/日期：
// lines) is what [identity.NameFromText] and [identity.DateFromText] parse
// first; free-form answers still go through their fallback patterns.
const visionPrompt = "请从这张图片中提取出姓名和日期。输出格式为：\n姓名：[姓名]\n日期：[日期]\n\n只需要提取的信息，不要其他多余的文字。"

// noteLimit truncates model answers in the diagnostic trace.
const noteLimit = 200

// VisionStrategy asks the inference service to read the patient label off
// the scan. Transport and service errors are absorbed: the strategy simply
// contributes nothing and the chain moves on.
type VisionStrategy struct {
	Client  vision.Client
	Timeout time.Duration
}

func (s *VisionStrategy) Name() string { return "vision" }

func (s *VisionStrategy) Extract(ctx context.Context, path string, id *identity.Identity) {
	data, err := os.ReadFile(path)
	if err != nil {
		id.Note("vision: read: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	answer, err := s.Client.Describe(ctx, data, visionPrompt)
	if err != nil {
		id.Note("vision: %v", err)
		return
	}
	// Some gateways report failures in-band as an error-prefixed string.
	if answer == "" || strings.HasPrefix(answer, "Error") {
		id.Note("vision: no answer")
		return
	}

	id.Note("vision: %s", snippet(answer))
	id.Merge(identity.NameFromText(answer), identity.DateFromText(answer))
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > noteLimit {
		return string(r[:noteLimit]) + "..."
	}
	return s
}
