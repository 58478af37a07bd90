package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/logo-reimaginer/pkg/domain"
	"google.golang.org/genai"
)

// GeminiImageCore は通信とレスポンス解析を担う基盤クラスです。
type GeminiImageCore struct {
	aiClient ContentGenerator
}

// NewGeminiImageCore は依存関係を注入して GeminiImageCore を初期化します。
func NewGeminiImageCore(aiClient ContentGenerator) (*GeminiImageCore, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient is required")
	}
	return &GeminiImageCore{aiClient: aiClient}, nil
}

// ExecuteRequest はパーツ群を一度だけ送信し、最初の画像を ImageResponse に変換します。
// 失敗はすべて *GenerationError で返します。リトライは行いません。
func (c *GeminiImageCore) ExecuteRequest(ctx context.Context, model string, parts []*genai.Part, opts Options) (*domain.ImageResponse, error) {
	started := time.Now()
	resp, err := c.aiClient.GenerateWithParts(ctx, model, parts, opts.generateOptions())
	if err != nil {
		slog.ErrorContext(ctx, "Gemini への生成リクエストが失敗しました",
			"model", model, "elapsed", time.Since(started), "error", err)
		return nil, &GenerationError{Reason: "image generation request failed", Err: err}
	}

	out, err := c.parseToResponse(resp, dereferenceSeed(opts.Seed))
	if err != nil {
		slog.WarnContext(ctx, "Gemini のレスポンスから画像を取り出せませんでした",
			"model", model, "elapsed", time.Since(started), "error", err)
		return nil, err
	}

	slog.InfoContext(ctx, "画像生成が完了しました",
		"model", model, "mime_type", out.MimeType, "bytes", len(out.Data), "elapsed", time.Since(started))

	return &domain.ImageResponse{
		Data:     out.Data,
		MimeType: out.MimeType,
		UsedSeed: out.UsedSeed,
	}, nil
}
