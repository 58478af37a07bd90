package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/logo-reimaginer/pkg/domain"
	"google.golang.org/genai"
)

// GeminiGenerator はロゴ画像と参照画像、固定プロンプトを一回のリクエストにまとめて送信します。
type GeminiGenerator struct {
	imgCore *GeminiImageCore
	opts    Options
}

// NewGeminiGenerator は GeminiGenerator を初期化するのだ。
func NewGeminiGenerator(core *GeminiImageCore, opts Options) (*GeminiGenerator, error) {
	if core == nil {
		return nil, fmt.Errorf("core (GeminiImageCore) is required")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	return &GeminiGenerator{imgCore: core, opts: opts}, nil
}

// Generate はプロンプト、メインロゴ、（あれば）タイポグラフィ参照の順でパーツを組み立てて生成するのだ。
// 同じ入力でも毎回外部呼び出しを行い、結果はキャッシュしないのだ。
func (g *GeminiGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	parts := []*genai.Part{{Text: req.Prompt}}

	mainPart := g.imgCore.toPart(req.MainPayload, req.MainMimeType)
	if mainPart == nil {
		return nil, &GenerationError{Reason: "the main logo is not a supported image"}
	}
	parts = append(parts, mainPart)

	if req.HasFont() {
		if fontPart := g.imgCore.toPart(req.FontPayload, req.FontMimeType); fontPart != nil {
			parts = append(parts, fontPart)
		} else {
			// 参照画像は任意なので、失敗してもロゴのみで続行するのだ
			slog.WarnContext(ctx, "タイポグラフィ参照画像をパーツに変換できませんでした。ロゴのみで続行します",
				"mime_type", req.FontMimeType)
		}
	}

	slog.InfoContext(ctx, "Gemini に画像生成をリクエストします",
		"model", g.opts.Model, "total_parts", len(parts), "has_font_reference", len(parts) == 3)

	return g.imgCore.ExecuteRequest(ctx, g.opts.Model, parts, g.opts)
}
