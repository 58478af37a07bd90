package generator

import (
	"context"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/logo-reimaginer/pkg/domain"
	"google.golang.org/genai"
)

// ContentGenerator はマルチモーダルなパーツを Gemini に送信する通信層です。
// 本番では SDKModel、テストではモックがこれを満たします。
type ContentGenerator interface {
	GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
}

// ImageGenerator はワークフロー層が利用する統合窓口です。
type ImageGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.ImageResponse, error)
}
