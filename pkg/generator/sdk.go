package generator

import (
	"context"
	"fmt"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// modelsAPI は genai.Models のうち利用するメソッドだけを切り出したものです。
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// SDKModel は google.golang.org/genai のクライアントで ContentGenerator を実装します。
type SDKModel struct {
	models modelsAPI
}

// NewSDKModel は genai.Client から SDKModel を生成します。
func NewSDKModel(client *genai.Client) (*SDKModel, error) {
	if client == nil {
		return nil, fmt.Errorf("genai client is required")
	}
	return &SDKModel{models: client.Models}, nil
}

// GenerateWithParts はパーツをユーザーロールのコンテンツとして送信し、画像付きの応答を要求します。
func (m *SDKModel) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
		Seed:               seedToPtrInt32(opts.Seed),
	}
	if opts.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(opts.SystemPrompt, genai.RoleUser)
	}
	if opts.AspectRatio != "" {
		cfg.ImageConfig = &genai.ImageConfig{AspectRatio: opts.AspectRatio}
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := m.models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	return &gemini.Response{RawResponse: resp}, nil
}
