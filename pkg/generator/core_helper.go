package generator

import (
	"net/http"
	"strings"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

func (c *GeminiImageCore) toPart(data []byte, mimeType string) *genai.Part {
	if len(data) == 0 {
		return nil
	}
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil
	}
	return &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}
}

func (c *GeminiImageCore) parseToResponse(resp *gemini.Response, seed int64) (*ImageOutput, error) {
	if resp == nil || resp.RawResponse == nil {
		return nil, &GenerationError{Reason: "the image service returned no candidates"}
	}
	if err := promptBlocked(resp.RawResponse.PromptFeedback); err != nil {
		return nil, err
	}
	if len(resp.RawResponse.Candidates) == 0 {
		return nil, &GenerationError{Reason: "the image service returned no candidates"}
	}

	// 最初の候補のみを利用する
	candidate := resp.RawResponse.Candidates[0]

	var text []string
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mimeType := part.InlineData.MIMEType
				if mimeType == "" {
					mimeType = http.DetectContentType(part.InlineData.Data)
				}
				return &ImageOutput{Data: part.InlineData.Data, MimeType: mimeType, UsedSeed: seed}, nil
			}
			if t := strings.TrimSpace(part.Text); t != "" {
				text = append(text, t)
			}
		}
	}

	// 安全フィルター等によるブロックの確認
	switch candidate.FinishReason {
	case "", genai.FinishReasonUnspecified, genai.FinishReasonStop:
	default:
		return nil, &GenerationError{Reason: "image generation was stopped (finish reason: " + string(candidate.FinishReason) + ")"}
	}

	if len(text) > 0 {
		return nil, &GenerationError{Reason: "the model returned no image: " + strings.Join(text, " ")}
	}
	return nil, &GenerationError{Reason: "the model returned no image"}
}

// promptBlocked はプロンプト自体がブロックされた場合にその理由をエラーにします。
func promptBlocked(fb *genai.GenerateContentResponsePromptFeedback) error {
	if fb == nil || fb.BlockReason == "" || fb.BlockReason == genai.BlockedReasonUnspecified {
		return nil
	}
	reason := "the request was blocked (block reason: " + string(fb.BlockReason) + ")"
	if msg := strings.TrimSpace(fb.BlockReasonMessage); msg != "" {
		reason += ": " + msg
	}
	return &GenerationError{Reason: reason}
}
