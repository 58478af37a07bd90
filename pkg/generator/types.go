package generator

import "github.com/shouni/go-gemini-client/pkg/gemini"

const (
	// DefaultModel は画像編集に対応した Gemini モデルです。
	DefaultModel = "gemini-2.5-flash-image"
	// FallbackMessage は理由が特定できない失敗時にユーザーへ表示する文言です。
	FallbackMessage = "Something went wrong. Please try again."
)

// ImageOutput は Core の内部解析結果
type ImageOutput struct {
	Data     []byte
	MimeType string
	UsedSeed int64
}

// Options は生成リクエストごとに共通で使うパラメータです。
type Options struct {
	Model        string
	AspectRatio  string
	Seed         *int64 // nil でランダム
	SystemPrompt string
}

func (o Options) generateOptions() gemini.GenerateOptions {
	return gemini.GenerateOptions{
		AspectRatio:  o.AspectRatio,
		SystemPrompt: o.SystemPrompt,
		Seed:         o.Seed,
	}
}
