package generator

import (
	"errors"
	"strings"
)

// GenerationError は外部呼び出しの失敗をひとつにまとめたエラーです。
// 通信失敗、非成功レスポンス、画像を含まないレスポンスのいずれもこの型になります。
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	if e.Reason == "" {
		return e.Err.Error()
	}
	return e.Reason + ": " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

// UserMessage はエラーを画面に表示する文言に変換します。
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		if msg := strings.TrimSpace(genErr.Error()); msg != "" {
			return msg
		}
		return FallbackMessage
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return FallbackMessage
}
