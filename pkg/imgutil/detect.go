package imgutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// Format は受け付ける画像フォーマットです。
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	WEBP Format = "webp"
)

// MimeType はフォーマットに対応する MIME タイプを返します。
func (f Format) MimeType() string {
	return "image/" + string(f)
}

// Info はヘッダから読み取った画像の基本情報です。
type Info struct {
	Format Format
	Width  int
	Height int
}

// Detect はヘッダをデコードしてフォーマットと寸法を判定します。
// ファイル名や申告された Content-Type は信用しません。
func Detect(data []byte) (Info, error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("画像として認識できません: %w", err)
	}

	switch Format(name) {
	case PNG, JPEG, GIF, WEBP:
		return Info{Format: Format(name), Width: cfg.Width, Height: cfg.Height}, nil
	}
	return Info{}, fmt.Errorf("unsupported image format: %s", name)
}
