package domain

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrMissingMainImage はメインロゴなしで生成リクエストを組み立てようとした場合のエラーです。
var ErrMissingMainImage = errors.New("main logo image is required")

// Slot はアップロード領域の種別です。
type Slot string

const (
	SlotMain Slot = "main" // 必須: 再デザイン対象の現行ロゴ
	SlotFont Slot = "font" // 任意: タイポグラフィ参照画像
)

// ParseSlot は文字列を Slot に変換します。
func ParseSlot(s string) (Slot, error) {
	switch Slot(s) {
	case SlotMain, SlotFont:
		return Slot(s), nil
	}
	return "", fmt.Errorf("unknown image slot: %q", s)
}

// Label はユーザー向けの表示名を返します。
func (s Slot) Label() string {
	if s == SlotFont {
		return "font reference image"
	}
	return "main logo image"
}

// PreviewHandle は画面表示専用の解放可能な参照です。
// Release は最初の呼び出しでのみ true を返します。
type PreviewHandle interface {
	URL() string
	Release() bool
}

// UploadedImage は読み込み済みのアップロード画像です。
type UploadedImage struct {
	Filename string
	Size     int64
	MimeType string
	Payload  []byte // 送信用のバイナリ
	Preview  PreviewHandle
}

// Encoded は data URL プレフィックスなしの base64 文字列を返します。
func (u *UploadedImage) Encoded() string {
	return base64.StdEncoding.EncodeToString(u.Payload)
}

// ReleasePreview はプレビューハンドルを解放します。
func (u *UploadedImage) ReleasePreview() bool {
	if u == nil || u.Preview == nil {
		return false
	}
	return u.Preview.Release()
}

// GenerationRequest は送信ごとに新しく組み立てられる生成要求です。
type GenerationRequest struct {
	MainPayload  []byte
	MainMimeType string
	FontPayload  []byte // nil なら参照画像なし
	FontMimeType string
	Prompt       string
}

// NewGenerationRequest はアップロード画像から生成要求を組み立てます。
// main が nil の場合は ErrMissingMainImage を返します。
func NewGenerationRequest(main, font *UploadedImage, prompt string) (GenerationRequest, error) {
	if main == nil {
		return GenerationRequest{}, ErrMissingMainImage
	}
	req := GenerationRequest{
		MainPayload:  main.Payload,
		MainMimeType: main.MimeType,
		Prompt:       prompt,
	}
	if font != nil {
		req.FontPayload = font.Payload
		req.FontMimeType = font.MimeType
	}
	return req, req.Validate()
}

// HasFont はタイポグラフィ参照画像が含まれているかを返します。
func (r GenerationRequest) HasFont() bool {
	return len(r.FontPayload) > 0
}

// Validate は送信前の前提条件を検証します。
func (r GenerationRequest) Validate() error {
	if len(r.MainPayload) == 0 {
		return ErrMissingMainImage
	}
	return nil
}

// ImageResponse は生成された画像データとそのメタデータです。
type ImageResponse struct {
	Data     []byte
	MimeType string
	UsedSeed int64
}

// DataURL は画面に直接表示できるインライン参照を返します。
func (r *ImageResponse) DataURL() string {
	return "data:" + r.MimeType + ";base64," + base64.StdEncoding.EncodeToString(r.Data)
}
