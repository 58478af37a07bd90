package ingest

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/shouni/logo-reimaginer/pkg/domain"
	"github.com/shouni/logo-reimaginer/pkg/imgutil"
	"github.com/shouni/logo-reimaginer/pkg/preview"
)

const (
	DefaultMaxBytes        = 10 << 20
	DefaultCompressQuality = 75
)

var (
	ErrEmpty       = errors.New("file is empty")
	ErrTooLarge    = errors.New("file exceeds the upload size limit")
	ErrUnsupported = errors.New("unsupported image type (PNG, JPEG, GIF or WebP required)")
)

// Error はファイル読み込みに失敗したことを表します。
// 既にアップロード済みの画像には影響しません。
type Error struct {
	Filename string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to read %q: %v", e.Filename, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Options は取り込み時の制限と圧縮設定です。
type Options struct {
	MaxBytes        int64
	Compress        bool
	CompressQuality int
}

// Ingestor はアップロードされたファイルを UploadedImage に変換します。
type Ingestor struct {
	previews *preview.Registry
	opts     Options
}

// NewIngestor は Ingestor を初期化します。
func NewIngestor(previews *preview.Registry, opts Options) (*Ingestor, error) {
	if previews == nil {
		return nil, fmt.Errorf("previews (preview.Registry) is required")
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.CompressQuality <= 0 || opts.CompressQuality > 100 {
		opts.CompressQuality = DefaultCompressQuality
	}
	return &Ingestor{previews: previews, opts: opts}, nil
}

// MaxBytes は受け付ける最大サイズを返します。
func (i *Ingestor) MaxBytes() int64 { return i.opts.MaxBytes }

// Ingest は r を最後まで読み込み、送信用ペイロードとプレビューハンドルを作ります。
// 戻り値の Payload は完全に読み込まれた状態で返ります。
func (i *Ingestor) Ingest(r io.Reader, filename string) (*domain.UploadedImage, error) {
	data, err := io.ReadAll(io.LimitReader(r, i.opts.MaxBytes+1))
	if err != nil {
		return nil, &Error{Filename: filename, Err: err}
	}
	if len(data) == 0 {
		return nil, &Error{Filename: filename, Err: ErrEmpty}
	}
	if int64(len(data)) > i.opts.MaxBytes {
		return nil, &Error{Filename: filename, Err: ErrTooLarge}
	}

	info, err := imgutil.Detect(data)
	if err != nil {
		return nil, &Error{Filename: filename, Err: fmt.Errorf("%w: %v", ErrUnsupported, err)}
	}

	payload, mimeType := data, info.Format.MimeType()
	if i.opts.Compress && info.Format != imgutil.JPEG {
		compressed, err := imgutil.CompressToJPEG(data, i.opts.CompressQuality)
		if err != nil {
			slog.Warn("JPEG圧縮に失敗したため元データを送信します", "filename", filename, "error", err)
		} else {
			payload, mimeType = compressed, imgutil.JPEG.MimeType()
		}
	}

	slog.Info("画像を取り込みました",
		"filename", filename, "format", info.Format, "width", info.Width, "height", info.Height,
		"bytes", len(data), "payload_bytes", len(payload))

	return &domain.UploadedImage{
		Filename: filename,
		Size:     int64(len(data)),
		MimeType: mimeType,
		Payload:  payload,
		Preview:  i.previews.Create(data, info.Format.MimeType()),
	}, nil
}
