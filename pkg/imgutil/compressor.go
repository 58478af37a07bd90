package imgutil

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
)

// CompressToJPEG は画像データ（PNG, GIF, WebP, JPEG）をJPEG形式に圧縮します。
// 透過部分は白で塗りつぶしてから変換します。ロゴの透過背景が黒く潰れるのを防ぐためです。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(canvas, bounds, img, bounds.Min, draw.Over)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, canvas, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
