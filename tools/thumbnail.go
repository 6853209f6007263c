package tools

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

// Thumbnail scales the image by ratio (0 < ratio <= 1) and re-encodes it in format.
func Thumbnail(r io.Reader, ratio float64, format imaging.Format) (io.Reader, error) {
	if ratio <= 0 || ratio > 1 {
		return nil, fmt.Errorf("invalid thumbnail ratio: %v", ratio)
	}
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	width := max(int(float64(b.Dx())*ratio), 1)
	height := max(int(float64(b.Dy())*ratio), 1)
	thumbnail := imaging.Thumbnail(img, width, height, imaging.Lanczos)
	if thumbnail == nil {
		return nil, io.ErrUnexpectedEOF
	}
	var buf bytes.Buffer
	err = imaging.Encode(&buf, thumbnail, format)
	if err != nil {
		return nil, err
	}
	return &buf, nil
}
