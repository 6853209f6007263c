package tools

import (
	"bytes"
	"net/http"
)

type ImageType string

const (
	ImageTypePNG     ImageType = "png"
	ImageTypeJPEG    ImageType = "jpeg"
	ImageTypeWEBP    ImageType = "webp"
	ImageTypeGIF     ImageType = "gif"
	ImageTypeUnknown ImageType = "unknown"
)

func (t ImageType) String() string {
	return string(t)
}

// Ext returns the file extension with the leading dot.
func (t ImageType) Ext() string {
	switch t {
	case ImageTypeJPEG:
		return ".jpg"
	case ImageTypeUnknown:
		return ".bin"
	default:
		return "." + string(t)
	}
}

func DetectImageType(b []byte) ImageType {
	switch {
	case bytes.HasPrefix(b, []byte("\x89PNG\r\n\x1a\n")):
		return ImageTypePNG
	case bytes.HasPrefix(b, []byte{0xFF, 0xD8, 0xFF}):
		return ImageTypeJPEG
	case len(b) >= 12 && string(b[0:4]) == "RIFF" && string(b[8:12]) == "WEBP":
		return ImageTypeWEBP
	case bytes.HasPrefix(b, []byte("GIF87a")), bytes.HasPrefix(b, []byte("GIF89a")):
		return ImageTypeGIF
	}
	// http.DetectContentType covers the remaining image/* signatures (bmp, ico)
	ct := http.DetectContentType(b)
	if len(ct) > len("image/") && ct[:len("image/")] == "image/" {
		return ImageType(ct[len("image/"):])
	}
	return ImageTypeUnknown
}
