package service

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// JPEG quality for normalized catalog images
const jpegQuality = 90

// NormalizeImage decodes downloaded image bytes (PNG, JPEG, GIF, BMP, TIFF...)
// and re-encodes them as JPEG so every catalog image lands as a real .jpg.
// Returns an error when the bytes are not a decodable image; the caller decides
// whether to keep the raw bytes anyway.
func NormalizeImage(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}
	return buf.Bytes(), nil
}
