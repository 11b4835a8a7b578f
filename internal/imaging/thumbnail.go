// Package imaging downsizes uploaded photos into thumbnails for the
// analysis result payload.
package imaging

import (
	"bytes"

	"github.com/disintegration/imaging"
)

const (
	// DefaultMaxDim bounds both thumbnail edges in pixels.
	DefaultMaxDim = 320

	jpegQuality = 80
)

// Thumbnail decodes one uploaded image, scales it to fit maxDim on its
// longer edge and re-encodes it as JPEG. EXIF orientation is applied
// during decode so phone photos come out upright.
func Thumbnail(data []byte, maxDim int) ([]byte, error) {
	if maxDim <= 0 {
		maxDim = DefaultMaxDim
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	thumb := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
