package media

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// maxSide is the longest edge accepted for chat photo uploads.
const maxSide = 1280

// PreparePhoto loads a catalog photo and returns it as JPEG bytes bounded
// to maxSide. Source files may be webp (the catalog's native format), jpeg
// or png; chat transports do not take webp uploads, so everything is
// re-encoded.
func PreparePhoto(path string) ([]byte, error) {
	var img image.Image
	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("media: read %s: %w", path, err)
		}
		img, err = webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("media: decode %s: %w", path, err)
		}
	default:
		var err error
		img, err = imaging.Open(path)
		if err != nil {
			return nil, fmt.Errorf("media: open %s: %w", path, err)
		}
	}

	b := img.Bounds()
	if b.Dx() > maxSide || b.Dy() > maxSide {
		img = imaging.Fit(img, maxSide, maxSide, imaging.Lanczos)
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("media: encode %s: %w", path, err)
	}
	return out.Bytes(), nil
}
