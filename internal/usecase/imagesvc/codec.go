package imagesvc

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/sir_venger/media_lite/internal/models"
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func decode(r io.Reader) (image.Image, string, error) {
	img, kind, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, kind, nil
}

// encode пишет img в формате format (регистр не важен).
func encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "png":
		return png.Encode(w, img)
	case "jpeg", "jpg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpeg.DefaultQuality})
	case "gif":
		return gif.Encode(w, img, nil)
	case "bmp":
		return bmp.Encode(w, img)
	case "tiff", "tif":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case "webp":
		// lossless VP8L; обратно читается через x/image/webp
		return nativewebp.Encode(w, img, nil)
	default:
		return fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, format)
	}
}

func isPNG(b []byte) bool {
	return bytes.HasPrefix(b, pngSignature)
}
