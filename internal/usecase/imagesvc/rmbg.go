package imagesvc

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/sir_venger/media_lite/internal/models"
)

const rmbgDownloadName = "_rmbg.png"

var dataURIPrefix = regexp.MustCompile(`^data:image/\w+;base64,`)

// DecodeDataURI снимает префикс data:image/...;base64, (если он есть) и декодирует base64.
func DecodeDataURI(s string) ([]byte, error) {
	payload := dataURIPrefix.ReplaceAllString(strings.TrimSpace(s), "")
	payload = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, payload)

	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "=")); rawErr == nil {
			return raw, nil
		}
		return nil, fmt.Errorf("%w: %v", models.ErrNoInput, err)
	}
	return b, nil
}

// RemoveBackground прогоняет изображение через модель матирования
// с постобработкой маски и возвращает PNG с прозрачным фоном.
func (s *Images) RemoveBackground(ctx context.Context, data []byte) (art models.Artifact, err error) {
	img, _, err := decode(bytes.NewReader(data))
	if err != nil {
		return models.Artifact{}, fmt.Errorf("%w: %v", models.ErrNoInput, err)
	}

	start := time.Now()
	defer func() { s.Metrics.ObserveJob("rmbg", start, err) }()

	if s.Scratch == nil {
		return models.Artifact{}, fmt.Errorf("scratch root is not configured")
	}
	ws, err := s.Scratch.NewWorkspace()
	if err != nil {
		return models.Artifact{}, err
	}
	defer ws.Close()

	// модель принимает любой формат, но PNG сохраняет альфу исходника
	var in bytes.Buffer
	if err := png.Encode(&in, img); err != nil {
		return models.Artifact{}, fmt.Errorf("encode input: %w", err)
	}
	inPath, _, err := ws.Save("input.png", &in)
	if err != nil {
		return models.Artifact{}, err
	}
	outPath := ws.Path("output.png")

	if err := s.Runner.Run(ctx, s.Rembg, "i", "-ppm", inPath, outPath); err != nil {
		return models.Artifact{}, err
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return models.Artifact{}, fmt.Errorf("read matte: %w", err)
	}
	if !isPNG(out) {
		return models.Artifact{}, fmt.Errorf("matte output is not a PNG")
	}

	return models.Artifact{
		Name:     rmbgDownloadName,
		MimeType: "image/png",
		Body:     out,
		Size:     int64(len(out)),
	}, nil
}
