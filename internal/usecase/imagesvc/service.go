package imagesvc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sir_venger/media_lite/internal/metrics"
	"github.com/sir_venger/media_lite/internal/models"
	"github.com/sir_venger/media_lite/internal/scratch"
	"github.com/sir_venger/media_lite/internal/toolexec"
)

// Service объединяет операции над изображениями.
type Service interface {
	Convert(ctx context.Context, r io.Reader, format string) (models.Artifact, error)
	RemoveBackground(ctx context.Context, data []byte) (models.Artifact, error)
}

type Deps struct {
	Runner  toolexec.Runner
	Rembg   string
	Scratch *scratch.Root
	Metrics *metrics.Metrics
}

type Images struct {
	Deps
}

// New конструирует сервис изображений с заданными зависимостями.
func New(deps Deps) *Images {
	if deps.Runner == nil {
		deps.Runner = toolexec.ExecRunner{}
	}
	if deps.Rembg == "" {
		deps.Rembg = "rembg"
	}
	return &Images{Deps: deps}
}

var _ Service = (*Images)(nil)

// Convert декодирует изображение и перекодирует его в format.
// Строка формата не сверяется со списком, ошибку возвращает энкодер.
func (s *Images) Convert(ctx context.Context, r io.Reader, format string) (art models.Artifact, err error) {
	start := time.Now()
	defer func() { s.Metrics.ObserveJob("convert", start, err) }()

	img, _, err := decode(r)
	if err != nil {
		return models.Artifact{}, err
	}
	if err := ctx.Err(); err != nil {
		return models.Artifact{}, err
	}

	var buf bytes.Buffer
	if err := encode(&buf, img, format); err != nil {
		return models.Artifact{}, err
	}

	return models.Artifact{
		Name:     fmt.Sprintf("converted_image.%s", format),
		MimeType: fmt.Sprintf("image/%s", format),
		Body:     buf.Bytes(),
		Size:     int64(buf.Len()),
	}, nil
}
