// Package ytsvc скачивает ролик или его звуковую дорожку с YouTube в рабочую директорию запроса.
package ytsvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kkdai/youtube/v2"
	log "github.com/sirupsen/logrus"

	"github.com/sir_venger/media_lite/internal/metrics"
	"github.com/sir_venger/media_lite/internal/models"
	"github.com/sir_venger/media_lite/internal/scratch"
	"github.com/sir_venger/media_lite/pkg/progress"
)

type Service interface {
	Fetch(ctx context.Context, ws *scratch.Workspace, rawURL, action string) (models.Artifact, error)
}

// Resolver: часть youtube.Client, которая нужна сервису.
type Resolver interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetStreamURLContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (string, error)
	GetStreamContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (io.ReadCloser, int64, error)
}

var _ Resolver = (*youtube.Client)(nil)

type Deps struct {
	Resolver   Resolver
	Downloader Downloader
	Metrics    *metrics.Metrics
}

type Fetcher struct {
	Deps
}

func New(deps Deps) *Fetcher {
	if deps.Resolver == nil {
		deps.Resolver = &youtube.Client{}
	}
	if deps.Downloader == nil {
		deps.Downloader = GotDownloader{}
	}
	return &Fetcher{Deps: deps}
}

var _ Service = (*Fetcher)(nil)

// Fetch проверяет форму, выбирает поток и кладёт его в рабочую директорию.
// Ошибки входных данных возвращаются как есть, все прочие оборачивают models.ErrUpstream.
func (s *Fetcher) Fetch(ctx context.Context, ws *scratch.Workspace, rawURL, action string) (art models.Artifact, err error) {
	act, err := Validate(rawURL, action)
	if err != nil {
		return models.Artifact{}, err
	}

	start := time.Now()
	defer func() { s.Metrics.ObserveJob("youtube_"+string(act), start, err) }()

	video, err := s.Resolver.GetVideoContext(ctx, rawURL)
	if err != nil {
		return models.Artifact{}, upstream(err)
	}

	var (
		format   *youtube.Format
		ext      string
		mimeType string
	)
	switch act {
	case ActionVideo:
		format, ext, mimeType = pickVideo(video.Formats), "mp4", "video/mp4"
	case ActionAudio:
		format, ext, mimeType = pickAudio(video.Formats), "mp3", "audio/mp3"
	}
	if format == nil {
		return models.Artifact{}, upstream(fmt.Errorf("no %s stream available", act))
	}

	entry := log.WithFields(log.Fields{
		"video_id": video.ID,
		"itag":     format.ItagNo,
		"mime":     format.MimeType,
	})

	dest := ws.Path(ws.ID + "." + ext)
	size, err := s.download(ctx, entry, video, format, dest)
	if err != nil {
		return models.Artifact{}, upstream(err)
	}

	return models.Artifact{
		Name:     SafeTitle(video.Title) + "." + ext,
		MimeType: mimeType,
		Path:     dest,
		Size:     size,
	}, nil
}

// download сначала пробует got по прямой ссылке, при неудаче читает поток через клиент YouTube.
func (s *Fetcher) download(ctx context.Context, entry *log.Entry, video *youtube.Video, format *youtube.Format, dest string) (int64, error) {
	streamURL, err := s.Resolver.GetStreamURLContext(ctx, video, format)
	if err == nil {
		if err = s.Downloader.Download(ctx, streamURL, dest); err == nil {
			info, statErr := os.Stat(dest)
			if statErr != nil {
				return 0, statErr
			}
			entry.WithField("size", progress.HumanBytes(info.Size())).Info("youtube stream downloaded")
			return info.Size(), nil
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}
	entry.WithError(err).Warn("chunked download failed, falling back to stream reader")

	stream, total, err := s.Resolver.GetStreamContext(ctx, video, format)
	if err != nil {
		return 0, err
	}
	body := progress.NewReadCloser(stream, progress.NewBar(entry, "youtube stream", total))
	defer body.Close()

	return copyToFile(dest, body)
}

func upstream(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", models.ErrUpstream, err)
}
