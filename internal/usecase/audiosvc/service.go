package audiosvc

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/sir_venger/media_lite/internal/config"
	"github.com/sir_venger/media_lite/internal/metrics"
	"github.com/sir_venger/media_lite/internal/models"
	"github.com/sir_venger/media_lite/internal/scratch"
	"github.com/sir_venger/media_lite/internal/toolexec"
)

type (
	// Service объединяет операции над аудиофайлами. Все пути живут в рабочей директории запроса.
	Service interface {
		Convert(ctx context.Context, ws *scratch.Workspace, input, format string) (string, error)
		EnsureWAV(ctx context.Context, ws *scratch.Workspace, input string) (string, error)
		Separate(ctx context.Context, ws *scratch.Workspace, wav string) ([]models.Stem, error)
		Archive(ws *scratch.Workspace, stems []models.Stem) (string, error)
	}
)

type Deps struct {
	Runner  toolexec.Runner
	FFmpeg  string
	Demucs  string
	Model   config.DemucsConfig
	Metrics *metrics.Metrics
}

type Audio struct {
	Deps
	slots *semaphore.Weighted
}

// New конструирует аудио-сервис; число одновременных разделений ограничено Model.MaxConcurrent.
func New(deps Deps) *Audio {
	if deps.Runner == nil {
		deps.Runner = toolexec.ExecRunner{}
	}
	if deps.FFmpeg == "" {
		deps.FFmpeg = "ffmpeg"
	}
	if deps.Demucs == "" {
		deps.Demucs = "demucs"
	}
	slots := deps.Model.MaxConcurrent
	if slots < 1 {
		slots = 1
	}
	return &Audio{Deps: deps, slots: semaphore.NewWeighted(int64(slots))}
}

var _ Service = (*Audio)(nil)

const convertedSuffix = "_converted"

var formatToken = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// muxers: форматы, у которых имя muxer'а ffmpeg не совпадает с расширением.
var muxers = map[string]string{
	"m4a": "ipod",
	"aac": "adts",
	"mka": "matroska",
	"oga": "ogg",
}

// Convert перекодирует input в соседний файл с расширением format.
func (s *Audio) Convert(ctx context.Context, ws *scratch.Workspace, input, format string) (out string, err error) {
	start := time.Now()
	defer func() { s.Metrics.ObserveJob("audio_convert", start, err) }()

	if !formatToken.MatchString(format) {
		return "", fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, format)
	}

	out = convertedPath(ws, input, format)
	args := []string{"-hide_banner", "-loglevel", "error", "-y", "-i", input, "-f", muxerFor(format), out}
	if err := s.Runner.Run(ctx, s.FFmpeg, args...); err != nil {
		return "", err
	}
	return out, nil
}

// EnsureWAV возвращает input как есть, если это уже .wav, иначе перекодирует в 16-bit PCM WAV.
func (s *Audio) EnsureWAV(ctx context.Context, ws *scratch.Workspace, input string) (out string, err error) {
	if strings.EqualFold(filepath.Ext(input), ".wav") {
		return input, nil
	}

	start := time.Now()
	defer func() { s.Metrics.ObserveJob("wav_normalize", start, err) }()

	out = siblingPath(ws, input, "wav")
	args := []string{"-hide_banner", "-loglevel", "error", "-y", "-i", input, "-acodec", "pcm_s16le", "-f", "wav", out}
	if err := s.Runner.Run(ctx, s.FFmpeg, args...); err != nil {
		return "", err
	}
	return out, nil
}

func siblingPath(ws *scratch.Workspace, input, ext string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return ws.Path(base + "." + ext)
}

// convertedPath никогда не совпадает с input, даже если format равен его расширению.
func convertedPath(ws *scratch.Workspace, input, format string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return ws.Path(base + convertedSuffix + "." + format)
}

func muxerFor(format string) string {
	f := strings.ToLower(format)
	if m, ok := muxers[f]; ok {
		return m
	}
	return f
}
