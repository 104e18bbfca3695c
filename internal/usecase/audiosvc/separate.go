package audiosvc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sir_venger/media_lite/internal/models"
	"github.com/sir_venger/media_lite/internal/scratch"
)

const separatedDir = "separated"

// Separate запускает модель разделения на WAV и возвращает четыре трека
// в порядке models.StemNames. Одновременно работает не больше MaxConcurrent моделей.
func (s *Audio) Separate(ctx context.Context, ws *scratch.Workspace, wav string) (stems []models.Stem, err error) {
	if err := s.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrBusy, err)
	}
	defer s.slots.Release(1)

	start := time.Now()
	defer func() { s.Metrics.ObserveJob("demucs", start, err) }()

	outRoot := ws.Path(separatedDir)
	if err := s.Runner.Run(ctx, s.Demucs, s.demucsArgs(outRoot, wav)...); err != nil {
		return nil, err
	}

	dir := filepath.Join(outRoot, s.Model.Model)
	stems = make([]models.Stem, 0, len(models.StemNames))
	for _, name := range models.StemNames {
		path := filepath.Join(dir, name+".wav")
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", models.ErrMissingStem, name)
			}
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%w: %s", models.ErrMissingStem, name)
		}
		stems = append(stems, models.Stem{Name: name, Path: path})
	}

	return stems, nil
}

func (s *Audio) demucsArgs(outRoot, input string) []string {
	device := s.Model.Device
	if device == "" {
		device = "cpu"
	}
	return []string{
		"-n", s.Model.Model,
		"--overlap", strconv.FormatFloat(s.Model.Overlap, 'f', -1, 64),
		"--shifts", strconv.Itoa(s.Model.Shifts),
		"-d", device,
		"-o", outRoot,
		"--filename", "{stem}.{ext}",
		input,
	}
}
