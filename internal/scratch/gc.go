package scratch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// StartGC стартует периодическую очистку корня. onSweep (может быть nil)
// получает число удалённых директорий после каждого прохода.
func (r *Root) StartGC(ttl time.Duration, every time.Duration, onSweep func(int)) func() {
	if every <= 0 || ttl <= 0 {
		return func() {}
	}

	ticker := r.clock.NewTicker(every)
	stop := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case <-ticker.Chan():
				removed, err := r.Sweep(ttl)
				if err != nil {
					log.WithError(err).WithField("dir", r.dir).Warn("scratch sweep failed")
				}
				if onSweep != nil {
					onSweep(removed)
				}
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			close(stop)
		})
	}
}

// Sweep удаляет рабочие директории старше ttl. Трогает только каталоги
// с uuid-именами, чтобы не снести чужие файлы, если корень указывает на общий tmp.
func (r *Root) Sweep(ttl time.Duration) (int, error) {
	now := r.clock.Now()
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := uuid.Parse(e.Name()); err != nil {
			continue
		}

		info, err := e.Info()
		if err != nil {
			continue
		}

		if now.Sub(info.ModTime()) < ttl {
			continue
		}

		path := filepath.Join(r.dir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			log.WithError(err).WithField("workspace", path).Warn("remove stale workspace")
			continue
		}
		removed++
	}

	if removed > 0 {
		log.WithFields(log.Fields{"dir": r.dir, "removed": removed}).Info("stale workspaces removed")
	}

	return removed, nil
}
