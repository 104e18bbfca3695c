// Package toolexec запускает внешние бинарники (ffmpeg, rembg, demucs) с привязкой к контексту запроса.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	stderrTailLines = 5
	// waitDelay ограничивает ожидание stderr после убийства процесса.
	waitDelay = 2 * time.Second
)

// Runner выполняет внешнюю команду до завершения.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner запускает процессы через os/exec.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

// Run запускает команду и ждёт её. При отмене контекста процесс убивается,
// а в цепочке ошибки оказывается ctx.Err().
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()
	entry := log.WithFields(log.Fields{
		"tool":     filepath.Base(name),
		"duration": time.Since(start).Round(time.Millisecond),
	})

	if err != nil {
		tail := Tail(stderr.String(), stderrTailLines)
		entry.WithError(err).WithField("stderr", tail).Debug("tool failed")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", filepath.Base(name), ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && tail != "" {
			return fmt.Errorf("%s: %w: %s", filepath.Base(name), err, tail)
		}
		return fmt.Errorf("%s: %w", filepath.Base(name), err)
	}

	entry.Debug("tool finished")
	return nil
}

// Available сообщает, найден ли бинарник в PATH (или по явному пути).
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Tail возвращает последние n непустых строк вывода одной строкой.
func Tail(out string, n int) string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	kept := make([]string, 0, n)
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return strings.Join(kept, " | ")
}
