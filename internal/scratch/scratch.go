// Package scratch выдаёт каждому запросу собственную рабочую директорию на диске
// и подметает директории, оставшиеся после аварийных завершений.
package scratch

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Root: корневой каталог, внутри которого живут рабочие директории запросов.
type Root struct {
	dir   string
	clock clockwork.Clock
}

// NewRoot создаёт корень (и сам каталог, если его нет).
func NewRoot(dir string) (*Root, error) {
	return NewRootWithClock(dir, clockwork.NewRealClock())
}

func NewRootWithClock(dir string, clock clockwork.Clock) (*Root, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("scratch dir is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve scratch dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("prepare scratch dir: %w", err)
	}
	return &Root{dir: abs, clock: clock}, nil
}

func (r *Root) Dir() string { return r.dir }

// Workspace: директория одного запроса. Close удаляет её целиком.
type Workspace struct {
	ID  string
	Dir string
}

// NewWorkspace создаёт директорию с уникальным uuid-именем.
func (r *Root) NewWorkspace() (*Workspace, error) {
	id := uuid.NewString()
	dir := filepath.Join(r.dir, id)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{ID: id, Dir: dir}, nil
}

// Path возвращает путь внутри рабочей директории; имя обрезается до базового.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, filepath.Base(name))
}

// Save копирует поток в файл рабочей директории и возвращает путь и размер.
func (w *Workspace) Save(name string, src io.Reader) (string, int64, error) {
	path := w.Path(name)
	f, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}

	n, err := io.Copy(f, src)
	closeErr := f.Close()
	if err != nil {
		return "", 0, err
	}
	if closeErr != nil {
		return "", 0, closeErr
	}

	return path, n, nil
}

// Close удаляет рабочую директорию со всем содержимым.
func (w *Workspace) Close() error {
	if w == nil || w.Dir == "" {
		return nil
	}
	err := os.RemoveAll(w.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Usage суммирует размер всех файлов под корнем.
func (r *Root) Usage() (int64, error) {
	var total int64
	err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// директория могла исчезнуть между ReadDir и Info
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}

		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		total += info.Size()

		return nil
	})

	return total, err
}
