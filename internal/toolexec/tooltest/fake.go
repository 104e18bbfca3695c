// Package tooltest подменяет внешние бинарники в тестах.
package tooltest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// HandlerFunc имитирует запуск одного бинарника.
type HandlerFunc func(ctx context.Context, args []string) error

type Call struct {
	Name string
	Args []string
}

// Runner реализует toolexec.Runner: вызовы маршрутизируются по базовому имени бинарника.
type Runner struct {
	mu       sync.Mutex
	calls    []Call
	handlers map[string]HandlerFunc
}

func NewRunner() *Runner {
	return &Runner{handlers: map[string]HandlerFunc{}}
}

// Handle регистрирует поведение для бинарника name.
func (r *Runner) Handle(name string, h HandlerFunc) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[filepath.Base(name)] = h
	return r
}

func (r *Runner) Run(ctx context.Context, name string, args ...string) error {
	base := filepath.Base(name)
	r.mu.Lock()
	r.calls = append(r.calls, Call{Name: base, Args: append([]string(nil), args...)})
	h, ok := r.handlers[base]
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%s: executable file not found in $PATH", base)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", base, err)
	}
	return h(ctx, args)
}

// Calls возвращает копию журнала вызовов.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsTo возвращает вызовы конкретного бинарника.
func (r *Runner) CallsTo(name string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Name == filepath.Base(name) {
			out = append(out, c)
		}
	}
	return out
}

// Fail всегда возвращает err.
func Fail(err error) HandlerFunc {
	return func(context.Context, []string) error { return err }
}

// FFmpeg пишет payload в последний аргумент (путь вывода).
// Как и настоящий ffmpeg, падает, если вход после -i отсутствует или совпадает с выходом.
func FFmpeg(payload []byte) HandlerFunc {
	return func(_ context.Context, args []string) error {
		if len(args) == 0 {
			return errors.New("ffmpeg: no output")
		}
		out := args[len(args)-1]
		for i := 0; i < len(args)-2; i++ {
			if args[i] != "-i" {
				continue
			}
			in := args[i+1]
			if samePath(in, out) {
				return fmt.Errorf("ffmpeg: output %s same as input #0", out)
			}
			if _, err := os.Stat(in); err != nil {
				return fmt.Errorf("ffmpeg: %w", err)
			}
		}
		return os.WriteFile(out, payload, 0o644)
	}
}

// samePath сравнивает без учёта регистра: на macOS и Windows это один и тот же файл.
func samePath(a, b string) bool {
	return strings.EqualFold(filepath.Clean(a), filepath.Clean(b))
}

// Rembg читает входной PNG (предпоследний аргумент) и пишет полностью прозрачный PNG того же размера.
func Rembg() HandlerFunc {
	return func(_ context.Context, args []string) error {
		if len(args) < 2 {
			return errors.New("rembg: usage")
		}
		in, err := os.Open(args[len(args)-2])
		if err != nil {
			return err
		}
		defer in.Close()
		src, err := png.Decode(in)
		if err != nil {
			return err
		}

		out, err := os.Create(args[len(args)-1])
		if err != nil {
			return err
		}
		defer out.Close()
		return png.Encode(out, image.NewNRGBA(src.Bounds()))
	}
}

// Demucs кладёт по WAV-заглушке на каждый трек в <-o>/<-n>/.
func Demucs(stems []string) HandlerFunc {
	return func(_ context.Context, args []string) error {
		var outRoot, model string
		for i := 0; i < len(args)-1; i++ {
			switch args[i] {
			case "-o":
				outRoot = args[i+1]
			case "-n":
				model = args[i+1]
			}
		}
		if outRoot == "" || model == "" {
			return errors.New("demucs: -o and -n are required")
		}
		dir := filepath.Join(outRoot, model)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		for _, s := range stems {
			if err := os.WriteFile(filepath.Join(dir, s+".wav"), WAV(), 0o644); err != nil {
				return err
			}
		}
		return nil
	}
}

// WAV возвращает минимальный моно PCM-файл с четырьмя нулевыми сэмплами.
func WAV() []byte {
	const dataLen = 8
	b := []byte("RIFF\x00\x00\x00\x00WAVEfmt ")
	b = append(b,
		16, 0, 0, 0, // fmt chunk size
		1, 0, // PCM
		1, 0, // mono
		0x44, 0xAC, 0, 0, // 44100 Hz
		0x88, 0x58, 0x01, 0, // byte rate
		2, 0, // block align
		16, 0, // bits per sample
	)
	b = append(b, []byte("data")...)
	b = append(b, dataLen, 0, 0, 0)
	b = append(b, make([]byte, dataLen)...)
	size := len(b) - 8
	b[4], b[5], b[6], b[7] = byte(size), byte(size>>8), byte(size>>16), byte(size>>24)
	return b
}
