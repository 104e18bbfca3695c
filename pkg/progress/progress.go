// Package progress отчитывается о ходе передачи потоков данных в лог.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultReportPeriod = 2 * time.Second

// Bar считает переданные байты и периодически пишет строку прогресса.
type Bar struct {
	label      string
	total      int64
	current    int64
	period     time.Duration
	lastReport time.Time
	finished   bool
	entry      *log.Entry
	now        func() time.Time
	mu         sync.Mutex
}

// NewBar создаёт индикатор; total <= 0 означает неизвестный размер.
func NewBar(entry *log.Entry, label string, total int64) *Bar {
	if entry == nil {
		entry = log.NewEntry(log.StandardLogger())
	}
	return &Bar{
		label:  label,
		total:  total,
		period: defaultReportPeriod,
		entry:  entry,
		now:    time.Now,
	}
}

// AddBytes учитывает n байт и, если прошёл период, пишет отчёт.
func (p *Bar) AddBytes(n int64) {
	if p == nil || n <= 0 {
		return
	}
	p.mu.Lock()
	if p.finished {
		p.mu.Unlock()
		return
	}
	p.current += n
	now := p.now()
	if now.Sub(p.lastReport) < p.period {
		p.mu.Unlock()
		return
	}
	p.lastReport = now
	fields := p.fieldsLocked()
	p.mu.Unlock()

	p.entry.WithFields(fields).Debug(p.label)
}

// Current возвращает количество учтённых байт.
func (p *Bar) Current() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Bar) fieldsLocked() log.Fields {
	fields := log.Fields{"transferred": HumanBytes(p.current)}
	if p.total > 0 {
		ratio := float64(p.current) / float64(p.total)
		if ratio > 1 {
			ratio = 1
		}
		fields["total"] = HumanBytes(p.total)
		fields["percent"] = int(ratio*100 + 0.5)
	}
	return fields
}

func (p *Bar) Finish() {
	p.complete(nil)
}

func (p *Bar) Fail(err error) {
	p.complete(err)
}

func (p *Bar) complete(err error) {
	if p == nil {
		return
	}

	p.mu.Lock()
	if p.finished {
		p.mu.Unlock()
		return
	}
	p.finished = true
	fields := p.fieldsLocked()
	p.mu.Unlock()

	if err != nil {
		p.entry.WithFields(fields).WithError(err).Warn(p.label + " failed")
		return
	}
	p.entry.WithFields(fields).Info(p.label + " done")
}

// Writer учитывает записанные байты, ничего не сохраняя.
type Writer struct {
	Bar *Bar
}

func (w Writer) Write(p []byte) (int, error) {
	if len(p) > 0 && w.Bar != nil {
		w.Bar.AddBytes(int64(len(p)))
	}
	return len(p), nil
}

type readCloser struct {
	inner io.ReadCloser
	bar   *Bar
	done  bool
}

// NewReadCloser оборачивает поток так, что чтение двигает индикатор.
func NewReadCloser(inner io.ReadCloser, bar *Bar) io.ReadCloser {
	if bar == nil || inner == nil {
		return inner
	}

	return &readCloser{
		inner: inner,
		bar:   bar,
	}
}

func (p *readCloser) Read(b []byte) (int, error) {
	n, err := p.inner.Read(b)
	if n > 0 {
		p.bar.AddBytes(int64(n))
	}
	if err != nil {
		p.finish(err)
	}
	return n, err
}

func (p *readCloser) Close() error {
	err := p.inner.Close()
	p.finish(err)
	return err
}

func (p *readCloser) finish(err error) {
	if p.done {
		return
	}
	p.done = true
	if err != nil && err != io.EOF {
		p.bar.Fail(err)
		return
	}
	p.bar.Finish()
}

// HumanBytes форматирует размер в двоичных единицах.
func HumanBytes(v int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB", "PB"}
	value := float64(v)
	unit := 0
	for value >= 1024 && unit < len(units)-1 {
		value /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%d %s", v, units[unit])
	}
	return fmt.Sprintf("%.1f %s", value, units[unit])
}
