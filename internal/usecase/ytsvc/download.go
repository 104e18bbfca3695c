package ytsvc

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/melbahja/got"
)

// Downloader скачивает файл по прямой ссылке в dest.
type Downloader interface {
	Download(ctx context.Context, url, dest string) error
}

// GotDownloader качает параллельными чанками через got.
type GotDownloader struct {
	Concurrency uint
}

func (d GotDownloader) Download(ctx context.Context, url, dest string) error {
	dl := got.NewDownload(ctx, url, dest)
	if d.Concurrency > 0 {
		dl.Concurrency = d.Concurrency
	}
	if err := dl.Init(); err != nil {
		return fmt.Errorf("init download: %w", err)
	}
	if err := dl.Start(); err != nil {
		return fmt.Errorf("download: %w", err)
	}
	return nil
}

// copyToFile переписывает поток в dest целиком.
func copyToFile(dest string, src io.Reader) (int64, error) {
	f, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, src)
	closeErr := f.Close()
	if err != nil {
		return n, err
	}
	return n, closeErr
}
