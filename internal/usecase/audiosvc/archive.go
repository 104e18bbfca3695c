package audiosvc

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"

	"github.com/sir_venger/media_lite/internal/models"
	"github.com/sir_venger/media_lite/internal/scratch"
)

const stemsArchiveName = "stems.zip"

// Archive упаковывает треки в zip внутри рабочей директории и возвращает путь архива.
func (s *Audio) Archive(ws *scratch.Workspace, stems []models.Stem) (string, error) {
	path := ws.Path(stemsArchiveName)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if err := WriteStems(f, stems); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// WriteStems пишет zip, в корне которого лежат файлы треков под их базовыми именами.
func WriteStems(w io.Writer, stems []models.Stem) error {
	zw := zip.NewWriter(w)
	for _, st := range stems {
		if err := addFile(zw, st.Path); err != nil {
			_ = zw.Close()
			return fmt.Errorf("add %s: %w", st.Name, err)
		}
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = filepath.Base(path)
	hdr.Method = zip.Deflate

	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}
