package mediahttp

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/sir_venger/media_lite/internal/models"
	"github.com/sir_venger/media_lite/internal/scratch"
)

// multipartMemory: сколько держать в памяти до сброса частей формы во временные файлы.
const multipartMemory = 32 << 20

var safeExt = regexp.MustCompile(`^\.[A-Za-z0-9]{1,10}$`)

// parseForm разбирает multipart или urlencoded тело с ограничением размера.
// Испорченная форма не считается ошибкой: обработчик увидит пустые поля и ответит 400.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) error {
	if limit := s.Cfg.Server.MaxUploadBytes; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}

	err := r.ParseMultipartForm(multipartMemory)
	switch {
	case err == nil, errors.Is(err, http.ErrNotMultipart):
		return nil
	case isTooLarge(err):
		return models.ErrTooLarge
	default:
		log.WithError(err).Debug("malformed form")
		return nil
	}
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

// formValue читает поле формы без обрезки пробелов внутри.
func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

// savedUpload сохраняет файл поля field в рабочую директорию под именем <ws.ID><ext>.
// ok=false, если поле отсутствует или браузер прислал пустое имя файла.
func savedUpload(r *http.Request, ws *scratch.Workspace, field string) (up models.Upload, ok bool, err error) {
	file, hdr, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return models.Upload{}, false, nil
		}
		return models.Upload{}, false, fmt.Errorf("read %s: %w", field, err)
	}
	defer file.Close()

	if hdr.Filename == "" {
		return models.Upload{}, false, nil
	}

	ext := filepath.Ext(hdr.Filename)
	if !safeExt.MatchString(ext) {
		ext = ""
	}
	path, n, err := ws.Save(ws.ID+strings.ToLower(ext), file)
	if err != nil {
		return models.Upload{}, false, err
	}

	return models.Upload{
		Field:       field,
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Path:        path,
		Size:        n,
	}, true, nil
}

// readUpload читает файл поля целиком в память; ok=false, как у savedUpload.
func readUpload(r *http.Request, field string) ([]byte, bool, error) {
	file, hdr, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", field, err)
	}
	defer file.Close()

	if hdr.Filename == "" {
		return nil, false, nil
	}
	body, err := io.ReadAll(file)
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

// baseName возвращает имя загруженного файла без расширения.
func baseName(filename, fallback string) string {
	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." || name == "/" {
		return fallback
	}
	return name
}
