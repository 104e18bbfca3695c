package mediahttp

import (
	"bytes"
	"fmt"
	"mime"
	"net/http"
	"os"
	"time"

	"github.com/sir_venger/media_lite/internal/models"
	"github.com/sir_venger/media_lite/pkg/httperrors"
)

// writeArtifact отдаёт результат как вложение: из памяти, если есть Body, иначе с диска.
func writeArtifact(w http.ResponseWriter, r *http.Request, art models.Artifact) error {
	if art.Body != nil || art.Path == "" {
		setAttachment(w, art)
		http.ServeContent(w, r, art.Name, time.Time{}, bytes.NewReader(art.Body))
		return nil
	}

	f, err := os.Open(art.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	setAttachment(w, art)
	http.ServeContent(w, r, art.Name, info.ModTime(), f)
	return nil
}

func setAttachment(w http.ResponseWriter, art models.Artifact) {
	w.Header().Set("Content-Type", art.MimeType)
	w.Header().Set("Content-Disposition", attachment(art.Name))
}

func attachment(name string) string {
	v := mime.FormatMediaType("attachment", map[string]string{"filename": name})
	if v == "" {
		return `attachment; filename="download"`
	}
	return v
}

// writeFailure: ошибки ввода и перегрузки уходят своим текстом,
// остальные с префиксом маршрута, как их видит пользователь формы.
func writeFailure(w http.ResponseWriter, err error, format string) {
	switch status := httperrors.Status(err); status {
	case http.StatusBadRequest, http.StatusServiceUnavailable:
		httperrors.Write(w, err)
	default:
		http.Error(w, fmt.Sprintf(format, err), status)
	}
}
