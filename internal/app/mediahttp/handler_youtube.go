package mediahttp

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/sir_venger/media_lite/internal/models"
	"github.com/sir_venger/media_lite/pkg/httperrors"
)

func (s *Server) youtubePage(w http.ResponseWriter, _ *http.Request) {
	s.pages.render(w, http.StatusOK, "youtube", pageData{})
}

// youtubeFetch скачивает ролик во временную директорию и отдаёт его вложением.
// Ошибки по умолчанию показываются на странице со статусом 200.
func (s *Server) youtubeFetch(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		s.youtubeFailure(w, r, err)
		return
	}
	if _, ok := r.PostForm["video_url"]; !ok {
		s.youtubePage(w, r)
		return
	}

	ws, err := s.Scratch.NewWorkspace()
	if err != nil {
		s.youtubeFailure(w, r, err)
		return
	}
	defer ws.Close()

	art, err := s.YouTube.Fetch(r.Context(), ws, r.PostFormValue("video_url"), r.PostFormValue("action"))
	if err != nil {
		if httperrors.Status(err) != http.StatusBadRequest {
			log.WithError(err).Warn("youtube fetch failed")
		}
		s.youtubeFailure(w, r, err)
		return
	}

	if err := writeArtifact(w, r, art); err != nil {
		s.youtubeFailure(w, r, err)
	}
}

func (s *Server) youtubeFailure(w http.ResponseWriter, r *http.Request, err error) {
	msg := youtubeMessage(err)
	if s.Cfg.YouTube.InlineErrors && !wantsJSON(r) {
		s.pages.render(w, http.StatusOK, "youtube", pageData{Message: msg, Error: true})
		return
	}
	http.Error(w, msg, httperrors.Status(err))
}

// youtubeMessage: ошибки формы показываются как есть, всё остальное как ошибка обработки.
func youtubeMessage(err error) string {
	if httperrors.Status(err) == http.StatusBadRequest || errors.Is(err, models.ErrUpstream) {
		return httperrors.Message(err)
	}
	return fmt.Sprintf("%s: %v", models.ErrUpstream, err)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
