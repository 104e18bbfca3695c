package mediahttp

import (
	"bytes"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/sir_venger/media_lite/internal/models"
	"github.com/sir_venger/media_lite/internal/usecase/imagesvc"
	"github.com/sir_venger/media_lite/pkg/httperrors"
)

// convertImage перекодирует image_file в формат из поля format целиком в памяти.
func (s *Server) convertImage(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		httperrors.Write(w, err)
		return
	}

	body, ok, err := readUpload(r, "image_file")
	if err != nil {
		writeFailure(w, err, "An error occurred: %v")
		return
	}
	if !ok {
		httperrors.Write(w, models.ErrNoImage)
		return
	}
	format := formValue(r, "format")
	if format == "" {
		httperrors.Write(w, models.ErrNoFormat)
		return
	}

	art, err := s.Images.Convert(r.Context(), bytes.NewReader(body), format)
	if err != nil {
		log.WithError(err).WithField("format", format).Warn("image conversion failed")
		writeFailure(w, err, "An error occurred: %v")
		return
	}
	if err := writeArtifact(w, r, art); err != nil {
		writeFailure(w, err, "An error occurred: %v")
	}
}

// removeBackground принимает файл из поля file, а если его нет, data URI из base64_image.
func (s *Server) removeBackground(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		httperrors.Write(w, err)
		return
	}

	data, ok, err := readUpload(r, "file")
	if err != nil {
		writeFailure(w, err, "An error occurred: %v")
		return
	}
	if !ok {
		encoded := r.FormValue("base64_image")
		if encoded == "" {
			httperrors.Write(w, models.ErrNoInput)
			return
		}
		if data, err = imagesvc.DecodeDataURI(encoded); err != nil {
			httperrors.Write(w, err)
			return
		}
	}

	art, err := s.Images.RemoveBackground(r.Context(), data)
	if err != nil {
		if !errors.Is(err, models.ErrNoInput) {
			log.WithError(err).Warn("background removal failed")
		}
		writeFailure(w, err, "An error occurred: %v")
		return
	}
	if err := writeArtifact(w, r, art); err != nil {
		writeFailure(w, err, "An error occurred: %v")
	}
}
