package mediahttp

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/sir_venger/media_lite/internal/models"
	"github.com/sir_venger/media_lite/pkg/httperrors"
)

// convertAudio сохраняет audio_file в рабочую директорию и перекодирует его в format.
func (s *Server) convertAudio(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		httperrors.Write(w, err)
		return
	}

	ws, err := s.Scratch.NewWorkspace()
	if err != nil {
		writeFailure(w, err, "An error occurred: %v")
		return
	}
	defer ws.Close()

	up, ok, err := savedUpload(r, ws, "audio_file")
	if err != nil {
		writeFailure(w, err, "An error occurred: %v")
		return
	}
	if !ok {
		httperrors.Write(w, models.ErrNoAudio)
		return
	}
	format := formValue(r, "format")
	if format == "" {
		httperrors.Write(w, models.ErrNoFormat)
		return
	}

	out, err := s.Audio.Convert(r.Context(), ws, up.Path, format)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"format": format, "upload": up.Filename}).Warn("audio conversion failed")
		writeFailure(w, err, "An error occurred: %v")
		return
	}

	art := models.Artifact{
		Name:     "converted_audio." + format,
		MimeType: "audio/" + format,
		Path:     out,
	}
	if err := writeArtifact(w, r, art); err != nil {
		writeFailure(w, err, "An error occurred: %v")
	}
}

// separateStems приводит загрузку к WAV, делит её на стемы и отдаёт zip.
func (s *Server) separateStems(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		httperrors.Write(w, err)
		return
	}

	ws, err := s.Scratch.NewWorkspace()
	if err != nil {
		writeFailure(w, err, "An error occurred: %v")
		return
	}
	defer ws.Close()

	up, ok, err := savedUpload(r, ws, "audio_file")
	if err != nil {
		writeFailure(w, err, "An error occurred: %v")
		return
	}
	if !ok {
		httperrors.Write(w, models.ErrNoAudio)
		return
	}
	entry := log.WithFields(log.Fields{"upload": up.Filename, "workspace": ws.ID})

	wav, err := s.Audio.EnsureWAV(r.Context(), ws, up.Path)
	if err != nil {
		entry.WithError(err).Warn("wav normalisation failed")
		writeFailure(w, err, "Error converting audio to WAV: %v")
		return
	}

	stems, err := s.Audio.Separate(r.Context(), ws, wav)
	if err != nil {
		entry.WithError(err).Warn("stem separation failed")
		writeFailure(w, err, "An error occurred while processing the audio: %v")
		return
	}

	archive, err := s.Audio.Archive(ws, stems)
	if err != nil {
		entry.WithError(err).Warn("stem archive failed")
		writeFailure(w, err, "An error occurred while creating the zip file: %v")
		return
	}

	art := models.Artifact{
		Name:     baseName(up.Filename, "audio") + "_stems.zip",
		MimeType: "application/zip",
		Path:     archive,
	}
	if err := writeArtifact(w, r, art); err != nil {
		writeFailure(w, err, "An error occurred while creating the zip file: %v")
	}
}
