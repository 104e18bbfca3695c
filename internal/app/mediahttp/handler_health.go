package mediahttp

import (
	"encoding/json"
	"net/http"

	"github.com/sir_venger/media_lite/internal/toolexec"
)

// healthStats: payload ответа /health.
type healthStats struct {
	OK           bool            `json:"ok"`
	ScratchBytes int64           `json:"scratch_bytes"`
	Tools        map[string]bool `json:"tools"`
}

// health сообщает объём рабочих директорий и наличие внешних бинарников.
func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	used, err := s.Scratch.Usage()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	tools := map[string]bool{
		"ffmpeg": toolexec.Available(s.Cfg.Tools.FFmpeg),
		"rembg":  toolexec.Available(s.Cfg.Tools.Rembg),
		"demucs": toolexec.Available(s.Cfg.Tools.Demucs),
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(healthStats{
		OK:           true,
		ScratchBytes: used,
		Tools:        tools,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
