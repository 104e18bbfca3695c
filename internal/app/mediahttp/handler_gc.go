package mediahttp

import (
	"net/http"

	log "github.com/sirupsen/logrus"
)

// gcOnce вручную подметает рабочие директории старше scratch.ttl.
func (s *Server) gcOnce(w http.ResponseWriter, _ *http.Request) {
	n, err := s.Scratch.Sweep(s.Cfg.Scratch.TTL)
	if err != nil {
		log.WithError(err).Warn("manual scratch sweep failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.Metrics.AddSwept(n)
	w.WriteHeader(http.StatusNoContent)
}
