package mediahttp

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	log "github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTitles = map[string]string{
	"home":            "Media tools",
	"convert":         "Image converter",
	"rmbg":            "Background remover",
	"youtube":         "YouTube downloader",
	"audio_converter": "Audio converter",
	"demucs":          "Stem separator",
}

type pages struct {
	byName map[string]*template.Template
}

// pageData: то, что видит шаблон. Message пустой, если показывать нечего.
type pageData struct {
	Title   string
	Message string
	Error   bool
}

func loadPages() (*pages, error) {
	p := &pages{byName: make(map[string]*template.Template, len(pageTitles))}
	for name := range pageTitles {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s page: %w", name, err)
		}
		p.byName[name] = t
	}
	return p, nil
}

// render рендерит в буфер, чтобы ошибка шаблона не оставила полуотправленный ответ.
func (p *pages) render(w http.ResponseWriter, status int, name string, data pageData) {
	t, ok := p.byName[name]
	if !ok {
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}
	if data.Title == "" {
		data.Title = pageTitles[name]
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.WithError(err).WithField("page", name).Error("render page")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.pages.render(w, http.StatusOK, name, pageData{})
	}
}
