package mediahttp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kkdai/youtube/v2"

	"github.com/sir_venger/media_lite/internal/config"
	"github.com/sir_venger/media_lite/internal/metrics"
	"github.com/sir_venger/media_lite/internal/scratch"
	"github.com/sir_venger/media_lite/internal/usecase/audiosvc"
	"github.com/sir_venger/media_lite/internal/usecase/imagesvc"
	"github.com/sir_venger/media_lite/internal/usecase/ytsvc"
)

// Deps: сервисы, которыми пользуются обработчики.
type Deps struct {
	Images  imagesvc.Service
	Audio   audiosvc.Service
	YouTube ytsvc.Service
	Scratch *scratch.Root
	Metrics *metrics.Metrics
}

type Server struct {
	Deps
	Cfg *config.Config

	pages   *pages
	limiter *ipLimiter
}

// NewServer конструктор: собирает боевые зависимости из конфигурации.
func NewServer(cfg *config.Config) (http.Handler, *Server, error) {
	deps, err := buildDeps(cfg)
	if err != nil {
		return nil, nil, err
	}
	return New(cfg, deps)
}

// New собирает роутер поверх готовых зависимостей.
func New(cfg *config.Config, deps Deps) (http.Handler, *Server, error) {
	pg, err := loadPages()
	if err != nil {
		return nil, nil, err
	}

	srv := &Server{
		Deps:  deps,
		Cfg:   cfg,
		pages: pg,
	}
	if cfg.Server.RateLimit > 0 {
		srv.limiter = newIPLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
	}

	return srv.routes(), srv, nil
}

func buildDeps(cfg *config.Config) (Deps, error) {
	root, err := scratch.NewRoot(cfg.Scratch.Dir)
	if err != nil {
		return Deps{}, err
	}
	m := metrics.New()

	return Deps{
		Images: imagesvc.New(imagesvc.Deps{
			Rembg:   cfg.Tools.Rembg,
			Scratch: root,
			Metrics: m,
		}),
		Audio: audiosvc.New(audiosvc.Deps{
			FFmpeg:  cfg.Tools.FFmpeg,
			Demucs:  cfg.Tools.Demucs,
			Model:   cfg.Demucs,
			Metrics: m,
		}),
		YouTube: ytsvc.New(ytsvc.Deps{
			Resolver:   &youtube.Client{},
			Downloader: ytsvc.GotDownloader{Concurrency: uint(cfg.YouTube.Concurrency)},
			Metrics:    m,
		}),
		Scratch: root,
		Metrics: m,
	}, nil
}

// routes регистрирует формы, служебные эндпоинты и общий стек middleware.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if s.Cfg.Server.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.Metrics.Middleware)

	r.Get("/health", s.health)
	r.Post("/admin/gc", s.gcOnce)
	r.Handle("/metrics", s.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.limiter.middleware)
		r.Use(withTimeout(s.Cfg.Server.RequestTimeout))

		r.Get("/", s.page("home"))
		r.Get("/convert", s.page("convert"))
		r.Post("/convert", s.convertImage)
		r.Get("/rmbg", s.page("rmbg"))
		r.Post("/rmbg", s.removeBackground)
		r.Get("/yt2mp4", s.youtubePage)
		r.Post("/yt2mp4", s.youtubeFetch)
		r.Get("/audio_converter", s.page("audio_converter"))
		r.Post("/audio_converter", s.convertAudio)
		r.Get("/demucs", s.page("demucs"))
		r.Post("/demucs", s.separateStems)
	})

	return r
}
