package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sir_venger/media_lite/internal/app/mediahttp"
	"github.com/sir_venger/media_lite/internal/config"
	"github.com/sir_venger/media_lite/internal/logging"
	"github.com/sir_venger/media_lite/internal/toolexec"
)

// main поднимает HTTP-сервис, фоновую уборку рабочих директорий и graceful shutdown по сигналу.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal(err)
	}

	handler, srv, err := mediahttp.NewServer(cfg)
	if err != nil {
		log.Fatal(err)
	}

	for name, bin := range map[string]string{"ffmpeg": cfg.Tools.FFmpeg, "rembg": cfg.Tools.Rembg, "demucs": cfg.Tools.Demucs} {
		if !toolexec.Available(bin) {
			log.WithFields(log.Fields{"tool": name, "path": bin}).Warn("external tool not found, its routes will fail")
		}
	}

	// Подметаем рабочие директории, брошенные упавшими запросами.
	stopGC := srv.Scratch.StartGC(cfg.Scratch.TTL, cfg.Scratch.GCInterval, srv.Metrics.AddSwept)
	defer stopGC()

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"addr":     cfg.ListenAddr,
		"scratch":  srv.Scratch.Dir(),
		"gc_ttl":   cfg.Scratch.TTL.String(),
		"gc_every": cfg.Scratch.GCInterval.String(),
	}).Info("media listening")

	if err := serve(ctx, server); err != nil {
		log.Fatal(err)
	}
	log.Info("media stopped")
}

// serve держит сервер до отмены ctx, затем даёт активным запросам 15 секунд на завершение.
func serve(ctx context.Context, server *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
