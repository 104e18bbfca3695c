package main

import (
	"flag"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/sir_venger/media_lite/internal/config"
	"github.com/sir_venger/media_lite/internal/logging"
	"github.com/sir_venger/media_lite/internal/scratch"
)

// main один раз подметает рабочие директории старше TTL; удобно для cron при выключенном сервисе.
func main() {
	ttl := flag.Duration("ttl", 0, "override scratch.ttl")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal(err)
	}
	if *ttl > 0 {
		cfg.Scratch.TTL = *ttl
	}
	if cfg.Scratch.TTL <= 0 {
		log.Fatal("scratch.ttl must be positive")
	}

	root, err := scratch.NewRoot(cfg.Scratch.Dir)
	if err != nil {
		log.Fatal(err)
	}

	removed, err := root.Sweep(cfg.Scratch.TTL)
	if err != nil {
		log.Fatal(err)
	}
	log.WithFields(log.Fields{"dir": root.Dir(), "removed": removed}).Info("sweep done")
}
