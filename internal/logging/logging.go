// Package logging настраивает стандартный логгер logrus по конфигурации.
package logging

import (
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Setup выставляет уровень и формат (text или json) стандартного логгера.
func Setup(out io.Writer, level, format string) error {
	lvl, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	var f log.Formatter
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		f = &log.TextFormatter{FullTimestamp: true}
	case "json":
		f = &log.JSONFormatter{}
	default:
		return fmt.Errorf("log format %q: want text or json", format)
	}

	if out != nil {
		log.SetOutput(out)
	}
	log.SetLevel(lvl)
	log.SetFormatter(f)
	return nil
}
