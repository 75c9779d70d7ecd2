package logging

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Level  string
	Format string
}

func DefaultConfig() Config {
	return Config{Level: "info", Format: "text"}
}

// Configure sets up the standard logrus logger. Format is "text" or "json".
func Configure(cfg Config) error {
	return apply(log.StandardLogger(), cfg, os.Stderr)
}

func apply(logger *log.Logger, cfg Config, out io.Writer) error {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return errors.WithStack(err)
	}

	switch cfg.Format {
	case "", "text":
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case "json":
		logger.SetFormatter(&log.JSONFormatter{})
	default:
		return errors.Errorf("unknown log format %q", cfg.Format)
	}
	logger.SetLevel(lvl)
	logger.SetOutput(out)
	return nil
}
