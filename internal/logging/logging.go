// Package logging builds the service logger.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/serroba/pdfcraft/internal/config"
	"github.com/sirupsen/logrus"
)

// New creates a logger writing to out with the configured level and format.
func New(cfg config.LoggingConfig, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	if err := Apply(logger, cfg); err != nil {
		return nil, err
	}

	return logger, nil
}

// Apply changes the level and format of a running logger.
func Apply(logger *logrus.Logger, cfg config.LoggingConfig) error {
	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("%w: log format %q", config.ErrInvalidConfig, cfg.Format)
	}

	logger.SetLevel(level)

	return nil
}
