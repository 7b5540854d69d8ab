package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const (
	envLogLevel  = "FORKPROBE_LOG_LEVEL"
	envLogFormat = "FORKPROBE_LOG_FORMAT"
)

type logConfig struct {
	Level  string
	Format string
}

func logConfigFromEnv() logConfig {
	cfg := logConfig{Level: "info", Format: "auto"}
	if value := os.Getenv(envLogLevel); value != "" {
		cfg.Level = value
	}
	if value := os.Getenv(envLogFormat); value != "" {
		cfg.Format = value
	}
	return cfg
}

// env forwards the logging setup to forked generations.
func (c logConfig) env() []string {
	return []string{envLogLevel + "=" + c.Level, envLogFormat + "=" + c.Format}
}

// newLogger builds the stderr logger. Records use the same keys as the JSON
// log lines the rest of the tooling emits: ts, level, msg.
func newLogger(cfg logConfig, w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(level)

	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	if format == "" || format == "auto" {
		format = "json"
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = "text"
		}
	}
	switch format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "ts",
				logrus.FieldKeyMsg:  "msg",
			},
		})
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format %q (want auto, text or json)", cfg.Format)
	}
	return log, nil
}
