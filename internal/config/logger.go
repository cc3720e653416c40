package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ErrLogFormat is returned for log formats other than text and json.
var ErrLogFormat = errors.New("unknown log format")

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}

func (l Log) format() (string, error) {
	f := strings.ToLower(l.Format)
	switch f {
	case "", "text":
		return "text", nil
	case "json":
		return "json", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrLogFormat, l.Format)
	}
}

// NewLogger builds a slog.Logger writing to w at the configured level and
// format.
func (l Log) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	format, err := l.format()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
