package server

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/natefinch/lumberjack"
)

type LogConfig struct {
	Logfile string `toml:"logfile"`
	MaxSize int    `toml:"max_log_size"` // megabytes
	MaxAge  int    `toml:"max_log_age"`  // days
	Level   string `toml:"level"`
}

// NewLogger builds a text logger writing to a rotating log file, or to
// stdout when no file is configured. The returned close func is never nil.
func (c *LogConfig) NewLogger(stdout io.Writer) (*slog.Logger, func() error, error) {
	var level slog.Level
	if c.Level != "" {
		if err := level.UnmarshalText([]byte(c.Level)); err != nil {
			return nil, nil, fmt.Errorf("logging.level: %w", err)
		}
	}

	out, closeFn := stdout, func() error { return nil }
	if c.Logfile != "" {
		l := &lumberjack.Logger{
			Filename: c.Logfile,
			MaxSize:  c.MaxSize,
			MaxAge:   c.MaxAge,
		}
		out, closeFn = l, l.Close
	}

	h := slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	return slog.New(h), closeFn, nil
}
