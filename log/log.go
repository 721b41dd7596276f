package log

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/matijaslevang/spotminify/config"
	"github.com/matijaslevang/spotminify/constant"
)

func FromConfig(conf config.Log) zerolog.Logger {
	level, err := zerolog.ParseLevel(conf.Level)
	if nil != err {
		panic("invalid logging level: " + conf.Level)
	}

	switch strings.ToLower(conf.Format) {
	case "json":
		return newLogger(os.Stderr, level)
	case "pretty":
		return newLogger(consoleWriter(os.Stderr), level)
	default:
		panic("invalid logging format: " + conf.Format)
	}
}

// NewDefault is used before the config file is loaded. Output is pretty
// printed only when stderr is a terminal.
func NewDefault() zerolog.Logger {
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return newLogger(consoleWriter(os.Stderr), zerolog.InfoLevel)
	}

	return newLogger(os.Stderr, zerolog.InfoLevel)
}

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{ //nolint:exhaustruct
		Out:          out,
		TimeFormat:   time.RFC3339,
		TimeLocation: time.UTC,
	}
}

func newLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.
		New(w).
		Hook(&stackHook{}).
		With().
		Timestamp().
		Str("version", constant.Version).
		Str("compile_time", constant.CompileTime).
		Logger().
		Level(level)
}
