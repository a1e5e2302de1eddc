package logx

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Debug        bool   `split_words:"true" default:"false"`
	PrettyFormat bool   `split_words:"true" default:"false"`
	Level        string `split_words:"true"`
}

var DefaultConfig = &Config{}

func safe(opts ...Config) *Config {
	if len(opts) == 0 {
		return DefaultConfig
	}
	return &opts[0]
}

// Init replaces the global logger. Level wins over Debug when both are set.
func Init(opts ...Config) {
	conf := safe(opts...)
	log.Logger = New(os.Stdout, *conf)
}

func New(w io.Writer, conf Config) zerolog.Logger {
	if conf.PrettyFormat {
		w = zerolog.ConsoleWriter{Out: w}
	}

	level := zerolog.InfoLevel
	if conf.Debug {
		level = zerolog.DebugLevel
	}
	if raw := strings.TrimSpace(conf.Level); raw != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(raw)); err == nil {
			level = parsed
		}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Caller().Logger()
}

// ForSession returns the global logger tagged with a session id.
func ForSession(sessionID string) zerolog.Logger {
	return log.Logger.With().Str("session_id", sessionID).Logger()
}
