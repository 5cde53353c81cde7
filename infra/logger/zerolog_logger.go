package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config selects the process-wide log level and output format. It is
// part of the application configuration and installed once at startup
// via Apply.
type Config struct {
	// Level is a zerolog level name: trace, debug, info, warn or error.
	Level string `json:"level"`
	// Format is "json" or "console".
	Format string `json:"format"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "json"
	}
}

// Validate checks the level and format names.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("logging: unknown level %q", c.Level)
	}
	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("logging: unknown format %q", c.Format)
	}
	return nil
}

// Apply installs the configuration for loggers created afterwards.
// Loggers built before Apply keep the defaults (info level, JSON).
func (c Config) Apply() error {
	if err := c.Validate(); err != nil {
		return err
	}
	lvl, _ := zerolog.ParseLevel(c.Level)
	mu.Lock()
	level = lvl
	console = c.Format == "console"
	mu.Unlock()
	return nil
}

var (
	mu      sync.RWMutex
	level   = zerolog.InfoLevel
	console bool
	out     io.Writer = os.Stdout
)

// SetOutput redirects loggers created afterwards, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

// ZerologLogger implements Logger on a zerolog.Logger tagged with the
// owning component.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger builds a component logger honoring the applied
// Config.
func NewZerologLogger(component string) Logger {
	mu.RLock()
	lvl, cons, w := level, console, out
	mu.RUnlock()
	if cons {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	z := zerolog.New(w).Level(lvl).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
