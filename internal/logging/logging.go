// Package logging builds the diagnostic loggers used across tokenctl.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "warn"

var (
	cMuted  = lipgloss.Color("#6B7280")
	cText   = lipgloss.Color("#E5E7EB")
	cAccent = lipgloss.Color("#7C3AED")
	cInfo   = lipgloss.Color("#06B6D4")
	cWarn   = lipgloss.Color("#F59E0B")
	cErr    = lipgloss.Color("#EF4444")
)

// New returns a logger writing to w at level ("debug", "info", "warn",
// "error"). Unknown levels fall back to DefaultLevel.
func New(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "tokenctl",
		Level:           ParseLevel(level),
	})
	logger.SetStyles(styles())
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// ParseLevel maps a level name to a log.Level.
func ParseLevel(level string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl, _ = log.ParseLevel(DefaultLevel)
	}
	return lvl
}

// OpenFile opens path for appending, creating its directory if needed.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

func styles() *log.Styles {
	s := log.DefaultStyles()
	s.Timestamp = lipgloss.NewStyle().Foreground(cMuted)
	s.Prefix = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	s.Message = lipgloss.NewStyle().Foreground(cText)
	s.Key = lipgloss.NewStyle().Foreground(cAccent)
	s.Separator = lipgloss.NewStyle().Faint(true)
	s.Levels = map[log.Level]lipgloss.Style{
		log.DebugLevel: lipgloss.NewStyle().Foreground(cMuted).SetString("DEBUG"),
		log.InfoLevel:  lipgloss.NewStyle().Foreground(cInfo).SetString("INFO"),
		log.WarnLevel:  lipgloss.NewStyle().Foreground(cWarn).SetString("WARN"),
		log.ErrorLevel: lipgloss.NewStyle().Foreground(cErr).SetString("ERROR"),
		log.FatalLevel: lipgloss.NewStyle().Foreground(cErr).Bold(true).SetString("FATAL"),
	}
	return s
}
