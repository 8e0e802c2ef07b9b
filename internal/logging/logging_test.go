package logging

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, log.ErrorLevel, ParseLevel(" ERROR "))
	assert.Equal(t, log.WarnLevel, ParseLevel(""))
	assert.Equal(t, log.WarnLevel, ParseLevel("chatty"))
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info("hidden")
	logger.Warn("shown", "kind", "NetworkError")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "NetworkError")
	assert.Contains(t, out, "tokenctl")
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nothing happens")
	assert.Equal(t, log.FatalLevel, logger.GetLevel())
}

func TestOpenFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	f, err := OpenFile(filepath.Join(dir, "dashboard.log"))
	require.NoError(t, err)
	defer f.Close()

	logger := New(f, "debug")
	logger.Debug("written")
	assert.FileExists(t, filepath.Join(dir, "dashboard.log"))
}
