package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "verba.log")

	l := New(Options{File: path})
	l.Info("проверка", zap.String("component", "test"))
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"проверка"`)
	assert.Contains(t, string(data), `"component":"test"`)
}

func TestInitReplacesGlobals(t *testing.T) {
	flush := Init(Options{})
	defer flush()

	assert.True(t, zap.L().Core().Enabled(zap.InfoLevel))
	assert.False(t, zap.L().Core().Enabled(zap.DebugLevel))
}
