package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyPathIsNop(t *testing.T) {
	log, err := New("")
	require.NoError(t, err)
	log.Info("dropped")
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "reward.log")

	log, err := New(path)
	require.NoError(t, err)
	log.Info("draw completed")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"draw completed"`)
	assert.Contains(t, string(data), `"logger":"reward"`)
}
