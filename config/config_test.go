package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebpl/ebplc/config"
	"github.com/ebpl/ebplc/eval"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	assert.Equal(t, []string{"python", "python3"}, cfg.Interpreters)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, eval.DefaultMaxSteps, cfg.MaxSteps)
	assert.False(t, cfg.Verify)
	assert.Equal(t, ".ebpl_history", filepath.Base(cfg.HistoryFile))
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `interpreters: [python3.12]
timeout: 3s
verify: true
max_steps: 500
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"python3.12"}, cfg.Interpreters)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.True(t, cfg.Verify)
	assert.Equal(t, 500, cfg.MaxSteps)
	assert.Equal(t, config.Default().HistoryFile, cfg.HistoryFile)
}

func TestInvalid(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		data string
		key  string
	}{
		{"interpreters: []\n", "interpreters"},
		{"timeout: 0s\n", "timeout"},
		{"max_steps: -1\n", "max_steps"},
	}

	for _, tc := range testcases {
		cfg := config.Default()
		err := config.Parse([]byte(tc.data), &cfg)
		var invalid config.InvalidConfigError
		if assert.True(t, errors.As(err, &invalid), "%q returned %v", tc.data, err) {
			assert.Equal(t, tc.key, invalid.Key)
		}
	}

	cfg := config.Default()
	assert.Error(t, config.Parse([]byte("timeout: [\n"), &cfg))
}
