package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dirmerge/internal/conflict"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default.Workers, cfg.Workers)
	assert.Equal(t, Default.Filter.IgnoreList, cfg.Filter.IgnoreList)
	assert.Equal(t, string(conflict.StrategyManual), cfg.Resolve.Strategy)
	assert.Equal(t, Default.Debounce, cfg.Debounce)
	assert.Equal(t, "dirmerge.db", cfg.DBPath)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
workers: 3
filter:
  ignore_list: ["*.bak"]
  ignore_regex: "^vendor/"
  ignore_binary: true
diff:
  trim_whitespace: true
  ignore_case: true
resolve:
  strategy: remote
merge:
  output: /tmp/out
  backup: true
db_path: ""
debounce: 2s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, []string{"*.bak"}, cfg.Filter.IgnoreList)
	assert.True(t, cfg.Filter.IgnoreBinary)
	assert.True(t, cfg.Diff.TrimWhitespace)
	assert.False(t, cfg.Diff.CollapseWhitespace)
	assert.True(t, cfg.Diff.IgnoreCase)
	assert.Equal(t, "REMOTE", cfg.Resolve.Strategy)
	assert.Equal(t, "/tmp/out", cfg.Merge.Output)
	assert.True(t, cfg.Merge.Backup)
	assert.Empty(t, cfg.DBPath)
	assert.Equal(t, 2*time.Second, cfg.Debounce)

	s := cfg.Settings()
	assert.Equal(t, conflict.StrategyRemote, s.Strategy)
	assert.Equal(t, "^vendor/", s.Filter.IgnoreRegex)
	assert.True(t, s.IgnoreBinary)
}

func TestLoad_Env(t *testing.T) {
	path := writeConfig(t, "workers: 2\n")
	t.Setenv("DIRMERGE_WORKERS", "7")
	t.Setenv("DIRMERGE_RESOLVE_STRATEGY", "base")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)
	assert.Equal(t, "BASE", cfg.Resolve.Strategy)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"strategy", "resolve:\n  strategy: newer_wins\n"},
		{"regex", "filter:\n  ignore_regex: \"(\"\n"},
		{"pattern", "filter:\n  ignore_list: [\"[\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorContains(t, err, tt.name)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
