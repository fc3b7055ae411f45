package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, FormatInline, cfg.SourceMap.Format, "default sourcemap format")
	assert.True(t, cfg.SourceMap.Enabled, "sourcemaps enabled by default")
	assert.True(t, cfg.Build.StrictUndefinedParams, "strict_undefined_params defaults true")
}

func TestValidateRejectsBadFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SourceMap.Format = "bogus"
	assert.Error(t, cfg.Validate(), "expected an error for an invalid sourcemap format")
}

func TestLoadReadsProjectFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(wd)

	require.NoError(t, os.Chdir(dir))
	content := "[sourcemaps]\nformat = \"separate\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tanto.toml"), []byte(content), 0o644))

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, FormatSeparate, cfg.SourceMap.Format, "project tanto.toml should override format")
}

func TestLoadAppliesOverrides(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(wd)
	require.NoError(t, os.Chdir(dir))

	cfg, err := Load(&Config{SourceMap: SourceMapConfig{Format: FormatNone}})
	require.NoError(t, err)
	assert.Equal(t, FormatNone, cfg.SourceMap.Format, "override should win")
}
