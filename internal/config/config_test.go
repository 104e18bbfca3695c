package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp переносит тест в пустой каталог, чтобы не подхватить чужой .env.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5100", cfg.ListenAddr)
	assert.Equal(t, "htdemucs", cfg.Demucs.Model)
	assert.InDelta(t, 0.25, cfg.Demucs.Overlap, 1e-9)
	assert.Equal(t, 1, cfg.Demucs.Shifts)
	assert.True(t, cfg.YouTube.InlineErrors)
	require.NoError(t, cfg.Validate())
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "config.yaml")
	yml := `
listen_addr: ":9000"
server:
  request_timeout: 2m
  max_upload_bytes: 1024
  trust_proxy: true
scratch:
  dir: /var/tmp/media
  ttl: 1h
tools:
  ffmpeg: /opt/ffmpeg
demucs:
  model: mdx_extra
  shifts: 2
youtube:
  inline_errors: false
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("LISTEN_ADDR", ":7000")
	t.Setenv("SCRATCH_TTL", "90m")
	t.Setenv("DEMUCS_MAX_CONCURRENT", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.ListenAddr)
	assert.Equal(t, 2*time.Minute, cfg.Server.RequestTimeout)
	assert.EqualValues(t, 1024, cfg.Server.MaxUploadBytes)
	assert.Equal(t, "/var/tmp/media", cfg.Scratch.Dir)
	assert.Equal(t, 90*time.Minute, cfg.Scratch.TTL)
	assert.Equal(t, "/opt/ffmpeg", cfg.Tools.FFmpeg)
	assert.Equal(t, "rembg", cfg.Tools.Rembg)
	assert.Equal(t, "mdx_extra", cfg.Demucs.Model)
	assert.Equal(t, 2, cfg.Demucs.Shifts)
	assert.Equal(t, 3, cfg.Demucs.MaxConcurrent)
	assert.False(t, cfg.YouTube.InlineErrors)
	assert.True(t, cfg.Server.TrustProxy)
}

func TestLoad_TrustProxyEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Server.TrustProxy)

	t.Setenv("TRUST_PROXY", "true")
	cfg, err = Load()
	require.NoError(t, err)
	assert.True(t, cfg.Server.TrustProxy)

	t.Setenv("TRUST_PROXY", "maybe")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRUST_PROXY")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yaml"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REMBG_BIN=/usr/local/bin/rembg\n"), 0o644))
	t.Cleanup(func() { _ = os.Unsetenv("REMBG_BIN") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/rembg", cfg.Tools.Rembg)
}

func TestLoad_InvalidEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yaml"))
	t.Setenv("REQUEST_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_TIMEOUT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"empty listen addr", func(c *Config) { c.ListenAddr = " " }, "listen_addr"},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadBytes = 0 }, "max_upload_bytes"},
		{"overlap too big", func(c *Config) { c.Demucs.Overlap = 1 }, "demucs.overlap"},
		{"no shifts", func(c *Config) { c.Demucs.Shifts = 0 }, "demucs.shifts"},
		{"no slots", func(c *Config) { c.Demucs.MaxConcurrent = 0 }, "max_concurrent"},
		{"rate without burst", func(c *Config) { c.Server.RateLimit = 1; c.Server.RateBurst = 0 }, "rate_burst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
