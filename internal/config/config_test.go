package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(defaults())
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.True(t, cfg.Server.LiveValidation)
	assert.Equal(t, "contactform_csrf", cfg.Server.CSRFCookie)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, SinkLog, cfg.Form.Sink)
	assert.Empty(t, cfg.Form.Definition)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr())
	assert.Equal(t, SinkLog, cfg.Form.Sink)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{name: "port too high", key: "server.port", value: 70000},
		{name: "port zero", key: "server.port", value: 0},
		{name: "host with slash", key: "server.host", value: "local/host"},
		{name: "negative timeout", key: "server.shutdown_timeout", value: -time.Second},
		{name: "empty csrf cookie", key: "server.csrf_cookie", value: " "},
		{name: "unknown level", key: "log.level", value: "loud"},
		{name: "unknown format", key: "log.format", value: "xml"},
		{name: "unknown sink", key: "form.sink", value: "email"},
		{name: "watch without dir", key: "form.watch_templates", value: true},
		{name: "variant without manifest", key: "theme.variant", value: "dark"},
		{name: "port not a number", key: "server.port", value: "http"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := defaults()
			v.Set(tt.key, tt.value)

			cfg, err := Load(v)
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoad_NormalisesCase(t *testing.T) {
	v := defaults()
	v.Set("log.level", " DEBUG ")
	v.Set("form.sink", "Echo")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, SinkEcho, cfg.Form.Sink)
}

func TestNew_ReadsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contactform.yml")
	content := []byte(`
server:
  port: 9090
  allowed_origins:
    - "example.com"
form:
  sink: echo
  templates_dir: ./templates
  watch_templates: true
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	t.Setenv("CONTACTFORM_SERVER_HOST", "0.0.0.0")
	t.Setenv("CONTACTFORM_LOG_FORMAT", "console")

	v, err := New(path)
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, []string{"example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, SinkEcho, cfg.Form.Sink)
	assert.True(t, cfg.Form.WatchTemplates)
}

func TestNew_MissingExplicitFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestNew_NoDefaultFileIsFine(t *testing.T) {
	t.Chdir(t.TempDir())

	v, err := New("")
	require.NoError(t, err)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_NilViper(t *testing.T) {
	_, err := Load(nil)
	assert.Error(t, err)
}
