package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yolodolo42/sqldesk/internal/testutil"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	testutil.UnsetEnv(t, "SQLDESK_SERVER")
	testutil.UnsetEnv(t, "SQLDESK_TIMEOUT")
	testutil.UnsetEnv(t, "SQLDESK_LISTEN")
	testutil.UnsetEnv(t, "SQLDESK_LOG_LEVEL")
	testutil.UnsetEnv(t, "SQLDESK_HISTORY_LIMIT")
	dir := testutil.TempDir(t)

	v := newViper()
	v.Set(KeyDataDir, dir)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, DefaultServer, cfg.Server)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, DefaultHistoryLimit, cfg.HistoryLimit)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, dir, cfg.DataDir)
}

func TestLoad_Environment(t *testing.T) {
	testutil.SetEnv(t, "SQLDESK_SERVER", "https://sql.example.com/")
	testutil.SetEnv(t, "SQLDESK_TIMEOUT", "5s")
	testutil.SetEnv(t, "SQLDESK_TOKEN", "secret")
	testutil.SetEnv(t, "SQLDESK_HISTORY_LIMIT", "3")

	v := newViper()
	v.Set(KeyDataDir, testutil.TempDir(t))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://sql.example.com", cfg.Server)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, 3, cfg.HistoryLimit)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"no scheme", KeyServer, "localhost:8000"},
		{"ftp scheme", KeyServer, "ftp://example.com"},
		{"no host", KeyServer, "http://"},
		{"zero timeout", KeyTimeout, "0s"},
		{"negative timeout", KeyTimeout, "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(KeyDataDir, testutil.TempDir(t))
			v.Set(tt.key, tt.val)

			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}

func TestLoad_NonPositiveHistoryLimitFallsBack(t *testing.T) {
	v := newViper()
	v.Set(KeyDataDir, testutil.TempDir(t))
	v.Set(KeyHistoryLimit, 0)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, DefaultHistoryLimit, cfg.HistoryLimit)
}
