package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  admin_key: secret\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Server.AdminKey)
	assert.Equal(t, "sqlite", cfg.Database.Mode)
	assert.Equal(t, time.Hour, cfg.Database.MySQLMaxLife)
	assert.Equal(t, 60, cfg.Interpreter.FrameRate)
	assert.Equal(t, 100000, cfg.Interpreter.MaxCommandsPerTick)
	assert.Equal(t, 5*time.Second, cfg.Interpreter.FlushInterval)
	assert.Equal(t, "goja", cfg.Script.Engine)
	assert.Equal(t, 5*time.Second, cfg.Script.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Cache.LocalGCInterval)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
database:
  mode: mysql
  mysql_dsn: "user:pass@tcp(localhost:3306)/rmmv"
interpreter:
  frame_rate: 30
  max_commands_per_tick: 500
script:
  engine: expr
  timeout: 250ms
security:
  admin_ips: ["127.0.0.1", "10.0.0.2"]
log:
  file: ./logs/interp.log
`))
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Mode)
	assert.Equal(t, "user:pass@tcp(localhost:3306)/rmmv", cfg.Database.MySQLDSN)
	assert.Equal(t, 30, cfg.Interpreter.FrameRate)
	assert.Equal(t, 500, cfg.Interpreter.MaxCommandsPerTick)
	assert.Equal(t, "expr", cfg.Script.Engine)
	assert.Equal(t, 250*time.Millisecond, cfg.Script.Timeout)
	assert.Equal(t, []string{"127.0.0.1", "10.0.0.2"}, cfg.Security.AdminIPs)
	assert.Equal(t, "./logs/interp.log", cfg.Log.File)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
