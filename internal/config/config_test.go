package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearEnv() {
	os.Unsetenv("RSHEET_ADDR")
	os.Unsetenv("RSHEET_LOG_LEVEL")
	os.Unsetenv("RSHEET_MAX_CONNS")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv()

	cfg := Load()
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0, cfg.MaxConns)
}

func TestLoadCustomValues(t *testing.T) {
	clearEnv()
	os.Setenv("RSHEET_ADDR", ":9090")
	os.Setenv("RSHEET_LOG_LEVEL", "debug")
	os.Setenv("RSHEET_MAX_CONNS", "64")
	defer clearEnv()

	cfg := Load()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 64, cfg.MaxConns)
}

func TestLoadInvalidMaxConnsFallsBackToDefault(t *testing.T) {
	clearEnv()
	os.Setenv("RSHEET_MAX_CONNS", "not_a_number")
	defer clearEnv()

	cfg := Load()
	assert.Equal(t, 0, cfg.MaxConns)
}
