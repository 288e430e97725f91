package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaultsWhenEnvUnset(t *testing.T) {
	os.Unsetenv("VARVM_STDLIB_DIR")
	os.Unsetenv("VARVM_DEBUG")

	cfg, _ := Load()
	assert.Equal(t, "", cfg.StdlibDir)
	assert.False(t, cfg.Debug)
}

func TestLoadReadsEnvVars(t *testing.T) {
	t.Setenv("VARVM_STDLIB_DIR", "/opt/varvm/stdlib")
	t.Setenv("VARVM_DEBUG", "1")

	cfg, _ := Load()
	assert.Equal(t, "/opt/varvm/stdlib", cfg.StdlibDir)
	assert.True(t, cfg.Debug)
}

func TestStringRendersFields(t *testing.T) {
	cfg := Config{StdlibDir: "x", Debug: true}
	assert.Contains(t, cfg.String(), "StdlibDir=\"x\"")
	assert.Contains(t, cfg.String(), "Debug=true")
}
