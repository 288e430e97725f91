// Package config loads optional .env-based settings for the varvm CLI,
// the same godotenv convention task-manager/googledrive/bitbucket-api
// use for their database and API credentials.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the CLI's environment-tunable defaults.
type Config struct {
	// StdlibDir, if non-empty, is consulted for on-disk stdlib files
	// before falling back to the embedded copies in internal/stdlib.
	StdlibDir string

	// Debug defaults run/asm-run into single-step debugger mode.
	Debug bool
}

// Load reads a .env file from the current directory if one exists (a
// missing file is not an error, matching godotenv.Load's own callers in
// the pack) and returns the resulting Config, reporting whether a .env
// file was actually found and loaded.
func Load() (Config, bool) {
	loaded := true
	if err := godotenv.Load(); err != nil {
		loaded = false
	}

	return Config{
		StdlibDir: getEnv("VARVM_STDLIB_DIR", ""),
		Debug:     getEnv("VARVM_DEBUG", "") == "1",
	}, loaded
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// String renders the config as one line for diagnostic output.
func (c Config) String() string {
	return fmt.Sprintf("StdlibDir=%q Debug=%t", c.StdlibDir, c.Debug)
}
