package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads ~/.sysupdate/.env into the process environment when the
// file exists, so GEMINI_API_KEY can live outside the shell profile.
// Already-set variables win; a missing file is not an error.
func LoadEnvFile() {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return
	}
	path := filepath.Join(home, ".sysupdate", ".env")
	if _, err := os.Stat(path); err != nil {
		return
	}
	// godotenv.Load never overwrites existing variables.
	_ = godotenv.Load(path)
}
