package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv overlays local env files onto the process environment.
// godotenv never overwrites variables that are already set, so OS env
// vars always win and .env.local wins over .env. Missing files are
// skipped silently; the returned slice names the files actually found,
// for the boot log.
func LoadDotEnv() []string {
	var loaded []string
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	return loaded
}
