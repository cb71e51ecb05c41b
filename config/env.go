package config

import (
	"log"

	"github.com/joho/godotenv"
)

// LoadEnv pulls a local .env file into the process environment. Deployed
// instances set real env vars instead, so a missing file is not an error.
func LoadEnv() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env into environment")
	}
}
