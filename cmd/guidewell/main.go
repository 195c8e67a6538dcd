package main

import (
	"github.com/joho/godotenv"

	"github.com/guidewell-labs/guidewell-cli/internal/adapters/driving/cli"
)

func main() {
	// Load API keys from a .env file when present; the environment
	// always wins over the file.
	_ = godotenv.Load()

	cli.Execute()
}
