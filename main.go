package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/ziadkadry99/ragserve/cmd"
)

func main() {
	// Load .env if present; real environment variables take precedence.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
