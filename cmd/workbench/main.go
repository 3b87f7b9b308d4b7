package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/soochol/workbench/internal/cli"
)

func main() {
	// .env is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env", "err", err)
	}
	if err := cli.NewRootCommand().Execute(); err != nil {
		slog.Error("workbench", "err", err)
		os.Exit(1)
	}
}
