package main

import (
	"context"
	"log/slog"

	"attendance-backend/cmd/attendance-cli/commands"

	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}
	commands.ExecuteContext(context.Background())
}
