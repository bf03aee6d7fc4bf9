package main

import (
	"log/slog"
	"os"

	"github.com/locallibrary/locallibrary/internal/app"
	"github.com/locallibrary/locallibrary/internal/cli"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping libraryctl")
		return
	}
	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	slog.SetDefault(app.NewLogger(cfg))
	os.Exit(cli.Execute(cli.NewServiceBackend(cfg)))
}
