package main

import (
	"embed"
	"log/slog"
	"os"

	"github.com/chazu/molsketch/pkg/config"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend
var assets embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	log := cfg.Logger(os.Stderr)
	app := NewApp(cfg, log)

	err = wails.Run(&options.App{
		Title:       "molsketch",
		Width:       cfg.Window.Width,
		Height:      cfg.Window.Height,
		AssetServer: &assetserver.Options{Assets: assets},
		OnStartup:   app.startup,
		Bind:        []interface{}{app},
	})
	if err != nil {
		log.Error("run", "err", err)
		os.Exit(1)
	}
}
