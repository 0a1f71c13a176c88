package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/df07/go-interactive-raytracer/pkg/config"
	"github.com/df07/go-interactive-raytracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	configPath := flag.String("config", "", "Settings file (.yaml, .yml or .toml) for session defaults")
	verbose := flag.Bool("verbose", false, "Log every pass")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	webServer := server.NewServer(*port, cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", "error", err)
		}
	}()

	logger.Info("Interactive Raytracer Web Server", "scene", cfg.Scene)
	if err := webServer.Start(); err != nil {
		logger.Error("Error starting server", "error", err)
		os.Exit(1)
	}
}
