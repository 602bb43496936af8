// Screen reader notifier - reads a game title off the screen and posts it to a Telegram group
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/config"
	apperrors "github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/errors"
	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/ocr"
	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/orchestrator"
	screencap "github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/screen"
	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/server"
	"github.com/kennethbchen/Screen-Reader-Telegram-Bot/internal/telegram"
)

func main() {
	// Setup structured logging
	level := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	path := config.ResolvePath()
	cfg, err := config.Load(path)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ConfigMissing) {
			slog.Error("config file created from template; fill in and relaunch", "path", path)
		} else {
			slog.Error("invalid config", "path", path, "error", err)
		}
		os.Exit(1)
	}
	if cfg.General.DebugMode {
		level.Set(slog.LevelDebug)
	}

	engine, err := ocr.New(ocr.Options{
		Engine:         cfg.General.OCREngine,
		TesseractPath:  cfg.General.TesseractPath,
		TessdataPrefix: cfg.General.TessdataPrefix,
		Addr:           cfg.General.OCRAddr,
	})
	if err != nil {
		slog.Error("failed to create ocr engine", "engine", cfg.General.OCREngine, "error", err)
		os.Exit(1)
	}
	if c, ok := engine.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	api, err := telegram.Connect(cfg.Telegram.Token)
	if err != nil {
		slog.Error("failed to connect to telegram", "error", err)
		os.Exit(1)
	}
	target, err := telegram.ParseTarget(cfg.Telegram.GroupChatID)
	if err != nil {
		slog.Error("invalid group chat", "error", err)
		os.Exit(1)
	}

	screen := screencap.New()
	mgr, err := orchestrator.New(cfg, orchestrator.Deps{
		Window:   screen,
		Capturer: screen,
		OCR:      engine,
		Notifier: telegram.NewNotifier(api, target),
	})
	if err != nil {
		slog.Error("failed to create orchestrator", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bot := telegram.NewHandler(api, mgr)
	bot.RegisterCommands(ctx)
	go bot.Listen(ctx)

	// Optional status server
	var httpServer *http.Server
	if cfg.General.HTTPAddr != "" {
		srv := server.New(mgr)
		go srv.Broadcast(ctx)

		httpServer = &http.Server{
			Addr:              cfg.General.HTTPAddr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: server.ReadHeaderTimeout,
		}
		go func() {
			slog.Info("status server starting", "http", cfg.General.HTTPAddr)
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				slog.Error("http server error", "error", err)
			}
		}()
	}

	go mgr.Run(ctx)
	slog.Info("notifier started", "chat", target.String(), "cycle", cfg.General.CycleTime, "ocr", cfg.General.OCREngine)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down...")
	cancel()

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown error", "error", err)
		}
	}
	slog.Info("shutdown complete")
}
