package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/heliox/internal/app"
	"github.com/rovshanmuradov/heliox/internal/config"
	"github.com/rovshanmuradov/heliox/internal/logger"
	"github.com/rovshanmuradov/heliox/internal/ui"
)

const startupCheckTimeout = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to config file (JSON or YAML)")
	envPath := flag.String("env", ".env", "Path to .env file")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := config.LoadEnvFile(*envPath); err != nil {
		log.Fatalf("Failed to load env file: %v", err)
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.CreatePrettyLogger(cfg.DebugLogging)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() {
		_ = appLogger.Sync()
	}()

	if err := run(rootCtx, cfg, appLogger); err != nil {
		appLogger.Error("HelioX exited with error", zap.Error(err))
		_ = appLogger.Sync()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) error {
	runner := app.NewRunner(cfg, appLogger)
	defer func() {
		if err := runner.Shutdown(context.Background()); err != nil {
			appLogger.Warn("Shutdown finished with errors", zap.Error(err))
		}
	}()

	if err := runner.Initialize(ctx); err != nil {
		return err
	}

	go func() {
		checkCtx, cancel := context.WithTimeout(ctx, startupCheckTimeout)
		defer cancel()
		runner.CheckDeployment(checkCtx)
	}()

	services := runner.Services()
	uiLogger := runner.Logger()

	createUI := func() (tea.Model, []tea.ProgramOption) {
		model := ui.NewSafeUIWrapper(NewAppModel(services), uiLogger)
		return model, []tea.ProgramOption{tea.WithAltScreen()}
	}

	recovery := ui.NewRecoveryHandler(uiLogger, createUI)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			uiLogger.Info("Shutdown signal received")
			recovery.Stop()
		case <-done:
		}
	}()

	return runUI(recovery, uiLogger)
}

func runUI(recovery *ui.RecoveryHandler, logger *zap.Logger) error {
	err := recovery.RunWithRecovery()
	logger.Info("UI stopped",
		zap.Int("restarts", recovery.GetRestartCount()),
		zap.Error(err))
	return err
}
