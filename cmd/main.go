package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"thermal-inspector/config"
	cli "thermal-inspector/internal/api"
	"thermal-inspector/internal/container"
	"thermal-inspector/internal/domain/entity"
	"thermal-inspector/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var envFiles []string
	if path := os.Getenv("THERMAL_ENV_FILE"); path != "" {
		envFiles = append(envFiles, path)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return setupFailed(fmt.Errorf("failed to load config: %w", err))
	}

	log, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		return setupFailed(fmt.Errorf("failed to create logger: %w", err))
	}
	defer log.Sync()

	// Собираем конвейер
	appContainer, err := container.New(cfg, log)
	if err != nil {
		log.Errorf(ctx, "Failed to build pipeline: %v", err)
		return setupFailed(err)
	}
	defer appContainer.Close()

	return cli.New(appContainer.InspectionService, os.Stdout, log).Execute(ctx, os.Args[1:])
}

// setupFailed печатает отчёт UNCERTAIN, когда конвейер не удалось даже собрать
func setupFailed(err error) int {
	fmt.Fprintln(os.Stderr, err)
	out, _ := entity.UncertainReport(err).MarshalJSON()
	fmt.Fprintln(os.Stdout, string(out))
	return 1
}
