package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go-hrdata/internal/app"
	"go-hrdata/internal/config"
	"go-hrdata/internal/shared/logger"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunWorker(ctx, *cfg, log); err != nil {
		log.Fatal("worker exited", zap.Error(err))
	}
}
