package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Arten331/agi-gateway/internal/app"
	"github.com/Arten331/agi-gateway/internal/config"
	"github.com/Arten331/observability/logger"
)

func main() {
	var err error

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	cfg, err := config.Init()
	if err != nil {
		log.Panicf("Error configuration load, %v\n", err)
	}

	logger.MustSetupGlobal(
		logger.WithConfiguration(logger.CoreOptions{
			OutputPath: "stderr",
			Level:      cfg.Logger.Level,
			Encoding:   logger.EncodingConsole,
		}),
	)

	application, err := app.Init(ctx, &cfg)
	if err != nil {
		log.Panicf("Error load application modules, %v\n", err)
	}

	err = application.Run(ctx, stop)
	if err != nil {
		log.Panicf("Error run application %v\n", err)
	}

	sig := make(chan os.Signal, 1)

	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sig

		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		err := application.Shutdown(shutdownCtx)
		if err != nil {
			logger.L().Error("graceful shutdown failed")
		}

		stop()
	}()

	<-ctx.Done()

	logger.L().Info("agi gateway stopped")
}
