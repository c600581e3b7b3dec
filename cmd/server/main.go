package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/classcord/classcord-server/internal/app"
	"github.com/classcord/classcord-server/internal/config"
	"github.com/classcord/classcord-server/internal/log"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file")
		addr       = flag.String("addr", "", "TCP listen address override")
		adminAddr  = flag.String("admin-addr", "", "admin API listen address override")
		logLevel   = flag.String("log-level", "", "log level override (debug, info, warn, error)")
	)
	flag.Parse()

	bootLogger := log.New("info")

	cfg, path, err := config.Load(bootLogger, *configPath)
	if err != nil {
		bootLogger.Fatal().Err(err).Str("path", path).Msg("failed to load config")
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *adminAddr != "" {
		cfg.AdminAddr = *adminAddr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger := log.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize")
	}

	logger.Info().Str("addr", cfg.Addr).Str("admin_addr", cfg.AdminAddr).Msg("starting classcord server")
	if err := application.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
	logger.Info().Msg("server stopped")
}
