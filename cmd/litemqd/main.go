package main

import (
	"context"
	"os"

	"litemq/internal/app"
	"litemq/pkg/config"
	"litemq/pkg/logger"
	"litemq/pkg/shutdown"

	"github.com/joho/godotenv"
)

func main() {
	version := "dev"

	_ = godotenv.Load(".env")

	flags := config.ParseFlags(os.Args[1:])
	eff, err := config.LoadEffective(flags)
	if err != nil {
		logger.Init()
		shutdown.Abort("failed to build effective config", err, flags.DataDir)
	}

	logger.Init()
	logger.Info("config_loaded", "port", eff.Config.Server.Port, "mode", eff.Config.Server.Mode, "data_dir", eff.Config.Server.DataDir)

	a, err := app.New(eff, version)
	if err != nil {
		shutdown.Abort("failed to initialize broker", err, eff.Config.Server.DataDir)
	}

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	if err := a.Run(ctx); err != nil {
		logger.Error("server_exited_with_error", "error", err)
		shutdown.Abort("http server exited with error", err, eff.Config.Server.DataDir)
	}

	logger.Info("shutting_down")
	if err := a.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown_error", "error", err)
	}
	logger.Info("shutdown_complete")
}
