// Package app wires config, broker, HTTP surface, and the stats heartbeat
// into a single lifecycle, adapted from the teacher's internal/app/app.go
// split of New/Run/Shutdown — trimmed of everything KMS, security, and
// validation since LiteMQ has none of those concerns.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"litemq/internal/broker"
	"litemq/pkg/banner"
	"litemq/pkg/config"
	"litemq/pkg/logger"
)

// App encapsulates the broker and HTTP server for one run of the daemon.
type App struct {
	eff     config.EffectiveConfigResult
	version string
	broker  *broker.Broker
	srv     *http.Server
}

// New constructs the broker from the resolved config. In persistent mode
// this also enumerates the data directory, which is why New can fail.
func New(eff config.EffectiveConfigResult, version string) (*App, error) {
	var b *broker.Broker
	switch eff.Config.Server.Mode {
	case "memory":
		b = broker.New()
	case "persistent", "":
		pb, err := broker.NewPersistent(eff.Config.Server.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open data dir %s: %w", eff.Config.Server.DataDir, err)
		}
		b = pb
	default:
		return nil, fmt.Errorf("unknown server mode %q (want \"memory\" or \"persistent\")", eff.Config.Server.Mode)
	}
	return &App{eff: eff, version: version, broker: b}, nil
}

// Run prints the banner, starts the stats heartbeat and the HTTP server,
// and blocks until ctx is canceled or the server exits with an error.
func (a *App) Run(ctx context.Context) error {
	if err := startStatsHeartbeat(ctx, a.broker, a.eff.Config.Ingest.StatsInterval); err != nil {
		return fmt.Errorf("start stats heartbeat: %w", err)
	}

	banner.Print(a.eff, len(a.broker.Names()), a.broker.DataDirSize(), a.version)

	a.srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.eff.Config.Server.Port),
		Handler: buildHandler(a.broker),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_server_starting", "addr", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown stops the HTTP server gracefully. It never flushes the broker:
// queue contents belong to the next run, not to shutdown.
func (a *App) Shutdown(ctx context.Context) error {
	if a.srv == nil {
		return nil
	}
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return a.srv.Shutdown(ctx2)
}
