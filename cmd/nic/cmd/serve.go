// ============================================================================
// nic - Chat-Kommando-Framework
// ============================================================================
//
// Package:     cmd
// Description: serve command running gateway, catalog watcher and audit
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/msto63/nic/internal/audit"
	"github.com/msto63/nic/internal/catalog"
	"github.com/msto63/nic/internal/gateway"
	"github.com/msto63/nic/pkg/core/health"
	"github.com/msto63/nic/pkg/core/version"
	"github.com/msto63/nic/pkg/nic/command"
)

var (
	serveHost    string
	servePort    int
	serveNoWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Startet das WebSocket-Gateway",
	Long: `Startet das Chat-Gateway.

Endpunkte:
  /ws        - WebSocket für Chat-Nachrichten
  /health    - Gesundheitszustand (JSON)
  /commands  - Registrierte Kommandos (JSON)

Der Kommando-Katalog wird bei Änderungen neu geladen, sofern
catalog.watch aktiviert ist. Ungültige Kataloge werden verworfen,
die bisherigen Kommandos bleiben aktiv.

Beispiele:
  nic serve
  nic serve --port 9000 --no-watch`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen-Adresse (überschreibt gateway.host)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port (überschreibt gateway.port)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "Katalog nicht überwachen")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveHost != "" {
		appConfig.Gateway.Host = serveHost
	}
	if servePort != 0 {
		appConfig.Gateway.Port = servePort
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	healthRegistry := health.NewRegistry("nic-gateway", version.Gateway)

	var auditLogger command.AuditLogger
	var store *audit.Store
	if appConfig.Audit.Enabled {
		var err error
		store, err = audit.Open(audit.Config{Path: appConfig.Audit.Path, Logger: logger})
		if err != nil {
			return fmt.Errorf("Audit-Datenbank: %w", err)
		}
		defer store.Close()

		auditLogger = store
		healthRegistry.Register(health.PingCheck("audit", store))
	}

	dispatcher, err := newDispatcher(appConfig, logger, auditLogger)
	if err != nil {
		return err
	}
	registry := dispatcher.Registry()

	healthRegistry.Register(health.CountCheck("commands", 1, registry.Len))
	healthRegistry.Register(health.FileCheck("catalog", appConfig.Catalog.Path))

	server := gateway.New(gateway.FromConfig(appConfig), dispatcher, healthRegistry, logger)

	logger.Info("Starting nic",
		zap.String("version", version.Platform),
		zap.String("address", appConfig.GatewayAddress()),
		zap.Int("commandCount", registry.Len()),
		zap.Bool("audit", store != nil))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(ctx)
	})

	if appConfig.Catalog.Watch && !serveNoWatch {
		g.Go(func() error {
			return catalog.Watch(ctx, appConfig.Catalog.Path, catalog.WatchOptions{
				Debounce: appConfig.Catalog.Debounce.Duration,
				Logger:   logger,
			}, func(c *catalog.Catalog) {
				if err := registry.Replace(c.Definitions()); err != nil {
					logger.Warn("Catalog rejected, keeping previous commands", zap.Error(err))
					return
				}
				logger.Info("Commands updated", zap.Int("commandCount", registry.Len()))
			})
		})
	}

	if store != nil && appConfig.Audit.RetentionDays > 0 {
		retention := time.Duration(appConfig.Audit.RetentionDays) * 24 * time.Hour
		g.Go(func() error {
			pruneAudit(ctx, store, retention)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("nic stopped")
	return nil
}

// pruneAudit removes expired audit records at startup and then hourly
func pruneAudit(ctx context.Context, store *audit.Store, retention time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		removed, err := store.Prune(ctx, retention)
		if err != nil && ctx.Err() == nil {
			logger.Warn("Audit prune failed", zap.Error(err))
		} else if removed > 0 {
			logger.Info("Audit records pruned", zap.Int64("removed", removed))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
