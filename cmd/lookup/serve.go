package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/daocha/blockchain-lookup/service/server"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the inspection HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "Listen address",
				EnvVars: []string{"SERVER_ADDR"},
				Value:   ":8080",
			},
		},
		Action: func(c *cli.Context) error {
			d, err := buildDeps(c)
			if err != nil {
				return err
			}

			srv := server.New(
				c.String("addr"),
				d.resolver,
				d.aggregator,
				d.hyperliquid,
				d.registry,
				d.metrics,
				d.logger,
			)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start()
			}()

			// Wait for shutdown signal or server error
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				d.logger.Info("received shutdown signal", "signal", sig.String())
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				d.logger.Error("server shutdown failed", "error", err)
				return err
			}
			d.logger.Info("server shutdown complete")
			return nil
		},
	}
}
