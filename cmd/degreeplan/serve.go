package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shutdownCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			application, closeStore, err := c.openApp(shutdownCtx)
			if err != nil {
				return err
			}
			defer closeStore()

			server := &http.Server{
				Addr:              c.cfg.HTTP.Addr,
				Handler:           application.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			go func() {
				<-shutdownCtx.Done()
				ctx, cancel := context.WithTimeout(context.Background(), c.cfg.HTTP.ShutdownTimeout)
				defer cancel()
				if err := server.Shutdown(ctx); err != nil {
					c.logger.Error("http shutdown error", zap.Error(err))
				}
			}()

			c.logger.Info("degreeplan listening", zap.String("addr", c.cfg.HTTP.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}
