package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloud-ru/mcp-realty-go/internal/app"
	"github.com/cloud-ru/mcp-realty-go/internal/logger"
	"github.com/cloud-ru/mcp-realty-go/internal/server"
	"github.com/cloud-ru/mcp-realty-go/internal/tracing"
)

func serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP tool server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				cfg.Port = port
			}
			logger.InitLogger(cfg.LogLevel)

			shutdownTracing, err := tracing.InitTracing(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownTracing(ctx); err != nil {
					logger.L.Warn("Ошибка остановки трейсинга", "error", err)
				}
			}()

			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := server.NewServer(cfg.Port,
				server.NewHandler(a.Registry, cfg.RateLimitRPS, cfg.RateLimitBurst))

			serverErr := make(chan error, 1)
			go func() {
				logger.L.Info("Сервер запущен", "addr", srv.Addr, "tools", len(a.Registry.Tools()))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-serverErr:
				return err
			case <-quit:
				logger.L.Info("Остановка сервера")
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default PORT or 8000)")
	return cmd
}
