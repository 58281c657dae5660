package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mimir-aip/carprice/pkg/api"
	"github.com/mimir-aip/carprice/pkg/logging"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the estimate form and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			return a.serve()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "override the listen port")
	return cmd
}

func (a *app) serve() error {
	svc, holder := a.newEstimator()
	defer holder.Close()

	a.logger.Info("Starting car price service",
		logging.String("environment", a.cfg.Environment),
		logging.String("model", a.cfg.Model.Path),
		logging.Component("main"))

	// Load up front so a missing artifact is reported at startup. The
	// server still starts and shows the notice on the form.
	if ok, failure := svc.Available(); !ok {
		a.logger.Warn("Model not available, estimates are disabled",
			logging.String("detail", failure.Detail),
			logging.Component("main"))
	}

	server := api.NewServer(svc, holder.Info, a.cfg.Server, a.logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		a.logger.Info("Shutting down server", logging.String("signal", sig.String()), logging.Component("main"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		a.logger.Error("Server forced to shutdown", err, logging.Component("main"))
		return err
	}

	a.logger.Info("Server exited", logging.Component("main"))
	return nil
}
