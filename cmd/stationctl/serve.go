package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bbernstein/chargeway/backend-go/internal/app"
	"github.com/bbernstein/chargeway/backend-go/internal/handler"
	"github.com/bbernstein/chargeway/backend-go/internal/metrics"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the station and vehicle APIs over HTTP with /metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := newServer(ctx, root, addr)
			if err != nil {
				return err
			}
			return runServer(ctx, srv)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}

func newServer(ctx context.Context, root *rootOptions, addr string) (*http.Server, error) {
	cfg, err := root.loadConfig()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.New(ctx, cfg, app.WithRegisterer(reg))
	if err != nil {
		return nil, err
	}

	mux := handler.NewMux(
		handler.NewStationsHandler(a.Aggregator, a.Store, cfg.DefaultRadiusMiles, cfg.ResultLimit),
		handler.NewVehicleHandler(a.Store),
	)
	mux.Handle("GET /metrics", metrics.Handler(reg))

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.ProviderTimeout + cfg.HTTPTimeout,
	}, nil
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
