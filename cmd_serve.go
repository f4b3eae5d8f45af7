package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nstehr/gridlife/observer"
)

var (
	flagAddr    string
	flagServeAt []string
	serveRules  ruleSource
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a simulation and stream ticks to websocket observers",
	Long: `Run the simulation at the configured tick interval until interrupted and
serve it over HTTP:

  /ws       websocket feed of hello and tick envelopes; accepts
            place_agent, set_rules, remove_agent, clear and subscribe
  /state    JSON snapshot of agents and cells
  /healthz  liveness check

Examples:
  gridlife serve
  gridlife serve --addr 127.0.0.1:9000 --preset spawner --at 0,0`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.Flags().StringArrayVar(&flagServeAt, "at", nil, "Place an agent at x,y (repeatable)")
	serveCmd.Flags().StringVar(&serveRules.preset, "preset", "", "Built-in rule list for placed agents")
	serveCmd.Flags().StringVar(&serveRules.file, "rules", "", "Rule list JSON file for placed agents")
	serveCmd.Flags().StringVar(&serveRules.rulebook, "rulebook", "", "Rulebook entry for placed agents")
}

func runServe(cmd *cobra.Command, _ []string) error {
	fmt.Println(banner)

	addr := flagAddr
	if addr == "" {
		addr = cfg.ObserverAddr
	}
	if addr == "" {
		addr = ":8080"
	}

	s := newSimulation()
	if _, err := populate(s, &serveRules, flagServeAt); err != nil {
		return err
	}
	srv := observer.NewServer(s, helloMessage(), slog.Default())

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpSrv := &http.Server{Addr: addr, Handler: srv, ReadHeaderTimeout: 5 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("observer listening", "addr", addr)
		serveErr <- httpSrv.ListenAndServe()
	}()

	runErr := make(chan error, 1)
	go func() { runErr <- s.Run(ctx, cfg.TickInterval(), 0) }()

	select {
	case err := <-serveErr:
		stop()
		<-runErr
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("observer: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	<-runErr
	slog.Info("shutting down", "tick", s.Tick(), "clients", srv.Clients(), "dropped", srv.Dropped())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
