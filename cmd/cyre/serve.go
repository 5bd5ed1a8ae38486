package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"cyre.run/cyre"
	"cyre.run/cyre/internal/channelconfig"
	"cyre.run/cyre/internal/clog"
	"cyre.run/cyre/internal/config"
)

var (
	metricsAddr  string
	snapshotPath string
	statusEvery  time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a cyre instance loaded from a channel definitions file",
	Long: `serve loads the engine config and channel definitions, registers every
channel with a handler that passes its payload through unchanged, starts the
Prometheus metrics endpoint, and blocks until SIGINT/SIGTERM.

A snapshot is saved on shutdown if --snapshot is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "address to serve /metrics on")
	serveCmd.Flags().StringVar(&snapshotPath, "snapshot", "", "snapshot file path (optional — persistence is opt-in)")
	serveCmd.Flags().DurationVar(&statusEvery, "status-interval", 30*time.Second, "console status log interval")
	serveCmd.MarkFlagRequired("channels")
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(engineConfigFile)
	if err != nil {
		log.WithError(err).Warn("failed to load engine config, using defaults")
		cfg = config.Default()
	}
	if err := clog.Init(cfg.Log); err != nil {
		log.WithError(err).Warn("failed to init structured logging, using stdlib defaults")
	}

	specs, err := channelconfig.LoadFile(channelConfigFile)
	if err != nil {
		return err
	}

	opts := []cyre.Option{cyre.WithConfig(cfg)}
	if snapshotPath != "" {
		store, err := cyre.NewFileSnapshotStore(snapshotPath)
		if err != nil {
			return err
		}
		opts = append(opts, cyre.WithSnapshotStore(store))
	}

	inst := cyre.New(opts...)
	inst.Init()
	log.Info("engine initialized")

	resp := inst.ActionBatch(channelconfig.ToConfigs(specs))
	log.WithField("ok", resp.OK).Infof("registered %d channel(s)", len(specs))

	subs := make([]cyre.Subscription, len(specs))
	for i, s := range specs {
		subs[i] = cyre.Subscription{ID: s.ID, Handler: passthroughHandler}
	}
	inst.OnBatch(subs)

	if snapshotPath != "" {
		if err := inst.RestoreSnapshot(); err == nil {
			log.Info("restored prior snapshot")
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server failed")
		}
	}()
	log.WithField("addr", metricsAddr).Info("serving /metrics")

	statusTicker := time.NewTicker(statusEvery)
	defer statusTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-statusTicker.C:
			logStatus(inst)
		case <-ctx.Done():
			return shutdown(inst, srv)
		case sig := <-sigCh:
			log.WithField("signal", sig).Info("received shutdown signal")
			return shutdown(inst, srv)
		}
	}
}

func shutdown(inst *cyre.Cyre, srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	inst.Shutdown()
	log.Info("engine shut down")
	return nil
}

// passthroughHandler is serve's default subscriber: it returns the payload
// unchanged, so every registered channel is observable via metrics even
// without a bespoke handler.
func passthroughHandler(payload any) (cyre.HandlerResult, error) {
	return cyre.Ok(payload), nil
}

func logStatus(inst *cyre.Cyre) {
	b := inst.GetBreathingState()
	g := inst.GetPerformanceState()
	log.WithFields(map[string]any{
		"pattern":      b.Pattern,
		"stress":       b.Stress,
		"recuperating": b.IsRecuperating,
		"calls":        g.TotalCalls,
		"errors":       g.TotalErrors,
		"call_rate":    g.CallRate,
	}).Info("status")
}
