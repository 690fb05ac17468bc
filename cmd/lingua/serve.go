package main

import (
	"errors"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nadzzz/lingua/internal/dispatch"
	"github.com/nadzzz/lingua/internal/health"
	"github.com/nadzzz/lingua/internal/transport"
	grpctransport "github.com/nadzzz/lingua/internal/transport/grpc"
	httptransport "github.com/nadzzz/lingua/internal/transport/http"
)

func newServeCmd(gf *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the translation and speech API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, gf)
		},
	}
	cmd.Flags().Int("http-port", 8080, "HTTP transport port")
	cmd.Flags().Int("grpc-port", 50051, "gRPC transport port")
	cmd.Flags().String("backend", "openai", "translator backend: openai or gemini")
	cmd.Flags().String("tts-backend", "openai", "speech backend: openai or elevenlabs")
	return cmd
}

func runServe(cmd *cobra.Command, gf *globalFlags) error {
	cfg, err := loadConfig(cmd, gf)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	slog.Info("lingua starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tr, err := newTranslator(ctx, cfg)
	if err != nil {
		return err
	}
	synth, err := newSynthesizer(cfg)
	if err != nil {
		_ = tr.Close()
		return err
	}

	dispatcher := dispatch.New(tr, synth, dispatchOptions(cfg))
	defer dispatcher.Close()

	// Initialize enabled transports.
	var transports []transport.Transport
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP.Port))
	}
	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port))
	}
	if len(transports) == 0 {
		return errors.New("no transports enabled: enable http or grpc in config")
	}

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort, dispatcher.Ready)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	// Start all transports.
	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx, dispatcher); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
				cancel()
			}
		}(t)
	}

	healthServer.SetReady(true)
	slog.Info("lingua ready",
		"transports", len(transports),
		"health_port", cfg.Server.HealthPort)

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")

	healthServer.SetReady(false)
	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("lingua stopped")
	return nil
}

var _ transport.Service = (*dispatch.Dispatcher)(nil)
