package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teslashibe/motionsense/internal/config"
	"github.com/teslashibe/motionsense/internal/log"
	"github.com/teslashibe/motionsense/pkg/pipeline"
	"github.com/teslashibe/motionsense/pkg/relay"
	"github.com/teslashibe/motionsense/pkg/web"
)

var (
	addrFlag      string
	relayFlag     string
	accessLogFlag bool
	trackFlag     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the control API, detector ingest and display stream",
	Long: `Serve runs the estimation pipeline behind an HTTP server.

Detectors stream pose messages to /ws/detector. Displays subscribe to
/ws/display for throttled metrics and slider telemetry. The REST API under
/api controls tracking, sessions, resets and external slider applies.

Examples:
  motionsense serve
  motionsense serve --addr :9000 --track
  motionsense serve --relay ws://display.local:8080/ws/ingest`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&addrFlag, "addr", "a", config.Addr(), "Listen address")
	serveCmd.Flags().StringVar(&relayFlag, "relay", config.RelayURL(), "Forward telemetry to this websocket relay")
	serveCmd.Flags().BoolVar(&accessLogFlag, "access-log", false, "Log every HTTP request")
	serveCmd.Flags().BoolVar(&trackFlag, "track", false, "Start with tracking enabled")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(pipelineConfig())

	if relayFlag != "" {
		rc := relay.NewClient(relay.DefaultConfig(relayFlag))
		defer rc.Close()
		go rc.Run(ctx)
		p.AddSink(rc)
		log.Info("relay enabled", "url", relayFlag, "client_id", rc.ID())
	}

	srv := web.NewServer(web.Config{Addr: addrFlag, AccessLog: accessLogFlag}, p)
	if trackFlag {
		p.SetTracking(true)
	}

	log.Info("motionsense starting", "addr", addrFlag, "tracking", trackFlag)
	if err := srv.Start(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	log.Info("motionsense stopped")
	return nil
}

