// motionsense turns a stream of pose detections into smoothed movement,
// posture and emotion signals.
//
// Usage:
//
//	motionsense serve --addr :8090 --relay ws://display.local/ingest
//	motionsense replay --input session.jsonl
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/teslashibe/motionsense/internal/config"
	"github.com/teslashibe/motionsense/internal/log"
	"github.com/teslashibe/motionsense/pkg/pipeline"
)

var logLevelFlag string

// rootCmd is the motionsense command.
var rootCmd = &cobra.Command{
	Use:   "motionsense",
	Short: "Real-time motion-to-signal estimation",
	Long: `motionsense consumes skeletal keypoint detections and estimates movement
velocity, posture, per-region widths and six emotion intensities.

Environment:
  MOTIONSENSE_ADDR               listen address (default :8090)
  MOTIONSENSE_RELAY_URL          display relay websocket URL
  MOTIONSENSE_APPLY_BLEND        external apply blend factor (default 0.35)
  MOTIONSENSE_RESET_COOLDOWN     apply cooldown after reset (default 600ms)
  MOTIONSENSE_SESSION_MIN_SCORE  pose score needed to sample (default 0.25)
  LOG_LEVEL                      debug, info, warn, error`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Init(logLevelFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", config.LogLevel(), "Log level (debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd, replayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// pipelineConfig applies environment overrides to the default configuration.
func pipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Sliders.ApplyBlend = config.Float("MOTIONSENSE_APPLY_BLEND", cfg.Sliders.ApplyBlend)
	cfg.Sliders.ResetCooldown = config.Duration("MOTIONSENSE_RESET_COOLDOWN", cfg.Sliders.ResetCooldown)
	cfg.SessionMinScore = config.Float("MOTIONSENSE_SESSION_MIN_SCORE", cfg.SessionMinScore)
	return cfg
}
