package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teslashibe/motionsense/internal/log"
	"github.com/teslashibe/motionsense/pkg/pipeline"
	"github.com/teslashibe/motionsense/pkg/protocol"
	"github.com/teslashibe/motionsense/pkg/session"
	"github.com/teslashibe/motionsense/pkg/sliders"
)

var (
	inputFlag  string
	outputFlag string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay recorded messages and print the session summary",
	Long: `Replay feeds a JSON Lines recording of protocol messages (pose, apply,
reset) through a fresh pipeline inside one session and writes the session
snapshot as JSON. Timestamps in the recording drive every clock.

Examples:
  motionsense replay --input recording.jsonl
  motionsense replay -i recording.jsonl -o summary.json
  cat recording.jsonl | motionsense replay`,
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVarP(&inputFlag, "input", "i", "", "Recording to replay (default stdin)")
	replayCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write the summary here (default stdout)")
}

func runReplay(cmd *cobra.Command, args []string) error {
	in := io.Reader(os.Stdin)
	if inputFlag != "" {
		f, err := os.Open(inputFlag)
		if err != nil {
			return fmt.Errorf("open recording: %w", err)
		}
		defer f.Close()
		in = f
	}

	snap, stats, err := replay(in, pipelineConfig())
	if err != nil {
		return err
	}
	log.Info("replay finished",
		"lines", stats.Lines,
		"frames", stats.Frames,
		"skipped", stats.Skipped,
		"samples", snap.Samples)

	out := io.Writer(os.Stdout)
	if outputFlag != "" {
		f, err := os.Create(outputFlag)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// replayStats counts what a replay consumed.
type replayStats struct {
	Lines   int
	Frames  int
	Skipped int
}

// replay runs every message in r through a pipeline with tracking on and a
// session open, and returns the session snapshot. Malformed lines are skipped.
func replay(r io.Reader, cfg pipeline.Config) (session.Snapshot, replayStats, error) {
	var stats replayStats
	var clock time.Time
	cfg.Now = func() time.Time { return clock }

	p := pipeline.New(cfg)
	p.SetTracking(true)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	began := false
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		stats.Lines++

		msg, err := protocol.ParseMessage(line)
		if err != nil {
			stats.Skipped++
			log.Debug("skipping line", "line", stats.Lines, "error", err)
			continue
		}
		if msg.Timestamp > 0 {
			clock = time.UnixMilli(msg.Timestamp)
		}

		switch msg.Type {
		case protocol.TypePose:
			data, err := msg.ParsePoseData()
			if err != nil {
				stats.Skipped++
				continue
			}
			frame := data.Frame(clock)
			clock = frame.Timestamp
			if !began {
				p.BeginSession()
				began = true
			}
			if p.Process(frame) {
				stats.Frames++
			}
		case protocol.TypeApply:
			data, err := msg.ParseApplyData()
			if err != nil {
				stats.Skipped++
				continue
			}
			p.Apply(pipeline.SliderNames(data.Values), sliders.ApplyOptions{Force: data.Force})
		case protocol.TypeReset:
			data, err := msg.ParseResetData()
			if err != nil {
				stats.Skipped++
				continue
			}
			p.Reset(pipeline.ResetOptions{
				Echo:         data.Echo,
				ClearCaches:  data.ClearCaches,
				StopTracking: data.StopTracking,
			})
		default:
			stats.Skipped++
		}
	}
	if err := scanner.Err(); err != nil {
		return session.Snapshot{}, stats, fmt.Errorf("read recording: %w", err)
	}
	if !began {
		return session.Snapshot{}, stats, errors.New("recording contains no pose frames")
	}

	snap, err := p.EndSession()
	return snap, stats, err
}
