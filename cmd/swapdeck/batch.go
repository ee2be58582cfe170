package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/swapdeck/swapdeck/internal/engine"
	"github.com/swapdeck/swapdeck/internal/journal"
	"github.com/swapdeck/swapdeck/internal/orchestrator"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process every video currently in input/",
	Long: `Pairs each video in input/ with a face from faces/ and runs the
engine for each pair sequentially. Originals move to processed/ on success
and errors/ on failure or timeout; results land in output/.`,
	RunE: runBatchCmd,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().Bool("json", false, "Print the run summary as JSON")
}

func runBatchCmd(cmd *cobra.Command, args []string) error {
	jsonOut, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	layout, err := newLayout(cfg)
	if err != nil {
		return err
	}
	if err := layout.EnsureDirs(); err != nil {
		return err
	}

	runner, err := engine.NewRunner(engineConfig(cfg, logger))
	if err != nil {
		return fmt.Errorf("engine unavailable: %w", err)
	}

	runID := uuid.NewString()[:8]
	j, err := journal.Open(layout.JournalPath(), runID)
	if err != nil {
		return err
	}
	defer j.Close()

	orch := orchestrator.New(layout, runner, j, logger, orchestrator.Options{
		MaxRetries:   cfg.MaxRetries,
		FaceMappings: cfg.FaceMappings,
		DefaultFace:  cfg.DefaultFace,
	})

	var bar *progressbar.ProgressBar
	if !jsonOut {
		// Bar total comes from the run's own discovery.
		orch.OnRunStart = func(pairs int) {
			if pairs == 0 {
				return
			}
			bar = progressbar.NewOptions(pairs,
				progressbar.OptionSetDescription("Processing videos"),
				progressbar.OptionShowCount(),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionFullWidth(),
			)
		}
		orch.OnOutcome = func(out orchestrator.VideoOutcome) {
			if bar != nil {
				_ = bar.Add(1)
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := orch.RunBatch(ctx)
	if err != nil {
		if summary == nil {
			return err
		}
		logger.Warn("batch run ended early", "error", err)
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	if len(summary.Outcomes) == 0 {
		fmt.Println("No videos in input/, nothing to do.")
		return nil
	}
	fmt.Printf("\nBatch complete: %d succeeded, %d failed, %d timed out\n",
		summary.Succeeded, summary.Failed, summary.TimedOut)
	for _, out := range summary.Outcomes {
		if out.Kind == engine.OutcomeSuccess {
			continue
		}
		fmt.Printf("  %s (%s): %s %s\n", out.Video, out.Face, out.Kind, out.Reason)
	}
	return nil
}
