package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/swapdeck/swapdeck/internal/api"
	"github.com/swapdeck/swapdeck/internal/engine"
	"github.com/swapdeck/swapdeck/internal/journal"
	"github.com/swapdeck/swapdeck/internal/orchestrator"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll input/ and process new videos as they arrive",
	Long: `Scans input/ on a fixed interval and processes videos not yet seen
in this run. Runs until interrupted; the interrupt takes effect between
polling cycles (an in-flight engine invocation is allowed to finish or
hit its own timeout).`,
	RunE: runWatchCmd,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Bool("api", false, "Serve the local status API while watching")
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if apiFlag, _ := cmd.Flags().GetBool("api"); apiFlag {
		cfg.API.Enabled = true
	}
	logger := newLogger(cfg)

	layout, err := newLayout(cfg)
	if err != nil {
		return err
	}
	if err := layout.EnsureDirs(); err != nil {
		return err
	}

	engCfg := engineConfig(cfg, logger)
	runner, err := engine.NewRunner(engCfg)
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
		MaxRetries:    cfg.MaxRetries,
		WatchInterval: cfg.WatchIntervalDuration(),
		FaceMappings:  cfg.FaceMappings,
		DefaultFace:   cfg.DefaultFace,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer = api.NewServer(api.ServerConfig{
			Port:       cfg.API.Port,
			Controller: orch,
			Layout:     layout,
			Preflight:  func() error { return engine.Preflight(engCfg) },
			Logger:     logger,
			StartTime:  startTime,
			Version:    Version,
		})
		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Error("HTTP server error", "error", err)
			}
		}()
		fmt.Printf("Status API on http://%s\n", apiServer.Addr())
	}

	fmt.Println("Watch mode active. Drop videos into input/; press Ctrl+C to stop.")

	err = orch.RunWatch(ctx)

	if apiServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if serr := apiServer.Shutdown(shutdownCtx); serr != nil {
			logger.Error("failed to shutdown HTTP server", "error", serr)
		}
	}
	return err
}
