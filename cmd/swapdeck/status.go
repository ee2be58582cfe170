package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/swapdeck/swapdeck/internal/engine"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show workspace file counts and engine availability",
	RunE:  runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	layout, err := newLayout(cfg)
	if err != nil {
		return err
	}

	counts, err := layout.Counts()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("Workspace: %s\n", layout.Base())
	for _, name := range names {
		fmt.Printf("  %-10s %d files\n", name+"/", counts[name])
	}

	fmt.Printf("\nQuality preset: %s\n", cfg.QualityPreset)
	fmt.Printf("Watch interval: %ds\n", cfg.WatchInterval)
	fmt.Printf("Max retries:    %d\n", cfg.MaxRetries)

	if err := engine.Preflight(engineConfig(cfg, nil)); err != nil {
		fmt.Printf("\nEngine: NOT READY (%v)\n", err)
	} else {
		fmt.Printf("\nEngine: ready (%s)\n", cfg.Engine.Script)
	}
	return nil
}
