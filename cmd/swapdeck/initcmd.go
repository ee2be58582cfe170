package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/swapdeck/swapdeck/internal/config"
	"github.com/swapdeck/swapdeck/internal/workspace"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the workspace directories and a default config file",
	Long: `Creates input/, faces/, output/, processed/ and errors/ under the
workspace directory, plus a swapdeck.yaml with defaults when none exists.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := workspaceDir
	if dir == "" {
		dir = "."
	}
	layout, err := workspace.New(dir)
	if err != nil {
		return err
	}
	if err := layout.EnsureDirs(); err != nil {
		return err
	}

	for _, d := range layout.Dirs() {
		fmt.Printf("  %s/\n", d)
	}

	cfgPath := layout.ConfigPath()
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := os.WriteFile(cfgPath, config.DefaultYAML(), 0644); err != nil {
			return fmt.Errorf("cannot write %s: %w", cfgPath, err)
		}
		fmt.Printf("  %s\n", cfgPath)
	}

	fmt.Println("\nWorkspace ready. Drop face images into faces/ and videos into input/,")
	fmt.Println("then run `swapdeck batch` or `swapdeck watch`.")
	return nil
}
