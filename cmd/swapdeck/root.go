package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/swapdeck/swapdeck/internal/config"
	"github.com/swapdeck/swapdeck/internal/engine"
	"github.com/swapdeck/swapdeck/internal/logging"
	"github.com/swapdeck/swapdeck/internal/workspace"
)

var (
	cfgFile      string
	workspaceDir string
)

var rootCmd = &cobra.Command{
	Use:   "swapdeck",
	Short: "Automation agent for an external face-swapping engine",
	Long: `swapdeck automates an external face-swapping engine over a fixed
workspace layout: drop videos into input/ and face images into faces/,
and results appear in output/. Videos are paired with faces by filename,
the engine runs one video at a time with a hard timeout, and originals
are moved to processed/ or errors/ by outcome.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() {
		// .env file is optional, don't fail if not found
		_ = godotenv.Load()
	})
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default swapdeck.yaml in the workspace)")
	rootCmd.PersistentFlags().StringVarP(&workspaceDir, "workspace", "w", "", "workspace directory (default current directory)")
}

// loadConfig resolves configuration with CLI flag overrides applied. When
// --workspace is given without --config, the workspace's own swapdeck.yaml
// is preferred over one in the current directory.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" && workspaceDir != "" {
		candidate := filepath.Join(workspaceDir, workspace.ConfigFilename)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if workspaceDir != "" {
		cfg.WorkspaceDir = workspaceDir
	}
	return cfg, nil
}

func newLayout(cfg *config.Config) (*workspace.Layout, error) {
	return workspace.New(cfg.WorkspaceDir)
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.LogLevel)
}

func engineConfig(cfg *config.Config, logger *slog.Logger) engine.Config {
	return engine.Config{
		Script:             cfg.Engine.Script,
		Python:             cfg.Engine.Python,
		Preset:             cfg.QualityPreset,
		ExecutionProviders: cfg.ExecutionProviders,
		Timeout:            cfg.EngineTimeout(),
		Logger:             logger,
	}
}
