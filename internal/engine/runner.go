package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"
)

const (
	maxStderrBytes  = 8 * 1024 // tail of stderr kept for diagnostics
	reasonTailChars = 200      // characters of stderr surfaced in outcomes
	killGracePeriod = 10 * time.Second
)

// Config holds the invoker's configuration.
type Config struct {
	Script             string        // path to the engine entry script
	Python             string        // python binary; empty = auto-detect
	Preset             string        // quality preset, see PresetFlags
	ExecutionProviders []string      // hardware backends passed through
	Timeout            time.Duration // hard wall-clock bound per invocation
	Logger             *slog.Logger
}

// Runner is the subprocess implementation of the engine invoker.
type Runner struct {
	cfg    Config
	python string // resolved python path
	flags  []string
}

// NewRunner resolves the python binary, verifies the engine script exists,
// and fixes the preset flag bundle.
func NewRunner(cfg Config) (*Runner, error) {
	if err := Preflight(cfg); err != nil {
		return nil, err
	}
	python, err := resolvePython(cfg.Python)
	if err != nil {
		return nil, err
	}
	flags, err := PresetFlags(cfg.Preset)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	if len(cfg.ExecutionProviders) == 0 {
		cfg.ExecutionProviders = []string{"cpu"}
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("engine invoker initialised",
			"python", python,
			"script", cfg.Script,
			"preset", cfg.Preset,
			"timeout", cfg.Timeout,
		)
	}
	return &Runner{cfg: cfg, python: python, flags: flags}, nil
}

// Invoke runs the engine once for a face/video pair, writing to outputPath.
// The subprocess is forcibly terminated when it exceeds the configured bound;
// a bounded kill grace period guarantees no orphan process remains. Exactly
// one outcome kind is returned per call. Invoke never retries.
func (r *Runner) Invoke(ctx context.Context, facePath, videoPath, outputPath string) Outcome {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	args := r.buildArgs(facePath, videoPath, outputPath)
	cmd := exec.CommandContext(ctx, r.python, args...)

	var stderrBuf bytes.Buffer
	cmd.Stderr = &limitedWriter{w: &stderrBuf, limit: maxStderrBytes}
	cmd.Stdout = io.Discard
	cmd.WaitDelay = killGracePeriod

	if r.cfg.Logger != nil {
		r.cfg.Logger.Info("invoking engine",
			"video", videoPath,
			"face", facePath,
			"output", outputPath,
			"timeout", r.cfg.Timeout,
		)
	}

	err := cmd.Run()
	elapsed := time.Since(start)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		if r.cfg.Logger != nil {
			r.cfg.Logger.Warn("engine timed out", "video", videoPath, "duration", elapsed)
		}
		return Outcome{
			Kind:     OutcomeTimeout,
			Reason:   fmt.Sprintf("engine exceeded %s bound", r.cfg.Timeout),
			ExitCode: -1,
			Duration: elapsed,
		}
	}

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		reason := tail(stderrBuf.String(), reasonTailChars)
		if reason == "" {
			reason = err.Error()
		}
		if r.cfg.Logger != nil {
			r.cfg.Logger.Warn("engine failed",
				"video", videoPath,
				"exit_code", exitCode,
				"duration", elapsed,
				"stderr_tail", reason,
			)
		}
		return Outcome{Kind: OutcomeFailure, Reason: reason, ExitCode: exitCode, Duration: elapsed}
	}

	info, statErr := os.Stat(outputPath)
	if statErr != nil || info.Size() == 0 {
		return Outcome{
			Kind:     OutcomeFailure,
			Reason:   "no output produced",
			Duration: elapsed,
		}
	}

	if r.cfg.Logger != nil {
		r.cfg.Logger.Info("engine succeeded",
			"video", videoPath,
			"output", outputPath,
			"size", info.Size(),
			"duration", elapsed,
		)
	}
	return Outcome{Kind: OutcomeSuccess, OutputPath: outputPath, Duration: elapsed}
}

func (r *Runner) buildArgs(facePath, videoPath, outputPath string) []string {
	args := []string{
		r.cfg.Script,
		"headless-run",
		"--source-paths", facePath,
		"--target-path", videoPath,
		"--output-path", outputPath,
	}
	args = append(args, r.flags...)
	args = append(args, "--execution-providers")
	args = append(args, r.cfg.ExecutionProviders...)
	return args
}

// Preflight verifies the engine is invocable: the python binary resolves and
// the engine script exists.
func Preflight(cfg Config) error {
	if _, err := resolvePython(cfg.Python); err != nil {
		return err
	}
	if cfg.Script == "" {
		return fmt.Errorf("engine script not configured")
	}
	info, err := os.Stat(cfg.Script)
	if err != nil {
		return fmt.Errorf("engine script %s not found: %w", cfg.Script, err)
	}
	if info.IsDir() {
		return fmt.Errorf("engine script %s is a directory", cfg.Script)
	}
	return nil
}

// resolvePython finds a usable python binary.
func resolvePython(preferred string) (string, error) {
	if preferred != "" {
		if p, err := exec.LookPath(preferred); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("configured python %q not found", preferred)
	}
	for _, name := range []string{"python3", "python"} {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no python binary found on PATH (tried python3, python)")
}

// limitedWriter is an io.Writer that keeps only the last `limit` bytes.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		// Keep only the tail
		b := lw.w.Bytes()
		lw.w.Reset()
		lw.w.Write(b[len(b)-lw.limit:])
	}
	return n, nil
}
