// Package engine invokes the external face-swapping engine as a bounded
// subprocess and classifies the result. The engine is an opaque collaborator:
// only its exit status, stderr text, and the produced output file matter here.
package engine

import (
	"fmt"
	"strings"
	"time"
)

// Outcome kinds. Every invocation yields exactly one.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeTimeout = "timeout"
)

// Quality presets. Each maps to a fixed bundle of engine flags controlling
// encoding quality and which enhancement stages run.
const (
	PresetFast     = "fast"
	PresetBalanced = "balanced"
	PresetBest     = "best"
)

var presetFlags = map[string][]string{
	PresetFast: {
		"--processors", "face_swapper",
		"--output-video-quality", "60",
		"--output-video-preset", "ultrafast",
	},
	PresetBalanced: {
		"--processors", "face_swapper",
		"--output-video-quality", "80",
		"--output-video-preset", "veryfast",
	},
	PresetBest: {
		"--processors", "face_swapper", "face_enhancer",
		"--output-video-quality", "95",
		"--output-video-preset", "slow",
	},
}

// PresetFlags returns the engine flags for a quality preset.
func PresetFlags(preset string) ([]string, error) {
	flags, ok := presetFlags[preset]
	if !ok {
		return nil, fmt.Errorf("unknown quality preset %q", preset)
	}
	return flags, nil
}

// Outcome is the classified result of one engine invocation.
type Outcome struct {
	Kind       string        `json:"kind"`
	OutputPath string        `json:"output_path,omitempty"`
	Reason     string        `json:"reason,omitempty"` // truncated stderr tail or classification note
	ExitCode   int           `json:"exit_code"`
	Duration   time.Duration `json:"duration"`
}

// IsSuccess reports whether the engine produced a usable output.
func (o Outcome) IsSuccess() bool { return o.Kind == OutcomeSuccess }

// tail keeps the last maxChars characters of s for operator-readable logs.
func tail(s string, maxChars int) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxChars {
		return s
	}
	return "..." + s[len(s)-maxChars:]
}
