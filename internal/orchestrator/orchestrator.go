package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/swapdeck/swapdeck/internal/assets"
	"github.com/swapdeck/swapdeck/internal/engine"
	"github.com/swapdeck/swapdeck/internal/journal"
	"github.com/swapdeck/swapdeck/internal/workspace"
)

const stampLayout = "20060102_150405"

// Orchestrator owns one run. It is driven by a single goroutine; only the
// snapshot fields are read concurrently (by the status API).
type Orchestrator struct {
	layout  *workspace.Layout
	invoker Invoker
	journal *journal.Journal
	logger  *slog.Logger
	opts    Options

	// OnRunStart, when set before the run starts, is called once with the
	// number of pairs a batch run discovered, before any is processed.
	// OnOutcome is called after every terminal outcome. Both are used by
	// the CLI for progress reporting.
	OnRunStart func(pairs int)
	OnOutcome  func(VideoOutcome)

	paused atomic.Bool

	mu        sync.Mutex
	state     string
	current   string
	lastErr   string
	succeeded int
	failed    int
	timedOut  int
	lastStamp time.Time
}

func New(layout *workspace.Layout, invoker Invoker, j *journal.Journal, logger *slog.Logger, opts Options) *Orchestrator {
	if opts.WatchInterval <= 0 {
		opts.WatchInterval = 5 * time.Second
	}
	return &Orchestrator{
		layout:  layout,
		invoker: invoker,
		journal: j,
		logger:  logger,
		opts:    opts,
		state:   StateIdle,
	}
}

// RunBatch processes every currently discoverable pair once, sequentially,
// and returns the outcome counts. An empty face set aborts before any file is
// touched. Per-video failures never abort the run.
func (o *Orchestrator) RunBatch(ctx context.Context) (*Summary, error) {
	pairs, err := o.discoverPairs()
	if err != nil {
		o.setError(err)
		return nil, err
	}

	o.journal.RunStarted("batch")
	o.logger.Info("batch run started", "pairs", len(pairs))
	if o.OnRunStart != nil {
		o.OnRunStart(len(pairs))
	}

	summary := &Summary{}
	for _, p := range pairs {
		select {
		case <-ctx.Done():
			o.logger.Warn("batch run interrupted", "remaining", len(pairs)-len(summary.Outcomes))
			o.finishRun("batch", summary)
			return summary, ctx.Err()
		default:
		}

		o.journal.PairDiscovered(p.Video.Name, p.Face.Key)
		summary.add(o.processPair(ctx, p))
	}

	o.finishRun("batch", summary)
	o.logger.Info("batch run finished",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"timed_out", summary.TimedOut,
	)
	return summary, nil
}

// RunWatch polls the input directory until ctx is cancelled. New arrivals are
// matched against the face set current at that cycle and processed as in
// batch mode. Cancellation is observed between cycles, never mid-subprocess.
func (o *Orchestrator) RunWatch(ctx context.Context) error {
	// The face set must be non-empty at startup, as in batch mode.
	faces, err := assets.DiscoverFaces(o.layout.Faces())
	if err != nil {
		o.setError(err)
		return fmt.Errorf("cannot scan faces dir: %w", err)
	}
	if len(faces) == 0 {
		o.setError(assets.ErrNoFaces)
		return assets.ErrNoFaces
	}

	o.journal.RunStarted("watch")
	o.setState(StateWatching)
	o.logger.Info("watch mode started", "interval", o.opts.WatchInterval)

	seen := make(map[string]bool)
	ticker := time.NewTicker(o.opts.WatchInterval)
	defer ticker.Stop()

	for {
		if o.paused.Load() {
			o.setState(StatePaused)
		} else {
			o.setState(StateWatching)
			o.watchCycle(ctx, seen)
		}

		select {
		case <-ctx.Done():
			o.setState(StateIdle)
			o.mu.Lock()
			s, f, t := o.succeeded, o.failed, o.timedOut
			o.mu.Unlock()
			o.journal.RunFinished("watch", s, f, t)
			o.logger.Info("watch mode stopped", "succeeded", s, "failed", f, "timed_out", t)
			return nil
		case <-ticker.C:
		}
	}
}

// Pause suspends watch-mode processing at the next cycle boundary.
func (o *Orchestrator) Pause() {
	o.paused.Store(true)
	o.logger.Info("processing paused")
}

// Resume lifts a pause.
func (o *Orchestrator) Resume() {
	o.paused.Store(false)
	o.logger.Info("processing resumed")
}

func (o *Orchestrator) IsPaused() bool { return o.paused.Load() }

// Snapshot returns a point-in-time view for the status API.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Snapshot{
		State:        o.state,
		CurrentVideo: o.current,
		LastError:    o.lastErr,
		Succeeded:    o.succeeded,
		Failed:       o.failed,
		TimedOut:     o.timedOut,
	}
}

// watchCycle processes input arrivals not yet seen in this run. Faces are
// re-scanned every cycle; an empty face set mid-run leaves arrivals waiting
// rather than aborting.
func (o *Orchestrator) watchCycle(ctx context.Context, seen map[string]bool) {
	videos, err := assets.DiscoverVideos(o.layout.Input())
	if err != nil {
		o.logger.Error("cannot scan input dir", "error", err)
		o.setError(err)
		return
	}

	var fresh []assets.VideoAsset
	for _, v := range videos {
		if !seen[v.Name] {
			fresh = append(fresh, v)
		}
	}
	if len(fresh) == 0 {
		return
	}

	faces, err := assets.DiscoverFaces(o.layout.Faces())
	if err != nil {
		o.logger.Error("cannot scan faces dir", "error", err)
		o.setError(err)
		return
	}
	if len(faces) == 0 {
		o.logger.Warn("no face images available, leaving new videos in input", "waiting", len(fresh))
		return
	}

	pairs, err := assets.Match(fresh, faces, o.matchOptions())
	if err != nil {
		o.logger.Error("matching failed", "error", err)
		o.setError(err)
		return
	}

	for _, p := range pairs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		o.logger.Info("new video detected", "video", p.Video.Name, "face", p.Face.Key)
		o.journal.PairDiscovered(p.Video.Name, p.Face.Key)
		seen[p.Video.Name] = true
		o.processPair(ctx, p)
	}
}

// processPair invokes the engine (with retries per options) and relocates the
// source video by outcome. It always yields exactly one terminal outcome.
func (o *Orchestrator) processPair(ctx context.Context, p assets.Pair) VideoOutcome {
	o.setCurrent(p.Video.Name)
	defer o.setCurrent("")

	// The in-flight subprocess must survive operator cancellation; only the
	// engine's own timeout bounds it.
	invokeCtx := context.WithoutCancel(ctx)

	var out engine.Outcome
	var outputPath string
	attempts := 0
	for {
		attempts++
		outputPath = o.nextOutputPath(p)
		out = o.invoker.Invoke(invokeCtx, p.Face.Path, p.Video.Path, outputPath)
		if out.IsSuccess() || attempts > o.opts.MaxRetries {
			break
		}
		o.logger.Warn("engine attempt failed, retrying",
			"video", p.Video.Name,
			"attempt", attempts,
			"max_retries", o.opts.MaxRetries,
			"kind", out.Kind,
		)
		// A partial output from a failed attempt must not linger in output/.
		o.removePartial(outputPath)
	}

	result := VideoOutcome{
		Video:    p.Video.Name,
		Face:     p.Face.Key,
		Kind:     out.Kind,
		Reason:   out.Reason,
		Output:   out.OutputPath,
		Attempts: attempts,
	}

	if out.IsSuccess() {
		if dst, err := workspace.MoveFile(p.Video.Path, o.layout.Processed()); err != nil {
			// Relocation failure demotes the pair; the run continues.
			o.logger.Error("cannot move source to processed", "video", p.Video.Name, "error", err)
			result.Kind = engine.OutcomeFailure
			result.Reason = fmt.Sprintf("relocation failed: %v", err)
			o.routeToErrors(p)
		} else {
			o.logger.Info("video processed", "video", p.Video.Name, "moved_to", dst, "output", out.OutputPath)
		}
	} else {
		// Failure outcomes carry no output path, but the engine may still
		// have written a partial file to the attempted path.
		o.removePartial(outputPath)
		o.routeToErrors(p)
	}

	o.journal.Outcome(result.Video, result.Face, result.Kind, result.Reason, attempts)
	o.tally(result)
	if o.OnOutcome != nil {
		o.OnOutcome(result)
	}
	return result
}

func (o *Orchestrator) routeToErrors(p assets.Pair) {
	if _, err := workspace.MoveFile(p.Video.Path, o.layout.Errors()); err != nil {
		o.logger.Error("cannot move source to errors", "video", p.Video.Name, "error", err)
		o.setError(err)
	}
}

func (o *Orchestrator) removePartial(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		o.logger.Warn("cannot remove partial output", "path", path, "error", err)
	}
}

func (o *Orchestrator) discoverPairs() ([]assets.Pair, error) {
	faces, err := assets.DiscoverFaces(o.layout.Faces())
	if err != nil {
		return nil, fmt.Errorf("cannot scan faces dir: %w", err)
	}
	videos, err := assets.DiscoverVideos(o.layout.Input())
	if err != nil {
		return nil, fmt.Errorf("cannot scan input dir: %w", err)
	}
	return assets.Match(videos, faces, o.matchOptions())
}

func (o *Orchestrator) matchOptions() assets.MatchOptions {
	return assets.MatchOptions{
		Mappings:    o.opts.FaceMappings,
		DefaultFace: o.opts.DefaultFace,
	}
}

// nextOutputPath generates output/{stem}_{face}_{timestamp}{ext} with
// second-resolution timestamps that are strictly increasing within the run,
// so repeated invocations can never collide.
func (o *Orchestrator) nextOutputPath(p assets.Pair) string {
	o.mu.Lock()
	now := time.Now().Truncate(time.Second)
	if !now.After(o.lastStamp) {
		now = o.lastStamp.Add(time.Second)
	}
	o.lastStamp = now
	o.mu.Unlock()

	name := fmt.Sprintf("%s_%s_%s%s",
		assets.Stem(p.Video.Name),
		p.Face.Key,
		now.Format(stampLayout),
		filepath.Ext(p.Video.Name),
	)
	return filepath.Join(o.layout.Output(), name)
}

func (o *Orchestrator) finishRun(mode string, s *Summary) {
	o.setState(StateIdle)
	o.journal.RunFinished(mode, s.Succeeded, s.Failed, s.TimedOut)
}

func (o *Orchestrator) setState(state string) {
	o.mu.Lock()
	o.state = state
	o.mu.Unlock()
}

func (o *Orchestrator) setCurrent(video string) {
	o.mu.Lock()
	o.current = video
	if video != "" {
		o.state = StateProcessing
	}
	o.mu.Unlock()
}

func (o *Orchestrator) setError(err error) {
	o.mu.Lock()
	o.lastErr = err.Error()
	o.mu.Unlock()
}

func (o *Orchestrator) tally(out VideoOutcome) {
	o.mu.Lock()
	switch out.Kind {
	case engine.OutcomeSuccess:
		o.succeeded++
	case engine.OutcomeTimeout:
		o.timedOut++
	default:
		o.failed++
	}
	if out.Kind != engine.OutcomeSuccess && out.Reason != "" {
		o.lastErr = out.Reason
	}
	o.mu.Unlock()
}
