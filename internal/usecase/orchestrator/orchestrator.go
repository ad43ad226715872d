package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
	"github.com/alhaneef/text-weaver-pro/internal/ports"
	"github.com/alhaneef/text-weaver-pro/internal/usecase/executor"
	"github.com/alhaneef/text-weaver-pro/internal/usecase/progress"
)

// Translator is the single-chunk execution seam; satisfied by
// executor.Executor.
type Translator interface {
	Translate(ctx context.Context, t executor.Task) (executor.Result, error)
}

type Deps struct {
	Projects ports.ProjectRepository
	Chunks   ports.ChunkRepository
	Exec     Translator
	Publish  ports.ProgressPublisher
	Log      *slog.Logger
}

type Config struct {
	// WorkerPoolSize caps concurrent translations across ALL projects.
	WorkerPoolSize int64
}

// RunOptions selects the capability for one run.
type RunOptions struct {
	ProviderID  int64
	Model       string
	BypassCache bool
}

// Orchestrator drives project runs: it dispatches pending chunks to the
// executor through a shared worker pool, keeps the derived status current,
// and honors pause/cancel without killing in-flight work.
type Orchestrator struct {
	d    Deps
	sem  *semaphore.Weighted
	base context.Context

	mu   sync.Mutex
	runs map[int64]*run
}

// run is the mutable state of one active project run. flags are read by the
// dispatch loop before every chunk; setting one stops further dispatch but
// lets chunks already handed to workers finish.
type run struct {
	mu        sync.Mutex
	chunks    []*domain.Chunk
	paused    bool
	cancelled bool

	stopDispatch context.CancelFunc
	done         chan struct{}
}

func (r *run) flag(cancel bool) {
	r.mu.Lock()
	if cancel {
		r.cancelled = true
	} else {
		r.paused = true
	}
	r.mu.Unlock()
	r.stopDispatch()
}

func (r *run) stopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused || r.cancelled
}

// New creates an orchestrator whose workers are bound to base: cancelling
// base aborts in-flight translations, which only happens on shutdown.
func New(base context.Context, d Deps, cfg Config) *Orchestrator {
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 6
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return &Orchestrator{
		d:    d,
		sem:  semaphore.NewWeighted(cfg.WorkerPoolSize),
		base: base,
		runs: map[int64]*run{},
	}
}

// Start begins (or resumes) a run. Legal from ready and paused; an empty
// project completes immediately without a run.
func (o *Orchestrator) Start(ctx context.Context, projectID int64, opts RunOptions) error {
	return o.launch(ctx, projectID, opts, "start", func(s domain.Status) bool {
		return s == domain.StatusReady || s == domain.StatusPaused
	})
}

// RetryFailed returns a partial project's failed chunks to pending and runs
// them again. Legal only from partial.
func (o *Orchestrator) RetryFailed(ctx context.Context, projectID int64, opts RunOptions) error {
	o.mu.Lock()
	active := o.runs[projectID] != nil
	o.mu.Unlock()

	p, err := o.d.Projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if active || p.Status != domain.StatusPartial {
		return &ports.InvalidTransitionError{ProjectID: projectID, From: p.Status, Op: "retry failed chunks of"}
	}
	n, err := o.d.Chunks.ResetFailed(ctx, projectID)
	if err != nil {
		return err
	}
	o.d.Log.Info("reset failed chunks", "project_id", projectID, "count", n)
	return o.launch(ctx, projectID, opts, "retry", func(s domain.Status) bool { return true })
}

func (o *Orchestrator) launch(ctx context.Context, projectID int64, opts RunOptions, op string, legal func(domain.Status) bool) error {
	p, err := o.d.Projects.Get(ctx, projectID)
	if err != nil {
		return err
	}

	o.mu.Lock()
	if o.runs[projectID] != nil {
		o.mu.Unlock()
		return &ports.InvalidTransitionError{ProjectID: projectID, From: domain.StatusProcessing, Op: op}
	}
	if !legal(p.Status) {
		o.mu.Unlock()
		return &ports.InvalidTransitionError{ProjectID: projectID, From: p.Status, Op: op}
	}

	chunks, err := o.d.Chunks.ListByProject(ctx, projectID)
	if err != nil {
		o.mu.Unlock()
		return err
	}

	if len(chunks) == 0 {
		o.mu.Unlock()
		// Nothing to translate: the run begins and ends in one step.
		snap := progress.Snapshot(projectID, nil, progress.Running, time.Now())
		if err := o.d.Projects.UpdateProgress(ctx, projectID, snap.Status, 0, 0); err != nil {
			return err
		}
		o.d.Publish.Publish(snap)
		return nil
	}

	dispatchCtx, stop := context.WithCancel(o.base)
	r := &run{chunks: chunks, stopDispatch: stop, done: make(chan struct{})}
	o.runs[projectID] = r
	o.mu.Unlock()

	snap := progress.Snapshot(projectID, chunks, progress.Running, time.Now())
	if err := o.d.Projects.UpdateProgress(ctx, projectID, snap.Status, snap.CompletedChunks, snap.TotalChunks); err != nil {
		o.mu.Lock()
		delete(o.runs, projectID)
		o.mu.Unlock()
		stop()
		return err
	}
	o.d.Publish.Publish(snap)

	go o.dispatch(dispatchCtx, projectID, r, p, opts)
	return nil
}

// dispatch walks the chunk list in order, handing each pending chunk to a
// worker once a pool slot frees up. It stops early when the run is flagged
// paused or cancelled, then waits for in-flight workers before finalizing.
func (o *Orchestrator) dispatch(ctx context.Context, projectID int64, r *run, p *domain.Project, opts RunOptions) {
	var wg sync.WaitGroup

	for _, c := range r.chunks {
		if c.Outcome.Terminal() {
			continue
		}
		if r.stopped() {
			break
		}
		if err := o.sem.Acquire(ctx, 1); err != nil {
			break
		}
		if r.stopped() {
			o.sem.Release(1)
			break
		}

		wg.Add(1)
		go func(c *domain.Chunk) {
			defer wg.Done()
			defer o.sem.Release(1)
			o.work(projectID, r, p, c, opts)
		}(c)
	}

	wg.Wait()
	o.finalize(projectID, r)
}

func (o *Orchestrator) work(projectID int64, r *run, p *domain.Project, c *domain.Chunk, opts RunOptions) {
	ctx := o.base
	if err := o.d.Chunks.UpdateOutcome(ctx, c.ID, domain.OutcomeInFlight, "", c.Attempts, ""); err != nil {
		o.d.Log.Error("mark chunk in flight", "chunk_id", c.ID, "err", err)
	}
	setOutcome(r, c, domain.OutcomeInFlight)

	res, err := o.d.Exec.Translate(ctx, executor.Task{
		Chunk:       c,
		SourceLang:  p.SourceLang,
		ProviderID:  opts.ProviderID,
		Model:       opts.Model,
		BypassCache: opts.BypassCache,
	})
	if err != nil {
		o.d.Log.Warn("chunk failed", "project_id", projectID, "seq", c.Seq,
			"lang", c.TargetLang, "attempts", res.Attempts, "err", err)
		if uerr := o.d.Chunks.UpdateOutcome(ctx, c.ID, domain.OutcomeFailed, "", res.Attempts, err.Error()); uerr != nil {
			o.d.Log.Error("persist chunk failure", "chunk_id", c.ID, "err", uerr)
		}
		setOutcome(r, c, domain.OutcomeFailed)
	} else {
		if uerr := o.d.Chunks.UpdateOutcome(ctx, c.ID, domain.OutcomeSuccess, res.Translation, res.Attempts, ""); uerr != nil {
			o.d.Log.Error("persist chunk result", "chunk_id", c.ID, "err", uerr)
		}
		setOutcome(r, c, domain.OutcomeSuccess)
	}

	// A cancelled run keeps its outcomes but stops moving the visible
	// progress: the next published snapshot is the terminal one. The run
	// lock is held across persist and publish so a worker that finished
	// earlier cannot overwrite a newer count in the project row or hand a
	// regressing snapshot to the feed.
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled {
		return
	}
	snap := progress.Snapshot(projectID, r.chunks, progress.Running, time.Now())
	if err := o.d.Projects.UpdateProgress(ctx, projectID, snap.Status, snap.CompletedChunks, snap.TotalChunks); err != nil {
		o.d.Log.Error("persist progress", "project_id", projectID, "err", err)
	}
	o.d.Publish.Publish(snap)
}

func setOutcome(r *run, c *domain.Chunk, out domain.Outcome) {
	r.mu.Lock()
	c.Outcome = out
	r.mu.Unlock()
}

func (o *Orchestrator) finalize(projectID int64, r *run) {
	r.mu.Lock()
	phase := progress.Idle
	if r.cancelled {
		phase = progress.Cancelled
	} else if r.paused {
		phase = progress.Paused
	}
	snap := progress.Snapshot(projectID, r.chunks, phase, time.Now())
	r.mu.Unlock()

	if err := o.d.Projects.UpdateProgress(o.base, projectID, snap.Status, snap.CompletedChunks, snap.TotalChunks); err != nil {
		o.d.Log.Error("persist final progress", "project_id", projectID, "err", err)
	}
	o.d.Publish.Publish(snap)

	o.mu.Lock()
	delete(o.runs, projectID)
	o.mu.Unlock()
	close(r.done)
	o.d.Log.Info("run finished", "project_id", projectID, "status", snap.Status)
}

// Pause stops dispatching new chunks; in-flight chunks finish and their
// outcomes are kept. Legal only while processing.
func (o *Orchestrator) Pause(ctx context.Context, projectID int64) error {
	o.mu.Lock()
	r := o.runs[projectID]
	o.mu.Unlock()
	if r == nil {
		p, err := o.d.Projects.Get(ctx, projectID)
		if err != nil {
			return err
		}
		return &ports.InvalidTransitionError{ProjectID: projectID, From: p.Status, Op: "pause"}
	}
	r.flag(false)
	return nil
}

// Cancel flags the run cancelled (in-flight chunks finish but the project
// lands on the terminal cancelled status), or, with no run active, moves a
// non-terminal project straight to cancelled.
func (o *Orchestrator) Cancel(ctx context.Context, projectID int64) error {
	o.mu.Lock()
	r := o.runs[projectID]
	o.mu.Unlock()
	if r != nil {
		r.flag(true)
		return nil
	}

	p, err := o.d.Projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if p.Status.Terminal() {
		return &ports.InvalidTransitionError{ProjectID: projectID, From: p.Status, Op: "cancel"}
	}
	chunks, err := o.d.Chunks.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}
	snap := progress.Snapshot(projectID, chunks, progress.Cancelled, time.Now())
	if err := o.d.Projects.UpdateProgress(ctx, projectID, snap.Status, snap.CompletedChunks, snap.TotalChunks); err != nil {
		return err
	}
	o.d.Publish.Publish(snap)
	return nil
}

// Wait blocks until the project's active run finishes, or returns
// immediately when none is running.
func (o *Orchestrator) Wait(ctx context.Context, projectID int64) error {
	o.mu.Lock()
	r := o.runs[projectID]
	o.mu.Unlock()
	if r == nil {
		return nil
	}
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether the project has an active run.
func (o *Orchestrator) Running(projectID int64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.runs[projectID] != nil
}
