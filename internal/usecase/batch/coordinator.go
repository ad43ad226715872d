package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
	"github.com/alhaneef/text-weaver-pro/internal/ports"
	"github.com/alhaneef/text-weaver-pro/internal/usecase/orchestrator"
)

// Lifecycle is the per-project control surface the coordinator fans out to.
type Lifecycle interface {
	Start(ctx context.Context, projectID int64, opts orchestrator.RunOptions) error
	Pause(ctx context.Context, projectID int64) error
	Cancel(ctx context.Context, projectID int64) error
	RetryFailed(ctx context.Context, projectID int64, opts orchestrator.RunOptions) error
	Wait(ctx context.Context, projectID int64) error
}

type Deps struct {
	Projects ports.ProjectRepository
	Control  Lifecycle
	Feed     interface{ Drop(projectID int64) }
	Log      *slog.Logger
}

type Config struct {
	// Concurrency caps how many projects one batch touches at a time.
	Concurrency int
}

// Coordinator applies one lifecycle action to many projects. Projects are
// independent: each gets its own outcome and a failure on one never stops
// or reverts the others.
type Coordinator struct {
	d   Deps
	cfg Config
}

func New(d Deps, cfg Config) *Coordinator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return &Coordinator{d: d, cfg: cfg}
}

// Apply runs the action against every listed project and reports per-project
// outcomes. Duplicate ids collapse to one application.
func (c *Coordinator) Apply(ctx context.Context, action domain.BatchAction, projectIDs []int64, opts orchestrator.RunOptions) (*domain.BatchOperation, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("unknown batch action %q", action)
	}
	ids := dedupe(projectIDs)
	if len(ids) == 0 {
		return nil, fmt.Errorf("batch %s: no projects given", action)
	}

	op := &domain.BatchOperation{
		ID:         uuid.NewString(),
		Action:     action,
		ProjectIDs: ids,
		Outcomes:   make(map[int64]domain.BatchOutcome, len(ids)),
		Status:     domain.BatchRunning,
		StartedAt:  time.Now(),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			err := c.apply(gctx, action, id, opts)
			out := domain.BatchOutcome{ProjectID: id, OK: err == nil}
			if err != nil {
				out.Error = err.Error()
				c.d.Log.Warn("batch action failed for project",
					"batch_id", op.ID, "action", action, "project_id", id, "err", err)
			}
			mu.Lock()
			op.Outcomes[id] = out
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	op.Status = domain.BatchCompleted
	for _, out := range op.Outcomes {
		if !out.OK {
			op.Status = domain.BatchPartiallyFailed
			break
		}
	}
	op.FinishedAt = time.Now()
	c.d.Log.Info("batch finished", "batch_id", op.ID, "action", action,
		"projects", len(ids), "status", op.Status)
	return op, nil
}

func (c *Coordinator) apply(ctx context.Context, action domain.BatchAction, id int64, opts orchestrator.RunOptions) error {
	switch action {
	case domain.BatchStart:
		return c.d.Control.Start(ctx, id, opts)
	case domain.BatchPause:
		return c.d.Control.Pause(ctx, id)
	case domain.BatchCancel:
		return c.d.Control.Cancel(ctx, id)
	case domain.BatchRetryFailed:
		return c.d.Control.RetryFailed(ctx, id, opts)
	case domain.BatchDelete:
		return c.delete(ctx, id)
	}
	return fmt.Errorf("unknown batch action %q", action)
}

// delete cancels any active run, waits it out, then removes the project.
// Chunks and files go with it via the schema's cascade.
func (c *Coordinator) delete(ctx context.Context, id int64) error {
	if err := c.d.Control.Cancel(ctx, id); err != nil {
		// A terminal project cannot be cancelled but can be deleted.
		var tErr *ports.InvalidTransitionError
		if !errors.As(err, &tErr) {
			return err
		}
	}
	if err := c.d.Control.Wait(ctx, id); err != nil {
		return err
	}
	if err := c.d.Projects.Delete(ctx, id); err != nil {
		return err
	}
	if c.d.Feed != nil {
		c.d.Feed.Drop(id)
	}
	return nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
