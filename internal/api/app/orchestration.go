package app

import (
	"context"
	"time"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
	"github.com/alhaneef/text-weaver-pro/internal/ports"
	"github.com/alhaneef/text-weaver-pro/internal/usecase/feed"
	"github.com/alhaneef/text-weaver-pro/internal/usecase/orchestrator"
	"github.com/alhaneef/text-weaver-pro/internal/usecase/progress"
)

type OrchestrationAPI struct {
	orch     *orchestrator.Orchestrator
	projects ports.ProjectRepository
	chunks   ports.ChunkRepository
	feed     *feed.Feed
	provider *ProviderAPI
}

func NewOrchestrationAPI(orch *orchestrator.Orchestrator, projects ports.ProjectRepository, chunks ports.ChunkRepository, fd *feed.Feed, provider *ProviderAPI) *OrchestrationAPI {
	return &OrchestrationAPI{orch: orch, projects: projects, chunks: chunks, feed: fd, provider: provider}
}

// runOptions fills in the active provider when the request names none.
func (a *OrchestrationAPI) runOptions(ctx context.Context, providerID int64, model string) (orchestrator.RunOptions, error) {
	if providerID == 0 {
		active, err := a.provider.Active(ctx)
		if err != nil {
			return orchestrator.RunOptions{}, err
		}
		providerID = active
	}
	return orchestrator.RunOptions{ProviderID: providerID, Model: model}, nil
}

func (a *OrchestrationAPI) Start(ctx context.Context, projectID, providerID int64, model string) error {
	opts, err := a.runOptions(ctx, providerID, model)
	if err != nil {
		return err
	}
	return a.orch.Start(ctx, projectID, opts)
}

func (a *OrchestrationAPI) Pause(ctx context.Context, projectID int64) error {
	return a.orch.Pause(ctx, projectID)
}

func (a *OrchestrationAPI) Cancel(ctx context.Context, projectID int64) error {
	return a.orch.Cancel(ctx, projectID)
}

func (a *OrchestrationAPI) RetryFailed(ctx context.Context, projectID, providerID int64, model string) error {
	opts, err := a.runOptions(ctx, providerID, model)
	if err != nil {
		return err
	}
	return a.orch.RetryFailed(ctx, projectID, opts)
}

// Progress derives a fresh snapshot from the chunk rows, regardless of what
// the projects table says.
func (a *OrchestrationAPI) Progress(ctx context.Context, projectID int64) (domain.ProgressSnapshot, error) {
	p, err := a.projects.Get(ctx, projectID)
	if err != nil {
		return domain.ProgressSnapshot{}, err
	}
	chunks, err := a.chunks.ListByProject(ctx, projectID)
	if err != nil {
		return domain.ProgressSnapshot{}, err
	}

	phase := progress.Idle
	switch {
	case a.orch.Running(projectID):
		phase = progress.Running
	case p.Status == domain.StatusCancelled:
		phase = progress.Cancelled
	}
	snap := progress.Snapshot(projectID, chunks, phase, time.Now())
	// Chunking failures are recorded on the project row only.
	if p.Status == domain.StatusError {
		snap.Status = domain.StatusError
	}
	if p.Status == domain.StatusDraft && snap.Status == domain.StatusReady {
		snap.Status = domain.StatusDraft
	}
	return snap, nil
}

// Subscribe attaches to the project's live progress feed.
func (a *OrchestrationAPI) Subscribe(projectID int64) *feed.Subscription {
	return a.feed.Subscribe(projectID)
}
