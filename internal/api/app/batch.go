package app

import (
	"context"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
	"github.com/alhaneef/text-weaver-pro/internal/usecase/batch"
	"github.com/alhaneef/text-weaver-pro/internal/usecase/orchestrator"
)

type BatchAPI struct {
	coord    *batch.Coordinator
	provider *ProviderAPI
}

func NewBatchAPI(coord *batch.Coordinator, provider *ProviderAPI) *BatchAPI {
	return &BatchAPI{coord: coord, provider: provider}
}

// Apply runs one lifecycle action across many projects and reports the
// per-project outcomes.
func (a *BatchAPI) Apply(ctx context.Context, action domain.BatchAction, projectIDs []int64, providerID int64, model string) (*domain.BatchOperation, error) {
	if providerID == 0 {
		active, err := a.provider.Active(ctx)
		if err != nil {
			return nil, err
		}
		providerID = active
	}
	return a.coord.Apply(ctx, action, projectIDs, orchestrator.RunOptions{ProviderID: providerID, Model: model})
}
