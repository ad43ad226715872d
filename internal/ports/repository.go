package ports

import (
	"context"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
)

type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	Get(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	// UpdateProgress persists the derived status/progress columns. Status is
	// always recomputed by the aggregator before this is called.
	UpdateProgress(ctx context.Context, id int64, status domain.Status, completed, total int) error
	Delete(ctx context.Context, id int64) error
	AddTargetLang(ctx context.Context, projectID int64, lang string) error
	ListTargetLangs(ctx context.Context, projectID int64) ([]string, error)
	AddFile(ctx context.Context, f *domain.ProjectFile) error
	ListFiles(ctx context.Context, projectID int64) ([]*domain.ProjectFile, error)
}

type ChunkRepository interface {
	CreateBatch(ctx context.Context, chunks []*domain.Chunk) error
	Get(ctx context.Context, id int64) (*domain.Chunk, error)
	// ListByProject returns chunks ordered by (target_lang, seq).
	ListByProject(ctx context.Context, projectID int64) ([]*domain.Chunk, error)
	ListByProjectLang(ctx context.Context, projectID int64, lang string) ([]*domain.Chunk, error)
	UpdateOutcome(ctx context.Context, id int64, outcome domain.Outcome, translated string, attempts int, lastError string) error
	// ResetFailed returns failed chunks of the project to pending with zero
	// attempts; the prior last_error is retained for diagnostics.
	ResetFailed(ctx context.Context, projectID int64) (int64, error)
	CountByProject(ctx context.Context, projectID int64) (int, error)
}

type ProviderRepository interface {
	Create(ctx context.Context, p *domain.Provider) error
	Update(ctx context.Context, p *domain.Provider) error
	Get(ctx context.Context, id int64) (*domain.Provider, error)
	List(ctx context.Context) ([]*domain.Provider, error)
	Delete(ctx context.Context, id int64) error
	SaveModelCache(ctx context.Context, providerID int64, names []string) error
	ListModelCache(ctx context.Context, providerID int64) ([]*domain.ProviderModel, error)
}

type TemplateRepository interface {
	GetEffective(ctx context.Context, scope string, refID *int64, typ, role string) (*domain.Template, error)
	Upsert(ctx context.Context, t *domain.Template) error
}

type CacheRepository interface {
	Get(ctx context.Context, src, srcLang, tgtLang, provider, model string) (*domain.CacheEntry, error)
	Put(ctx context.Context, entry *domain.CacheEntry) error
}

type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
