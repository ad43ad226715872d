package app

import (
	"context"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
	"github.com/alhaneef/text-weaver-pro/internal/ports"
	"github.com/alhaneef/text-weaver-pro/internal/usecase/importer"
)

type ProjectAPI struct {
	projects ports.ProjectRepository
	chunks   ports.ChunkRepository
	importer *importer.Service
}

func NewProjectAPI(projects ports.ProjectRepository, chunks ports.ChunkRepository, imp *importer.Service) *ProjectAPI {
	return &ProjectAPI{projects: projects, chunks: chunks, importer: imp}
}

// Create builds a project from uploaded files; see importer.Service.
func (a *ProjectAPI) Create(ctx context.Context, name string, files []importer.UploadedFile, method string) (*domain.Project, error) {
	return a.importer.CreateProject(ctx, name, files, method)
}

func (a *ProjectAPI) Get(ctx context.Context, id int64) (*domain.Project, error) {
	return a.projects.Get(ctx, id)
}

func (a *ProjectAPI) List(ctx context.Context) ([]*domain.Project, error) {
	return a.projects.List(ctx)
}

func (a *ProjectAPI) AddTargetLang(ctx context.Context, id int64, lang string) (*domain.Project, error) {
	if err := a.importer.AddTargetLang(ctx, id, lang); err != nil {
		return nil, err
	}
	return a.projects.Get(ctx, id)
}

// Chunks returns the live chunk rows for one target language, in sequence
// order, for the translation viewer.
func (a *ProjectAPI) Chunks(ctx context.Context, id int64, lang string) ([]*domain.Chunk, error) {
	if lang == "" {
		return a.chunks.ListByProject(ctx, id)
	}
	return a.chunks.ListByProjectLang(ctx, id, lang)
}

func (a *ProjectAPI) Files(ctx context.Context, id int64) ([]*domain.ProjectFile, error) {
	return a.projects.ListFiles(ctx, id)
}
