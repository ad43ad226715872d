package app

import (
	"context"

	"github.com/alhaneef/text-weaver-pro/internal/usecase/exporter"
)

type ExportAPI struct {
	exporter *exporter.Service
}

func NewExportAPI(exp *exporter.Service) *ExportAPI { return &ExportAPI{exporter: exp} }

func (a *ExportAPI) Export(ctx context.Context, projectID int64, lang, format string) ([]byte, string, error) {
	return a.exporter.Export(ctx, projectID, lang, format)
}
