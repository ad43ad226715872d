package exporter

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alhaneef/text-weaver-pro/internal/adapters/export/registry"
	"github.com/alhaneef/text-weaver-pro/internal/ports"
)

type Deps struct {
	Projects ports.ProjectRepository
	Chunks   ports.ChunkRepository
	Formats  *registry.Registry
}

// Service reassembles a project's translation for one target language and
// renders it in a requested format.
type Service struct {
	d Deps
}

func New(d Deps) *Service { return &Service{d: d} }

// Export returns the rendered document and a suggested file name. Chunks
// without a translation fall back to their source text, so a partial
// project still exports a complete document.
func (s *Service) Export(ctx context.Context, projectID int64, lang, format string) ([]byte, string, error) {
	exp, ok := s.d.Formats.Get(format)
	if !ok {
		return nil, "", fmt.Errorf("unsupported export format %q", format)
	}

	p, err := s.d.Projects.Get(ctx, projectID)
	if err != nil {
		return nil, "", err
	}
	chunks, err := s.d.Chunks.ListByProjectLang(ctx, projectID, lang)
	if err != nil {
		return nil, "", err
	}
	if len(chunks) == 0 {
		return nil, "", fmt.Errorf("project %d has no chunks for language %q", projectID, lang)
	}

	items := make([]ports.ExportItem, 0, len(chunks))
	for _, c := range chunks {
		items = append(items, ports.ExportItem{
			Seq:         c.Seq,
			SourceText:  c.SourceText,
			Translation: c.TranslatedText,
		})
	}

	data, err := exp.Export(lang, items)
	if err != nil {
		return nil, "", err
	}
	return data, exportFileName(p.Name, lang, format), nil
}

func exportFileName(project, lang, format string) string {
	stem := strings.TrimSuffix(project, filepath.Ext(project))
	stem = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, stem)
	if stem == "" {
		stem = "translation"
	}
	return fmt.Sprintf("%s_%s.%s", stem, lang, format)
}
