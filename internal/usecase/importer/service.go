package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/alhaneef/text-weaver-pro/internal/adapters/extract/registry"
	"github.com/alhaneef/text-weaver-pro/internal/domain"
	"github.com/alhaneef/text-weaver-pro/internal/ports"
	"github.com/alhaneef/text-weaver-pro/internal/usecase/chunker"
)

const (
	MethodTraditional = "traditional"
	MethodAI          = "ai"

	multiFileName = "Multi-File Project"
)

// Refiner is the optional AI pass over extracted text.
type Refiner interface {
	Refine(ctx context.Context, backend ports.Capability, model, fileType, text string) (string, error)
}

type UploadedFile struct {
	Name string
	Data []byte
}

type Deps struct {
	Projects  ports.ProjectRepository
	Chunks    ports.ChunkRepository
	Providers ports.ProviderRepository
	Settings  ports.SettingsRepository
	Extract   *registry.Registry
	Refine    Refiner
	// BuildCapability supplies the backend for the AI extraction method.
	BuildCapability func(*domain.Provider) (ports.Capability, error)
	Log             *slog.Logger
}

type Config struct {
	ChunkTokenBudget int
	ChunkSlack       float64
}

// Service turns uploads into projects and target languages into chunk sets.
type Service struct {
	d   Deps
	cfg Config
}

func New(d Deps, cfg Config) *Service {
	if cfg.ChunkTokenBudget <= 0 {
		cfg.ChunkTokenBudget = 1000
	}
	if cfg.ChunkSlack <= 0 {
		cfg.ChunkSlack = 0.2
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return &Service{d: d, cfg: cfg}
}

// CreateProject extracts every uploaded file, optionally refines the text
// through the AI method, and persists the project in draft with its files.
// A file whose content cannot be normalized lands the project on the
// terminal error status.
func (s *Service) CreateProject(ctx context.Context, name string, files []UploadedFile, method string) (*domain.Project, error) {
	if len(files) == 0 {
		return nil, errors.New("at least one file is required")
	}
	if method == "" {
		method, _ = s.d.Settings.Get(ctx, domain.SettingExtractionMethod)
	}
	if method == "" {
		method = MethodTraditional
	}

	p := &domain.Project{
		Name:       resolveName(name, files),
		SourceLang: "auto",
		FileType:   projectFileType(files),
		Status:     domain.StatusDraft,
	}
	if err := s.d.Projects.Create(ctx, p); err != nil {
		return nil, err
	}

	var chunkErr *ports.ChunkingError
	for _, f := range files {
		format := detectFormat(f.Name, f.Data)
		ext, ok := s.d.Extract.Get(format)
		if !ok {
			return nil, fmt.Errorf("no extractor for format %q", format)
		}
		text, err := ext.Extract(ctx, f.Data)
		if err != nil {
			if errors.As(err, &chunkErr) {
				s.fail(ctx, p)
				return p, err
			}
			return nil, err
		}
		if method == MethodAI {
			text = s.refine(ctx, format, text)
		}
		if err := s.d.Projects.AddFile(ctx, &domain.ProjectFile{
			ProjectID:    p.ID,
			Name:         f.Name,
			Size:         int64(len(f.Data)),
			Content:      text,
			DetectedType: format,
			UploadedAt:   time.Now(),
		}); err != nil {
			return nil, err
		}
	}

	s.d.Log.Info("project created", "project_id", p.ID, "name", p.Name,
		"files", len(files), "method", method)
	return p, nil
}

// AddTargetLang chunks the project's combined content for one language and
// inserts the pending chunk rows. The first successful language moves the
// project from draft to ready; a chunking failure is terminal.
func (s *Service) AddTargetLang(ctx context.Context, projectID int64, lang string) error {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return errors.New("target language is required")
	}

	p, err := s.d.Projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if p.Status != domain.StatusDraft && p.Status != domain.StatusReady {
		return &ports.InvalidTransitionError{ProjectID: projectID, From: p.Status, Op: "add language to"}
	}
	for _, l := range p.TargetLangs {
		if l == lang {
			return fmt.Errorf("language %q already added", lang)
		}
	}

	content, err := s.combinedContent(ctx, projectID)
	if err != nil {
		return err
	}

	segs, err := chunker.Split(content, chunker.Policy{
		TokenBudget: s.cfg.ChunkTokenBudget,
		Slack:       s.cfg.ChunkSlack,
		FileType:    p.FileType,
	})
	if err != nil {
		var chunkErr *ports.ChunkingError
		if errors.As(err, &chunkErr) {
			s.fail(ctx, p)
		}
		return err
	}

	chunks := make([]*domain.Chunk, 0, len(segs))
	for _, sp := range segs {
		chunks = append(chunks, &domain.Chunk{
			ProjectID:  projectID,
			Seq:        sp.Seq,
			TargetLang: lang,
			SourceText: sp.Text,
			Outcome:    domain.OutcomePending,
		})
	}
	if err := s.d.Chunks.CreateBatch(ctx, chunks); err != nil {
		return err
	}
	if err := s.d.Projects.AddTargetLang(ctx, projectID, lang); err != nil {
		return err
	}

	total, err := s.d.Chunks.CountByProject(ctx, projectID)
	if err != nil {
		return err
	}
	if err := s.d.Projects.UpdateProgress(ctx, projectID, domain.StatusReady, p.CompletedChunks, total); err != nil {
		return err
	}
	s.d.Log.Info("target language added", "project_id", projectID, "lang", lang, "chunks", len(chunks))
	return nil
}

// combinedContent joins the stored per-file extracted texts in upload order.
func (s *Service) combinedContent(ctx context.Context, projectID int64) (string, error) {
	files, err := s.d.Projects.ListFiles(ctx, projectID)
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(files))
	for _, f := range files {
		parts = append(parts, f.Content)
	}
	return strings.Join(parts, "\n\n"), nil
}

func (s *Service) fail(ctx context.Context, p *domain.Project) {
	if err := s.d.Projects.UpdateProgress(ctx, p.ID, domain.StatusError, p.CompletedChunks, p.TotalChunks); err != nil {
		s.d.Log.Error("mark project failed", "project_id", p.ID, "err", err)
	}
}

// refine runs the AI extraction pass with the active provider; on any
// problem the traditionally extracted text is kept.
func (s *Service) refine(ctx context.Context, format, text string) string {
	if s.d.Refine == nil || s.d.BuildCapability == nil {
		return text
	}
	raw, err := s.d.Settings.Get(ctx, domain.SettingActiveProvider)
	if err != nil || raw == "" {
		s.d.Log.Warn("ai extraction requested with no active provider")
		return text
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return text
	}
	prov, err := s.d.Providers.Get(ctx, id)
	if err != nil || prov == nil {
		s.d.Log.Warn("ai extraction provider unavailable", "provider_id", id, "err", err)
		return text
	}
	backend, err := s.d.BuildCapability(prov)
	if err != nil {
		return text
	}
	refined, err := s.d.Refine.Refine(ctx, backend, prov.Model, format, text)
	if err != nil {
		s.d.Log.Warn("ai extraction failed, keeping raw text", "err", err)
		return text
	}
	return refined
}

func resolveName(name string, files []UploadedFile) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if len(files) == 1 {
		base := filepath.Base(files[0].Name)
		if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" {
			return stem
		}
		return base
	}
	return multiFileName
}

// detectFormat prefers the file extension and falls back to content
// sniffing for extensionless uploads.
func detectFormat(name string, data []byte) string {
	switch strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".") {
	case "md", "markdown":
		return "md"
	case "csv":
		return "csv"
	case "txt", "text", "log":
		return "txt"
	}
	mt := mimetype.Detect(data)
	switch {
	case mt.Is("text/csv"):
		return "csv"
	case mt.Is("text/markdown"):
		return "md"
	default:
		return "txt"
	}
}

func projectFileType(files []UploadedFile) string {
	first := detectFormat(files[0].Name, files[0].Data)
	for _, f := range files[1:] {
		if detectFormat(f.Name, f.Data) != first {
			return "mixed"
		}
	}
	return first
}
