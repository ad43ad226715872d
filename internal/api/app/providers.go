package app

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/alhaneef/text-weaver-pro/internal/adapters/llm/factory"
	"github.com/alhaneef/text-weaver-pro/internal/adapters/llm/registry"
	"github.com/alhaneef/text-weaver-pro/internal/domain"
	"github.com/alhaneef/text-weaver-pro/internal/ports"
)

type ProviderAPI struct {
	repo     ports.ProviderRepository
	settings ports.SettingsRepository
}

func NewProviderAPI(repo ports.ProviderRepository, settings ports.SettingsRepository) *ProviderAPI {
	return &ProviderAPI{repo: repo, settings: settings}
}

func (a *ProviderAPI) Create(ctx context.Context, p domain.Provider) (*domain.Provider, error) {
	if p.Type == "" || p.Name == "" {
		return nil, errors.New("type and name are required")
	}
	_ = a.normalizeModel(ctx, &p)
	if err := a.repo.Create(ctx, &p); err != nil {
		return nil, err
	}
	p.APIKey = mask(p.APIKey)
	return &p, nil
}

func (a *ProviderAPI) Update(ctx context.Context, p domain.Provider) (*domain.Provider, error) {
	if p.ID == 0 {
		return nil, errors.New("id is required")
	}
	// Keep the stored key when the client sends back the masked one.
	if strings.HasPrefix(p.APIKey, "****") || p.APIKey == "" {
		existing, err := a.repo.Get(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, errors.New("provider not found")
		}
		p.APIKey = existing.APIKey
	}
	_ = a.normalizeModel(ctx, &p)
	if err := a.repo.Update(ctx, &p); err != nil {
		return nil, err
	}
	p.APIKey = mask(p.APIKey)
	return &p, nil
}

func (a *ProviderAPI) List(ctx context.Context) ([]*domain.Provider, error) {
	list, err := a.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		p.APIKey = mask(p.APIKey)
	}
	return list, nil
}

func (a *ProviderAPI) Delete(ctx context.Context, id int64) error {
	return a.repo.Delete(ctx, id)
}

func (a *ProviderAPI) ListModels(ctx context.Context, id int64) ([]ports.ModelInfo, error) {
	p, err := a.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.New("provider not found")
	}
	backend, ok := factory.FromProvider(p)
	if !ok {
		return nil, errors.New("unsupported provider type")
	}
	models, err := backend.ListModels(ctx)
	if err != nil {
		// The last fetched list still serves when the backend is down.
		cached, cerr := a.repo.ListModelCache(ctx, id)
		if cerr != nil || len(cached) == 0 {
			return nil, err
		}
		out := make([]ports.ModelInfo, 0, len(cached))
		for _, m := range cached {
			out = append(out, ports.ModelInfo{Name: m.Name})
		}
		return out, nil
	}
	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.Name)
	}
	// Best effort: a stale cache is still useful when the backend is down.
	_ = a.repo.SaveModelCache(ctx, id, names)
	return models, nil
}

// ListModelsPreview queries models for a configuration that has not been
// saved yet.
func (a *ProviderAPI) ListModelsPreview(ctx context.Context, p domain.Provider) ([]ports.ModelInfo, error) {
	backend, ok := factory.FromProvider(&p)
	if !ok {
		return nil, errors.New("unsupported provider type")
	}
	return backend.ListModels(ctx)
}

// TestResult carries the outcome of a live provider check.
type TestResult struct {
	Ok          bool   `json:"ok"`
	Translation string `json:"translation,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Test runs one tiny translation through the provider to verify
// connectivity, credentials, and model choice.
func (a *ProviderAPI) Test(ctx context.Context, id int64) (TestResult, error) {
	p, err := a.repo.Get(ctx, id)
	if err != nil {
		return TestResult{}, err
	}
	if p == nil {
		return TestResult{}, errors.New("provider not found")
	}
	backend, ok := factory.FromProvider(p)
	if !ok {
		return TestResult{}, errors.New("unsupported provider type")
	}
	res, trErr := backend.Translate(ctx, ports.TranslateRequest{
		Text:         "hello",
		SourceLang:   "en",
		TargetLang:   "es",
		Model:        p.Model,
		SystemPrompt: `You are a professional translator. Return only JSON: {"translation":"..."}.`,
		UserPrompt:   "Text: hello",
	})
	if trErr != nil {
		return TestResult{Ok: false, Error: trErr.Error()}, nil
	}
	return TestResult{Ok: true, Translation: res.Translation}, nil
}

// ProviderHealth is one row of the all-providers connectivity check.
type ProviderHealth struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Ok    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Health checks connectivity of every configured provider in one pass.
func (a *ProviderAPI) Health(ctx context.Context) ([]ProviderHealth, error) {
	list, err := a.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	reg := registry.New()
	for _, p := range list {
		if backend, ok := factory.FromProvider(p); ok {
			reg.Register(strconv.FormatInt(p.ID, 10), backend)
		}
	}
	checks := reg.HealthCheck(ctx)

	out := make([]ProviderHealth, 0, len(list))
	for _, p := range list {
		h := ProviderHealth{ID: p.ID, Name: p.Name}
		key := strconv.FormatInt(p.ID, 10)
		if _, ok := reg.Get(key); !ok {
			h.Error = "unsupported provider type"
		} else if cerr := checks[key]; cerr != nil {
			h.Error = cerr.Error()
		} else {
			h.Ok = true
		}
		out = append(out, h)
	}
	return out, nil
}

// SetActive marks the provider used for new runs and AI extraction.
func (a *ProviderAPI) SetActive(ctx context.Context, id int64) error {
	p, err := a.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return errors.New("provider not found")
	}
	return a.settings.Set(ctx, domain.SettingActiveProvider, strconv.FormatInt(id, 10))
}

// Active returns the active provider id, or 0 when none is set.
func (a *ProviderAPI) Active(ctx context.Context) (int64, error) {
	raw, err := a.settings.Get(ctx, domain.SettingActiveProvider)
	if err != nil || raw == "" {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

// normalizeModel converts human-readable model labels to canonical ids for
// providers that expose both. Best effort, in place.
func (a *ProviderAPI) normalizeModel(ctx context.Context, p *domain.Provider) error {
	if p == nil || !strings.EqualFold(p.Type, "openrouter") {
		return nil
	}
	m := strings.TrimSpace(p.Model)
	if m == "" {
		return nil
	}
	// Labels tend to contain spaces or parentheses; ids rarely do.
	if !strings.ContainsAny(m, " ()") {
		return nil
	}
	backend, ok := factory.FromProvider(p)
	if !ok {
		return nil
	}
	models, err := backend.ListModels(ctx)
	if err != nil {
		return err
	}
	for _, mi := range models {
		if strings.EqualFold(mi.Name, m) || strings.EqualFold(mi.Description, m) {
			p.Model = mi.Name
			return nil
		}
	}
	return nil
}

func mask(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
