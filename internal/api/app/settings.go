package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
	"github.com/alhaneef/text-weaver-pro/internal/ports"
	"github.com/alhaneef/text-weaver-pro/internal/usecase/importer"
)

type SettingsAPI struct {
	repo      ports.SettingsRepository
	templates ports.TemplateRepository
}

func NewSettingsAPI(repo ports.SettingsRepository, templates ports.TemplateRepository) *SettingsAPI {
	return &SettingsAPI{repo: repo, templates: templates}
}

func (a *SettingsAPI) Get(ctx context.Context, key string) (string, error) {
	return a.repo.Get(ctx, key)
}

func (a *SettingsAPI) Set(ctx context.Context, key, value string) error {
	if key == domain.SettingExtractionMethod {
		if value != importer.MethodTraditional && value != importer.MethodAI {
			return fmt.Errorf("unknown extraction method %q", value)
		}
	}
	return a.repo.Set(ctx, key, value)
}

var templateRoles = map[string]bool{"system": true, "user": true}
var templateTypes = map[string]bool{"translate_chunk": true, "extract_text": true}

// Template resolves the effective prompt template for a type and role,
// falling back from the project scope to global. A nil result means the
// builtin is in effect.
func (a *SettingsAPI) Template(ctx context.Context, typ, role string, projectID *int64) (*domain.Template, error) {
	if !templateTypes[typ] || !templateRoles[role] {
		return nil, fmt.Errorf("unknown template %s/%s", typ, role)
	}
	scope := "global"
	if projectID != nil {
		scope = "project"
	}
	return a.templates.GetEffective(ctx, scope, projectID, typ, role)
}

// SetTemplate stores a prompt template override, globally or for one
// project.
func (a *SettingsAPI) SetTemplate(ctx context.Context, typ, role, body string, projectID *int64) (*domain.Template, error) {
	if !templateTypes[typ] || !templateRoles[role] {
		return nil, fmt.Errorf("unknown template %s/%s", typ, role)
	}
	if strings.TrimSpace(body) == "" {
		return nil, errors.New("template body is required")
	}
	t := domain.Template{Scope: "global", Type: typ, Role: role, Body: body}
	if projectID != nil {
		t.Scope = "project"
		t.RefID = projectID
	}
	if err := a.templates.Upsert(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}
