package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alhaneef/text-weaver-pro/internal/domain"
	"github.com/alhaneef/text-weaver-pro/internal/ports"
)

type stubTemplates struct {
	ports.TemplateRepository
	upserted  []*domain.Template
	effective *domain.Template
	lastScope string
}

func (s *stubTemplates) Upsert(_ context.Context, t *domain.Template) error {
	t.ID = 7
	s.upserted = append(s.upserted, t)
	return nil
}

func (s *stubTemplates) GetEffective(_ context.Context, scope string, refID *int64, typ, role string) (*domain.Template, error) {
	s.lastScope = scope
	return s.effective, nil
}

func TestSetTemplateGlobal(t *testing.T) {
	store := &stubTemplates{}
	api := NewSettingsAPI(nil, store)

	got, err := api.SetTemplate(context.Background(), "translate_chunk", "system", "Translate {{.Text}}", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "global", got.Scope)
	assert.Nil(t, got.RefID)
	require.Len(t, store.upserted, 1)
}

func TestSetTemplateProjectScope(t *testing.T) {
	store := &stubTemplates{}
	api := NewSettingsAPI(nil, store)
	pid := int64(4)

	got, err := api.SetTemplate(context.Background(), "extract_text", "user", "Content: {{.Text}}", &pid)
	require.NoError(t, err)
	assert.Equal(t, "project", got.Scope)
	require.NotNil(t, got.RefID)
	assert.Equal(t, int64(4), *got.RefID)
}

func TestSetTemplateRejectsUnknownKind(t *testing.T) {
	api := NewSettingsAPI(nil, &stubTemplates{})

	_, err := api.SetTemplate(context.Background(), "summarize", "system", "x", nil)
	require.Error(t, err)
	_, err = api.SetTemplate(context.Background(), "translate_chunk", "narrator", "x", nil)
	require.Error(t, err)
}

func TestSetTemplateRequiresBody(t *testing.T) {
	api := NewSettingsAPI(nil, &stubTemplates{})

	_, err := api.SetTemplate(context.Background(), "translate_chunk", "system", "   ", nil)
	require.Error(t, err)
}

func TestTemplateResolvesProjectScope(t *testing.T) {
	store := &stubTemplates{effective: &domain.Template{ID: 3, Scope: "project", Body: "custom"}}
	api := NewSettingsAPI(nil, store)
	pid := int64(9)

	got, err := api.Template(context.Background(), "translate_chunk", "system", &pid)
	require.NoError(t, err)
	assert.Equal(t, "custom", got.Body)
	assert.Equal(t, "project", store.lastScope)

	_, err = api.Template(context.Background(), "nonsense", "system", nil)
	require.Error(t, err)
}
