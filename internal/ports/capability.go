package ports

import "context"

type TranslateRequest struct {
	Text         string
	SourceLang   string
	TargetLang   string
	Model        string
	Temperature  float64
	SystemPrompt string
	UserPrompt   string
}

type TranslateResult struct {
	Translation string
	Raw         string
}

type ModelInfo struct {
	Name          string
	Description   string
	ContextTokens int
}

// Capability is the opaque translation backend invoked once per chunk.
// Implementations map transport failures into the error taxonomy of
// errors.go (ErrTimeout, ErrRateLimited, *CapabilityError).
type Capability interface {
	Translate(ctx context.Context, req TranslateRequest) (TranslateResult, error)
	ListModels(ctx context.Context) ([]ModelInfo, error)
	Test(ctx context.Context) error
}
