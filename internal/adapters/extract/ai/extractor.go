package aiextract

import (
	"context"
	"strings"

	"github.com/alhaneef/text-weaver-pro/internal/ports"
)

// Refiner implements the "ai" extraction method: the traditionally extracted
// text is passed through the translation capability once to strip residual
// markup and boilerplate. Failures fall back to the unrefined text.
type Refiner struct {
	Prompt ports.PromptRenderer
}

func New(prompt ports.PromptRenderer) *Refiner { return &Refiner{Prompt: prompt} }

func (r *Refiner) Refine(ctx context.Context, backend ports.Capability, model, fileType, text string) (string, error) {
	data := ports.PromptData{Text: text, FileType: fileType}
	system, err := r.Prompt.Render(ctx, "global", nil, "extract_text", "system", data)
	if err != nil {
		return "", err
	}
	user, err := r.Prompt.Render(ctx, "global", nil, "extract_text", "user", data)
	if err != nil {
		return "", err
	}
	res, err := backend.Translate(ctx, ports.TranslateRequest{
		Text:         text,
		Model:        model,
		SystemPrompt: system,
		UserPrompt:   user,
	})
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(res.Translation)
	if out == "" {
		return text, nil
	}
	return out, nil
}
