package prompt

import (
	"bytes"
	"context"
	"text/template"

	"github.com/alhaneef/text-weaver-pro/internal/ports"
)

type Renderer struct {
	Templates ports.TemplateRepository
}

func New(templates ports.TemplateRepository) *Renderer { return &Renderer{Templates: templates} }

func (r *Renderer) Render(ctx context.Context, scope string, refID *int64, typ, role string, data ports.PromptData) (string, error) {
	// Load effective template from repository; if none, fall back to builtins.
	t, _ := r.Templates.GetEffective(ctx, scope, refID, typ, role)
	body := builtinTemplate(typ, role)
	if t != nil && t.Body != "" {
		body = t.Body
	}
	tpl, err := template.New("prompt").Parse(body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func builtinTemplate(typ, role string) string {
	switch {
	case typ == "translate_chunk" && role == "system":
		return "You are a professional document translator. Translate the given passage from {{.SrcLang}} to {{.TgtLang}}. Preserve paragraph breaks, numbers, and proper nouns. Do not summarize or omit content. Return only JSON: {\"translation\":\"...\"}."
	case typ == "translate_chunk" && role == "user":
		return "Passage:\n{{.Text}}"
	case typ == "extract_text" && role == "system":
		return "You extract clean readable text from raw document content. Remove markup, boilerplate, and repeated headers; keep the original wording and paragraph structure. Return only JSON: {\"translation\":\"...\"} where the value is the extracted text."
	case typ == "extract_text" && role == "user":
		return "Content ({{.FileType}}):\n{{.Text}}"
	}
	return ""
}
