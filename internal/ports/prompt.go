package ports

import "context"

type PromptData struct {
	SrcLang  string
	TgtLang  string
	Text     string
	Project  string
	FileType string
}

type PromptRenderer interface {
	Render(ctx context.Context, scope string, refID *int64, typ, role string, data PromptData) (string, error)
}
