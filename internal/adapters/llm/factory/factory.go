package factory

import (
	"strings"

	httpcap "github.com/alhaneef/text-weaver-pro/internal/adapters/llm/httpclient"
	"github.com/alhaneef/text-weaver-pro/internal/domain"
	"github.com/alhaneef/text-weaver-pro/internal/ports"
)

// FromProvider returns an HTTP-backed capability for the given record.
func FromProvider(p *domain.Provider) (ports.Capability, bool) {
	switch strings.ToLower(p.Type) {
	case "ollama", "openrouter", "openai":
		return httpcap.New(p.Type, p.APIKey, p.BaseURL, p.Model), true
	default:
		return nil, false
	}
}
