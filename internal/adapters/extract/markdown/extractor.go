package mdextract

import (
	"context"
	"regexp"
	"strings"

	textextract "github.com/alhaneef/text-weaver-pro/internal/adapters/extract/text"
)

var (
	headingRE   = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	linkRE      = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	imageRE     = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	emphasisRE  = regexp.MustCompile(`(\*{1,3}|_{1,3})([^*_]+)(\*{1,3}|_{1,3})`)
	codeFenceRE = regexp.MustCompile("(?s)```[a-zA-Z]*\n(.*?)```")
	inlineRE    = regexp.MustCompile("`([^`]*)`")
)

// Extractor strips markdown syntax down to translatable prose.
type Extractor struct {
	plain *textextract.Extractor
}

func New() *Extractor { return &Extractor{plain: textextract.New()} }

func (e *Extractor) Format() string { return "md" }

func (e *Extractor) Extract(ctx context.Context, data []byte) (string, error) {
	s, err := e.plain.Extract(ctx, data)
	if err != nil {
		return "", err
	}
	s = codeFenceRE.ReplaceAllString(s, "$1")
	s = imageRE.ReplaceAllString(s, "$1")
	s = linkRE.ReplaceAllString(s, "$1")
	s = headingRE.ReplaceAllString(s, "")
	s = emphasisRE.ReplaceAllString(s, "$2")
	s = inlineRE.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s), nil
}
