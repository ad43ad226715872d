package textextract

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"github.com/alhaneef/text-weaver-pro/internal/ports"
)

// Extractor handles plain text: BOM strip, newline normalization, UTF-8 check.
type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) Format() string { return "txt" }

func (e *Extractor) Extract(_ context.Context, data []byte) (string, error) {
	data = stripBOM(data)
	if !utf8.Valid(data) {
		return "", &ports.ChunkingError{Reason: "content is not valid UTF-8"}
	}
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s, nil
}

func stripBOM(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if len(b) >= 3 && bytes.Equal(b[:3], bom) {
		return b[3:]
	}
	return b
}
