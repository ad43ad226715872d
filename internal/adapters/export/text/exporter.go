package textexport

import (
	"sort"
	"strings"

	"github.com/alhaneef/text-weaver-pro/internal/ports"
)

// Exporter reassembles the translated document: chunk translations joined in
// sequence order. Untranslated chunks fall back to their source text so the
// output never has holes.
type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "txt" }

func (e *Exporter) Export(_ string, items []ports.ExportItem) ([]byte, error) {
	sorted := make([]ports.ExportItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })
	parts := make([]string, 0, len(sorted))
	for _, it := range sorted {
		text := it.Translation
		if text == "" {
			text = it.SourceText
		}
		parts = append(parts, text)
	}
	return []byte(strings.Join(parts, "\n\n")), nil
}
