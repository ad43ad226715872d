package csvexport

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"

	"github.com/alhaneef/text-weaver-pro/internal/ports"
)

// Exporter writes a side-by-side review sheet: one row per chunk with the
// source passage next to its translation.
type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "csv" }

func (e *Exporter) Export(language string, items []ports.ExportItem) ([]byte, error) {
	sorted := make([]ports.ExportItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"seq", "source", language}); err != nil {
		return nil, err
	}
	for _, it := range sorted {
		if err := w.Write([]string{strconv.Itoa(it.Seq), it.SourceText, it.Translation}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
