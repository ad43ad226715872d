package csvextract

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/alhaneef/text-weaver-pro/internal/ports"
)

// Extractor flattens tabular content into one line of prose per record.
type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) Format() string { return "csv" }

func (e *Extractor) Extract(_ context.Context, data []byte) (string, error) {
	data = stripBOM(data)
	r := csv.NewReader(bufio.NewReader(bytes.NewReader(data)))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	var lines []string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", &ports.ChunkingError{Reason: "malformed csv: " + err.Error()}
		}
		var cells []string
		for _, cell := range rec {
			if c := strings.TrimSpace(cell); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, ", "))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func stripBOM(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if len(b) >= 3 && bytes.Equal(b[:3], bom) {
		return b[3:]
	}
	return b
}
