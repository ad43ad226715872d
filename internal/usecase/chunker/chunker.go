package chunker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alhaneef/text-weaver-pro/internal/ports"
)

// Policy controls how content is split into translation units. The budget is
// measured in whitespace-delimited tokens; Slack is the fraction over budget
// a sentence may reach before it is hard-cut mid-sentence.
type Policy struct {
	TokenBudget int
	Slack       float64
	FileType    string
}

// Segment is one chunk boundary decision: Seq is the reassembly position.
type Segment struct {
	Seq  int
	Text string
}

var paragraphRE = regexp.MustCompile(`\n[ \t]*\n+`)

// Split divides content into ordered segments. It is deterministic:
// identical content and policy always yield identical boundaries. Sentence
// and paragraph boundaries are preferred; a hard token cut happens only when
// a single sentence exceeds budget plus slack. Zero-length content yields
// zero chunks, not an error.
func Split(content string, p Policy) ([]Segment, error) {
	if !utf8.ValidString(content) {
		return nil, &ports.ChunkingError{Reason: "content is not valid UTF-8"}
	}
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	budget := p.TokenBudget
	if budget <= 0 {
		budget = 1000
	}
	slack := p.Slack
	if slack < 0 {
		slack = 0
	}
	allowance := budget + int(float64(budget)*slack)

	type piece struct {
		text     string
		tokens   int
		newParag bool // joined with a paragraph break when merged
	}
	var pieces []piece
	for _, par := range paragraphRE.Split(content, -1) {
		par = strings.TrimSpace(par)
		if par == "" {
			continue
		}
		first := true
		for _, sent := range splitSentences(par) {
			n := len(strings.Fields(sent))
			if n == 0 {
				continue
			}
			if n > allowance {
				for _, part := range hardCut(sent, budget) {
					pieces = append(pieces, piece{text: part, tokens: len(strings.Fields(part)), newParag: first})
					first = false
				}
				continue
			}
			pieces = append(pieces, piece{text: sent, tokens: n, newParag: first})
			first = false
		}
	}

	var out []Segment
	var cur strings.Builder
	curTokens := 0
	flush := func() {
		if curTokens == 0 {
			return
		}
		out = append(out, Segment{Seq: len(out), Text: cur.String()})
		cur.Reset()
		curTokens = 0
	}
	for _, pc := range pieces {
		// A piece that alone exceeds the budget (hard-cut remainder or a
		// sentence within slack) always becomes its own chunk boundary.
		if curTokens > 0 && curTokens+pc.tokens > budget {
			flush()
		}
		if curTokens == 0 {
			cur.WriteString(pc.text)
		} else if pc.newParag {
			cur.WriteString("\n\n")
			cur.WriteString(pc.text)
		} else {
			cur.WriteString(" ")
			cur.WriteString(pc.text)
		}
		curTokens += pc.tokens
		if pc.tokens > budget {
			flush()
		}
	}
	flush()
	return out, nil
}

// splitSentences cuts text after terminal punctuation followed by whitespace.
// Substrings are returned verbatim so no characters are dropped or reordered.
func splitSentences(text string) []string {
	var out []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Swallow closing quotes/brackets attached to the terminator.
		j := i + 1
		for j < len(runes) && (runes[j] == '"' || runes[j] == '\'' || runes[j] == ')' || runes[j] == ']') {
			j++
		}
		if j < len(runes) && !unicode.IsSpace(runes[j]) {
			continue
		}
		sent := strings.TrimSpace(string(runes[start:j]))
		if sent != "" {
			out = append(out, sent)
		}
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}
	if start < len(runes) {
		if sent := strings.TrimSpace(string(runes[start:])); sent != "" {
			out = append(out, sent)
		}
	}
	return out
}

// hardCut splits an over-budget sentence into budget-sized token runs.
func hardCut(sent string, budget int) []string {
	fields := strings.Fields(sent)
	var out []string
	for len(fields) > 0 {
		n := budget
		if n > len(fields) {
			n = len(fields)
		}
		out = append(out, strings.Join(fields[:n], " "))
		fields = fields[n:]
	}
	return out
}

// CountTokens reports the whitespace-delimited token count of content;
// used for upfront totalChunks estimates.
func CountTokens(content string) int {
	return len(strings.Fields(content))
}
