// Package rules evaluates keyword field rules against the linearized text of a document.
package rules

import (
	"strings"
	"unicode"

	"github.com/joseph-ayodele/pdf-fields/constants"
	"github.com/joseph-ayodele/pdf-fields/internal/entity"
)

// Outcome tells how a rule evaluation ended.
type Outcome int

const (
	// Found means a candidate token was selected.
	Found Outcome = iota
	// KeywordNotFound means no line of the text contains the keyword.
	KeywordNotFound
	// ExtractionFailed means the keyword was found but no value could be derived.
	ExtractionFailed
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case KeywordNotFound:
		return "keyword_not_found"
	case ExtractionFailed:
		return "extraction_failed"
	default:
		return "unknown"
	}
}

// Result is the value produced by a rule. Text is empty unless Outcome is Found.
type Result struct {
	Text    string
	Outcome Outcome
}

// Value converts the result to a record value: KeywordNotFound is absent, everything else is present.
func (r Result) Value() entity.Value {
	if r.Outcome == KeywordNotFound {
		return entity.Missing()
	}
	return entity.Present(r.Text)
}

func failed() Result { return Result{Outcome: ExtractionFailed} }

// Evaluate applies rule to text. It is a pure function of its arguments.
func Evaluate(text string, rule entity.KeywordRule) Result {
	if rule.Keyword == "" {
		return failed()
	}

	lines := strings.Split(text, "\n")
	idx := -1
	for i, line := range lines {
		if strings.Contains(line, rule.Keyword) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Result{Outcome: KeywordNotFound}
	}

	segment, ok := segmentFor(lines, idx, rule)
	if !ok {
		return failed()
	}

	var candidates []string
	if rule.NumericOnly {
		candidates = numbers(segment)
	} else {
		candidates = strings.Fields(segment)
	}
	if rule.Skip < 0 || rule.Skip >= len(candidates) {
		return failed()
	}

	return Result{Text: truncate(candidates[rule.Skip], rule.CharLimit), Outcome: Found}
}

// EvaluateAll evaluates every rule in order.
func EvaluateAll(text string, rules []entity.KeywordRule) []Result {
	out := make([]Result, len(rules))
	for i, r := range rules {
		out[i] = Evaluate(text, r)
	}
	return out
}

// segmentFor derives the candidate segment around lines[idx]. ok is false when the
// direction points past the end of the text or is not a known direction.
func segmentFor(lines []string, idx int, rule entity.KeywordRule) (string, bool) {
	line := lines[idx]
	switch rule.Direction {
	case constants.Right:
		pos := strings.Index(line, rule.Keyword)
		return strings.TrimSpace(line[pos+len(rule.Keyword):]), true
	case constants.Left:
		pos := strings.Index(line, rule.Keyword)
		return strings.TrimSpace(line[:pos]), true
	case constants.Below:
		if idx+1 >= len(lines) {
			return "", false
		}
		return strings.TrimSpace(lines[idx+1]), true
	case constants.Above:
		if idx == 0 {
			return "", true
		}
		return strings.TrimSpace(lines[idx-1]), true
	default:
		return "", false
	}
}

// numbers returns the whole-word runs of digits, commas and periods in s, in order.
// A run starts at a digit that does not follow a word rune. It ends at the longest
// prefix that stops on a word boundary, so "10,50." yields "10,50" and "12º" yields
// nothing. Word runes are Unicode letters, digits and '_'.
func numbers(s string) []string {
	rs := []rune(s)
	n := len(rs)
	word := func(i int) bool {
		if i < 0 || i >= n {
			return false
		}
		r := rs[i]
		return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
	}
	boundary := func(i int) bool { return word(i-1) != word(i) }

	var out []string
	for i := 0; i < n; {
		if !unicode.IsDigit(rs[i]) || word(i-1) {
			i++
			continue
		}
		j := i + 1
		for j < n && (unicode.IsDigit(rs[j]) || rs[j] == ',' || rs[j] == '.') {
			j++
		}
		end := -1
		for k := j; k > i; k-- {
			if boundary(k) {
				end = k
				break
			}
		}
		if end < 0 {
			i++
			continue
		}
		out = append(out, string(rs[i:end]))
		i = end
	}
	return out
}

// truncate keeps the first limit characters of s; limit <= 0 keeps everything.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
