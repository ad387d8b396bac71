package ocr

import (
	"regexp"
	"strings"
)

var reCRLF = regexp.MustCompile(`\r\n?`)

// NormalizeText turns tool output into the linearized text the rule evaluator reads:
// LF line endings and no form-feed page separators. Line content is left untouched.
func NormalizeText(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	return strings.ReplaceAll(s, "\f", "")
}
