package plate

import (
	"regexp"
	"strings"
)

// Normalizer turns a raw OCR line into a plate-candidate string.
// Two strategies exist and must stay separate: the reconstruction path
// corrects common OCR confusions, the region path does not.
type Normalizer func(raw string) string

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

// ocrConfusions are applied in this exact order, each over the whole
// string. Targets are digits, so no rule re-matches another rule's output.
var ocrConfusions = []struct {
	from string
	to   string
}{
	{"O", "0"},
	{"I", "1"},
	{"S", "5"},
	{"Z", "2"},
}

// NormalizeOCR strips everything outside [A-Za-z0-9], upper-cases the
// remainder and applies the OCR-confusion substitutions. Any input yields
// a deterministic, possibly empty, output.
func NormalizeOCR(raw string) string {
	text := NormalizeBasic(raw)
	for _, sub := range ocrConfusions {
		text = strings.ReplaceAll(text, sub.from, sub.to)
	}
	return text
}

// NormalizeBasic strips non-alphanumerics and upper-cases, nothing else.
func NormalizeBasic(raw string) string {
	return strings.ToUpper(nonAlphanumeric.ReplaceAllString(raw, ""))
}
