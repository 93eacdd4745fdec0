package scan

import (
	"regexp"
	"strconv"
	"strings"
)

// Card name and HP are printed near the top of the card face, so only the
// first few recognized lines carry signal. Everything below is attack and
// flavor text.
const maxNameLines = 5

// hpPattern matches a standalone 2-3 digit number, the printed HP range.
var hpPattern = regexp.MustCompile(`\b\d{2,3}\b`)

// structuralLabels are frame tokens OCR often reads as the first line. They
// are never card names.
var structuralLabels = map[string]struct{}{
	"basic": {},
}

// Line is one trimmed, non-blank line of recognized text together with its
// position in the raw OCR output.
type Line struct {
	Index int
	Text  string
}

// SplitLines breaks raw recognized text into trimmed lines, dropping blank
// ones while keeping each line's original index.
func SplitLines(text string) []Line {
	raw := strings.Split(text, "\n")
	lines := make([]Line, 0, len(raw))
	for i, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		lines = append(lines, Line{Index: i, Text: s})
	}
	return lines
}

// HeadLines returns the first n lines, or all of them when fewer exist.
func HeadLines(lines []Line, n int) []Line {
	if len(lines) <= n {
		return lines
	}
	return lines[:n]
}

// ExtractHP returns the first standalone 2-3 digit number found across the
// given lines, or nil when none is present.
func ExtractHP(lines []Line) *int {
	for _, ln := range lines {
		m := hpPattern.FindString(ln.Text)
		if m == "" {
			continue
		}
		v, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		return &v
	}
	return nil
}

// IsStructuralLabel reports whether a line is a card-frame label rather than
// a candidate name.
func IsStructuralLabel(text string) bool {
	_, ok := structuralLabels[strings.ToLower(strings.TrimSpace(text))]
	return ok
}
