package scoring

import (
	"bufio"
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultScore replaces any numeric field the model did not report.
	DefaultScore = 50
	MinScore     = 0
	MaxScore     = 100

	MaxListItems = 5
)

// FieldSpec names one numeric field and the pattern that captures its value
// in group 1.
type FieldSpec struct {
	Name    string
	Pattern *regexp.Regexp
}

// ScoreField builds a case-insensitive "<label>: <n>" matcher. Whitespace in
// the label matches any run of whitespace, and markdown emphasis around the
// separator is tolerated ("**Clarity:** 80").
func ScoreField(name, label string) FieldSpec {
	words := strings.Fields(label)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	expr := `(?i)` + strings.Join(words, `\s+`) + `[:\s*]+(\d+)`
	return FieldSpec{Name: name, Pattern: regexp.MustCompile(expr)}
}

// ParseScoreFields extracts every field from free text. Fields that are not
// present get DefaultScore; present values are clamped to [0,100].
func ParseScoreFields(text string, fields []FieldSpec) map[string]int {
	scores := make(map[string]int, len(fields))
	for _, f := range fields {
		if v, ok := ParseOptionalScore(text, f.Pattern); ok {
			scores[f.Name] = v
			continue
		}
		scores[f.Name] = DefaultScore
	}
	return scores
}

// ParseOptionalScore returns the first match of pattern, clamped.
func ParseOptionalScore(text string, pattern *regexp.Regexp) (int, bool) {
	m := pattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		// Only overflow gets here; treat it as the top of the scale.
		return MaxScore, true
	}
	return clampScore(v), true
}

// MeanScore is the rounded arithmetic mean, 0 for no values.
func MeanScore(values ...int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return clampScore(int(math.Round(float64(sum) / float64(len(values)))))
}

func clampScore(v int) int {
	switch {
	case v < MinScore:
		return MinScore
	case v > MaxScore:
		return MaxScore
	}
	return v
}

var (
	listLinePattern   = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s*(.+)$`)
	listMarkerPattern = regexp.MustCompile(`^[-*•\d.)\s]+`)
)

// ExtractListItems collects findings mentioning keyword, in document order.
// Numbered or bulleted lines win; when there are none, any line mentioning the
// keyword is used with its list marker stripped. Matching is case-insensitive
// and at most MaxListItems are returned.
func ExtractListItems(text, keyword string) []string {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return []string{}
	}
	lines := splitLines(text)

	items := make([]string, 0, MaxListItems)
	for _, line := range lines {
		m := listLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		item := strings.TrimSpace(m[1])
		if isHeading(item) {
			continue
		}
		if strings.Contains(strings.ToLower(item), needle) {
			items = append(items, item)
			if len(items) == MaxListItems {
				return items
			}
		}
	}
	if len(items) > 0 {
		return items
	}

	for _, line := range lines {
		if !strings.Contains(strings.ToLower(line), needle) {
			continue
		}
		cleaned := strings.TrimSpace(listMarkerPattern.ReplaceAllString(line, ""))
		if cleaned == "" || isHeading(cleaned) {
			continue
		}
		items = append(items, cleaned)
		if len(items) == MaxListItems {
			break
		}
	}
	return items
}

// isHeading reports section titles such as "**Strengths:**".
func isHeading(line string) bool {
	return strings.HasSuffix(strings.TrimRight(line, "* "), ":")
}

func splitLines(text string) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}
