package metrics

import (
	"strconv"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// LABEL PARSER
// ══════════════════════════════════════════════════════════════════════════════

// Category classifies a resource for the assessment-type rollups.
type Category string

const (
	CategoryLab  Category = "Lab"
	CategoryQuiz Category = "Quiz"
	CategoryExam Category = "Exam"
)

// Resource label prefixes as they appear in the exported gradebook.
const (
	labPrefix        = "Lab - "
	assessmentPrefix = "Assessment - "
)

// LabelKind tags the outcome of parsing a resource label.
type LabelKind int

const (
	// KindUnparseable marks a label matching neither known prefix.
	KindUnparseable LabelKind = iota

	// KindLab marks a hands-on lab resource.
	KindLab

	// KindAssessment marks a quiz/exam/review resource.
	KindAssessment
)

// ParsedLabel is the tagged result of parsing one free-text resource label.
// A lab or assessment without a resolvable module number still keeps its
// kind and category; only per-module statistics exclude it.
type ParsedLabel struct {
	Kind      LabelKind
	Module    int
	HasModule bool
	Category  Category
}

// LabelParser turns free-text resource labels into ParsedLabel values.
// It is a pure function object; the only state is the injected category
// priority table.
type LabelParser struct {
	rules []CategoryRule
}

// NewLabelParser creates a parser with the given ordered category rules.
func NewLabelParser(rules []CategoryRule) *LabelParser {
	return &LabelParser{rules: rules}
}

// Parse parses one resource label. Labels such as
// "Lab - 3.2 Configuring Switches" resolve to module 3; labels without a
// recognized prefix come back as KindUnparseable.
func (p *LabelParser) Parse(label string) ParsedLabel {
	switch {
	case strings.HasPrefix(label, labPrefix):
		module, ok := parseModuleNumber(label, labPrefix)
		return ParsedLabel{
			Kind:      KindLab,
			Module:    module,
			HasModule: ok,
			Category:  CategoryLab,
		}
	case strings.HasPrefix(label, assessmentPrefix):
		module, ok := parseModuleNumber(label, assessmentPrefix)
		return ParsedLabel{
			Kind:      KindAssessment,
			Module:    module,
			HasModule: ok,
			Category:  p.categorize(label),
		}
	default:
		return ParsedLabel{Kind: KindUnparseable}
	}
}

// parseModuleNumber extracts the integer module number from a prefixed
// label: the label is split on periods and the text between the prefix and
// the first period is parsed as an integer.
func parseModuleNumber(label, prefix string) (int, bool) {
	parts := strings.Split(label, ".")
	if len(parts) < 2 {
		return 0, false
	}

	moduleStr := strings.TrimPrefix(parts[0], prefix)
	if n, err := strconv.Atoi(moduleStr); err == nil {
		return n, true
	}

	// Rescue branch for appendix-style "B.2.6" module labels, kept from the
	// legacy reports. The split above already consumed past the first
	// period, so moduleStr holds "B" rather than "B.2" and the prefix test
	// never passes; such resources stay out of per-module rollups.
	if strings.HasPrefix(moduleStr, "B.") {
		if n, err := strconv.Atoi(strings.TrimPrefix(moduleStr, "B.")); err == nil {
			return n, true
		}
	}

	return 0, false
}

// categorize resolves the assessment category by ordered substring match;
// the first matching rule wins and anything unmatched is a Quiz.
func (p *LabelParser) categorize(label string) Category {
	for _, rule := range p.rules {
		if strings.Contains(label, rule.Substring) {
			return rule.Category
		}
	}
	return CategoryQuiz
}
