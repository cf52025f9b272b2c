package classify

import "regexp"

// patternGroup is one label of a Matcher with its compiled patterns.
type patternGroup struct {
	label    string
	patterns []*regexp.Regexp
}

// Matcher evaluates labeled regex groups against a query and reports
// per-label match counts. The same mechanism serves both scoring
// dimensions (type and intent).
type Matcher struct {
	groups []patternGroup
}

// newMatcher compiles a pattern table into a Matcher. Labels are evaluated
// in the given priority order; compilation panics on an invalid pattern
// because the tables are package data validated by tests.
func newMatcher(priority []string, table map[string][]string) *Matcher {
	groups := make([]patternGroup, 0, len(priority))
	for _, label := range priority {
		sources := table[label]
		compiled := make([]*regexp.Regexp, 0, len(sources))
		for _, src := range sources {
			compiled = append(compiled, regexp.MustCompile(`(?i)`+src))
		}
		groups = append(groups, patternGroup{label: label, patterns: compiled})
	}
	return &Matcher{groups: groups}
}

// Scores returns the total match count per label for the query.
func (m *Matcher) Scores(query string) map[string]int {
	scores := make(map[string]int, len(m.groups))
	for _, group := range m.groups {
		total := 0
		for _, re := range group.patterns {
			total += len(re.FindAllStringIndex(query, -1))
		}
		scores[group.label] = total
	}
	return scores
}

// Best returns the label with the strictly highest score and that score.
// Ties resolve to the earlier-declared label; an all-zero result returns
// an empty label so callers can apply their fallback.
func (m *Matcher) Best(query string) (string, int) {
	bestLabel := ""
	bestScore := 0
	for _, group := range m.groups {
		total := 0
		for _, re := range group.patterns {
			total += len(re.FindAllStringIndex(query, -1))
		}
		if total > bestScore {
			bestLabel = group.label
			bestScore = total
		}
	}
	return bestLabel, bestScore
}
