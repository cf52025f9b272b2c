package classify

import "testing"

func TestMatcherBest_TieKeepsEarlierLabel(t *testing.T) {
	m := newMatcher(
		[]string{"first", "second"},
		map[string][]string{
			"first":  {`\bfoo\b`},
			"second": {`\bfoo\b`},
		},
	)

	label, score := m.Best("foo bar")
	if label != "first" {
		t.Fatalf("label = %q, want tie resolved to %q", label, "first")
	}
	if score != 1 {
		t.Fatalf("score = %d, want 1", score)
	}
}

func TestMatcherBest_StrictlyHigherScoreWins(t *testing.T) {
	m := newMatcher(
		[]string{"first", "second"},
		map[string][]string{
			"first":  {`\bfoo\b`},
			"second": {`\bfoo\b`, `\bbar\b`},
		},
	)

	label, score := m.Best("foo bar")
	if label != "second" {
		t.Fatalf("label = %q, want %q", label, "second")
	}
	if score != 2 {
		t.Fatalf("score = %d, want 2", score)
	}
}

func TestMatcherBest_AllZeroReturnsEmpty(t *testing.T) {
	m := newMatcher(
		[]string{"only"},
		map[string][]string{"only": {`\bfoo\b`}},
	)

	label, score := m.Best("nothing here")
	if label != "" || score != 0 {
		t.Fatalf("got (%q, %d), want empty label and zero score", label, score)
	}
}

func TestMatcherScores_CountsEveryMatch(t *testing.T) {
	m := newMatcher(
		[]string{"only"},
		map[string][]string{"only": {`\bfoo\b`}},
	)

	scores := m.Scores("foo foo foo")
	if scores["only"] != 3 {
		t.Fatalf("score = %d, want 3", scores["only"])
	}
}

func TestPackagePatternTablesCompile(t *testing.T) {
	// New panics on an invalid pattern; constructing the classifier is the
	// compile check for every table in this package.
	if c := New(); c == nil {
		t.Fatal("expected classifier")
	}
	if len(entityRegexes) != len(entityPatterns) {
		t.Fatalf("compiled %d entity groups, want %d", len(entityRegexes), len(entityPatterns))
	}
}
