// Package matcher detects configured ingredient phrases in recognized text.
//
// Matching is lexical. Each phrase is split on whitespace and its tokens may
// be separated by any run of whitespace in the text, so a phrase broken
// across lines by the recognizer still matches. Matching is case-insensitive
// and is not anchored to word boundaries.
package matcher

import (
	"regexp"
	"strings"
	"sync"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize lower-cases raw and collapses every whitespace run to a single
// space. Leading and trailing whitespace is collapsed, not trimmed.
func Normalize(raw string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(raw), " ")
}

// Result partitions the phrases found in one text by list.
type Result struct {
	Suspicious []string `json:"suspicious"`
	Prohibited []string `json:"prohibited"`
}

// Empty reports whether nothing was found.
func (r Result) Empty() bool {
	return len(r.Suspicious) == 0 && len(r.Prohibited) == 0
}

// maxPatterns bounds the compiled-pattern cache. The cache is emptied when
// it would grow past this size.
const maxPatterns = 1024

// Matcher compiles phrase patterns on first use and reuses them. Classify
// keeps only the patterns of the lists it was last given.
type Matcher struct {
	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// New creates an empty Matcher.
func New() *Matcher {
	return &Matcher{patterns: make(map[string]*regexp.Regexp)}
}

var defaultMatcher = New()

// FindMatches returns the phrases of list that occur in raw, in list order,
// each at most once. Empty phrases never match.
func FindMatches(raw string, list []string) []string {
	return defaultMatcher.FindMatches(raw, list)
}

// Classify runs both lists against raw independently. A phrase present in
// both lists is reported in both sets.
func Classify(raw string, suspicious, prohibited []string) Result {
	return defaultMatcher.Classify(raw, suspicious, prohibited)
}

// FindMatches is the method form of the package-level FindMatches.
func (m *Matcher) FindMatches(raw string, list []string) []string {
	found := []string{}
	if strings.TrimSpace(raw) == "" {
		return found
	}
	seen := make(map[string]struct{}, len(list))
	for _, phrase := range list {
		if _, dup := seen[phrase]; dup {
			continue
		}
		re := m.pattern(phrase)
		if re == nil {
			continue
		}
		if re.MatchString(raw) {
			seen[phrase] = struct{}{}
			found = append(found, phrase)
		}
	}
	return found
}

// Classify is the method form of the package-level Classify.
func (m *Matcher) Classify(raw string, suspicious, prohibited []string) Result {
	res := Result{
		Suspicious: m.FindMatches(raw, suspicious),
		Prohibited: m.FindMatches(raw, prohibited),
	}
	m.retain(suspicious, prohibited)
	return res
}

// Cached returns the number of compiled patterns held.
func (m *Matcher) Cached() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.patterns)
}

// retain drops cached patterns for phrases in none of lists.
func (m *Matcher) retain(lists ...[]string) {
	keep := make(map[string]struct{})
	for _, list := range lists {
		for _, phrase := range list {
			keep[phrase] = struct{}{}
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for phrase := range m.patterns {
		if _, ok := keep[phrase]; !ok {
			delete(m.patterns, phrase)
		}
	}
}

func (m *Matcher) pattern(phrase string) *regexp.Regexp {
	m.mu.Lock()
	defer m.mu.Unlock()

	if re, ok := m.patterns[phrase]; ok {
		return re
	}
	re := Compile(phrase)
	if len(m.patterns) >= maxPatterns {
		clear(m.patterns)
	}
	m.patterns[phrase] = re
	return re
}

// Compile builds the whitespace-tolerant, case-insensitive pattern for a
// phrase. It returns nil for a phrase with no tokens.
func Compile(phrase string) *regexp.Regexp {
	tokens := strings.Fields(strings.ToLower(phrase))
	if len(tokens) == 0 {
		return nil
	}
	for i, tok := range tokens {
		tokens[i] = regexp.QuoteMeta(tok)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(tokens, `\s+`))
}
