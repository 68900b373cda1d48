// Package patternmatch compiles glob and regex patterns and matches changed
// files against them.
package patternmatch

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/dlclark/regexp2"
	"github.com/gobwas/glob"
)

// Matcher answers whether a path matches a compiled set of glob patterns.
// An empty pattern list matches everything, mirroring the convention used
// across hook-definition `files` lists.
type Matcher struct {
	patterns []string
	globs    []glob.Glob
}

// Compile builds a Matcher from raw glob pattern strings. Invalid patterns
// fail immediately with a diagnostic naming the offending pattern.
func Compile(patterns []string) (*Matcher, error) {
	m := &Matcher{patterns: patterns}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", p, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Matches reports whether path matches the pattern set. An empty pattern
// set always matches. A path matches if either the full path or its
// basename matches any compiled glob.
func (m *Matcher) Matches(p string) bool {
	if len(m.globs) == 0 {
		return true
	}
	clean := filepath.ToSlash(p)
	base := path.Base(clean)
	for _, g := range m.globs {
		if g.Match(clean) || g.Match(base) {
			return true
		}
	}
	return false
}

// MatchesAny reports whether at least one of paths matches the pattern set.
// Per §8's quantified invariant, matches([]) is false unless the pattern
// set itself is empty.
func (m *Matcher) MatchesAny(paths []string) bool {
	if len(m.globs) == 0 {
		return true
	}
	for _, p := range paths {
		if m.Matches(p) {
			return true
		}
	}
	return false
}

// Patterns returns the raw patterns the Matcher was compiled from.
func (m *Matcher) Patterns() []string {
	return m.patterns
}

// ExcludeMatcher filters paths against a list of regular expressions,
// applied as a pre-filter before glob matching (HookDefinition.exclude).
type ExcludeMatcher struct {
	regexes []*regexp2.Regexp
}

// CompileExclude builds an ExcludeMatcher from raw regex pattern strings.
func CompileExclude(patterns []string) (*ExcludeMatcher, error) {
	em := &ExcludeMatcher{}
	for _, p := range patterns {
		re, err := regexp2.Compile(p, regexp2.None)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		em.regexes = append(em.regexes, re)
	}
	return em, nil
}

// Excluded reports whether p matches any exclude pattern (full path or
// basename, matching the Matcher's own double-check convention).
func (em *ExcludeMatcher) Excluded(p string) bool {
	if em == nil || len(em.regexes) == 0 {
		return false
	}
	clean := filepath.ToSlash(p)
	base := path.Base(clean)
	for _, re := range em.regexes {
		if matched, _ := re.MatchString(clean); matched {
			return true
		}
		if matched, _ := re.MatchString(base); matched {
			return true
		}
	}
	return false
}

// Filter removes every path excluded by em from paths, preserving order.
func Filter(em *ExcludeMatcher, paths []string) []string {
	if em == nil {
		return paths
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !em.Excluded(p) {
			out = append(out, p)
		}
	}
	return out
}
