package engine

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// regexp2Matcher numbers named groups after the unnamed ones, as .NET does
type regexp2Matcher struct {
	re     *regexp2.Regexp
	groups map[int]bool
}

func compileRegexp2(expr string, opts Options) (Matcher, error) {
	var ro regexp2.RegexOptions
	if opts.IgnoreCase {
		ro |= regexp2.IgnoreCase
	}
	if opts.DotAll {
		ro |= regexp2.Singleline
	}
	re, err := regexp2.Compile(expr, ro)
	if err != nil {
		return nil, err
	}
	if opts.Timeout > 0 {
		re.MatchTimeout = opts.Timeout
	}

	groups := make(map[int]bool)
	for _, n := range re.GetGroupNumbers() {
		groups[n] = true
	}
	return &regexp2Matcher{re: re, groups: groups}, nil
}

func (m *regexp2Matcher) Replace(doc string, tmpl *Bound) (string, int, error) {
	match, err := m.re.FindStringMatch(doc)
	if err != nil {
		return "", 0, err
	}
	if match == nil {
		return doc, 0, nil
	}

	// Capture offsets are rune offsets
	runes := []rune(doc)
	var b strings.Builder
	b.Grow(len(doc))
	last := 0
	count := 0
	for match != nil {
		current := match
		b.WriteString(string(runes[last:current.Index]))
		tmpl.expand(&b, func(g int) string {
			if g == 0 {
				return string(runes[current.Index : current.Index+current.Length])
			}
			grp := current.GroupByNumber(g)
			if grp == nil || len(grp.Captures) == 0 {
				return ""
			}
			return grp.String()
		})
		last = current.Index + current.Length
		count++

		match, err = m.re.FindNextMatch(current)
		if err != nil {
			return "", 0, err
		}
	}
	b.WriteString(string(runes[last:]))
	return b.String(), count, nil
}

func (m *regexp2Matcher) Match(doc string) (bool, error) {
	return m.re.MatchString(doc)
}

func (m *regexp2Matcher) HasGroup(n int) bool {
	return m.groups[n]
}

func (m *regexp2Matcher) GroupIndex(name string) int {
	return m.re.GroupNumberFromName(name)
}
