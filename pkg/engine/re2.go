package engine

import (
	"regexp"
	"strings"
)

type re2Matcher struct {
	re *regexp.Regexp
}

func compileRE2(expr string, opts Options) (Matcher, error) {
	flags := ""
	if opts.IgnoreCase {
		flags += "i"
	}
	if opts.DotAll {
		flags += "s"
	}
	if flags != "" {
		expr = "(?" + flags + ")" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &re2Matcher{re: re}, nil
}

func (m *re2Matcher) Replace(doc string, tmpl *Bound) (string, int, error) {
	matches := m.re.FindAllStringSubmatchIndex(doc, -1)
	if len(matches) == 0 {
		return doc, 0, nil
	}

	var b strings.Builder
	b.Grow(len(doc))
	last := 0
	for _, loc := range matches {
		b.WriteString(doc[last:loc[0]])
		tmpl.expand(&b, func(g int) string {
			start, end := loc[2*g], loc[2*g+1]
			if start < 0 {
				return ""
			}
			return doc[start:end]
		})
		last = loc[1]
	}
	b.WriteString(doc[last:])
	return b.String(), len(matches), nil
}

func (m *re2Matcher) Match(doc string) (bool, error) {
	return m.re.MatchString(doc), nil
}

func (m *re2Matcher) HasGroup(n int) bool {
	return n >= 0 && n <= m.re.NumSubexp()
}

func (m *re2Matcher) GroupIndex(name string) int {
	return m.re.SubexpIndex(name)
}
