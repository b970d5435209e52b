// Package patterns holds the small rewrites applied to rule patterns before
// they reach a regex engine.
package patterns

import (
	"regexp"
	"strings"
)

// Whitespace is what a flexible space stands for
const Whitespace = `\s+`

var whitespaceRun = regexp.MustCompile(`\s+`)

// Literal quotes every regex metacharacter in s
func Literal(s string) string {
	return regexp.QuoteMeta(s)
}

// FlexLiteral quotes s and lets every whitespace run in it match one or more
// whitespace characters, so the result tolerates reindentation and rewrapping.
func FlexLiteral(s string) string {
	parts := whitespaceRun.Split(s, -1)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(parts, Whitespace)
}

// FlexWhitespace rewrites each unescaped run of literal spaces in expr into
// \s+. Escaped spaces and spaces inside character classes are kept verbatim.
// A run followed by a quantifier is grouped so the quantifier stays valid.
func FlexWhitespace(expr string) string {
	var b strings.Builder
	b.Grow(len(expr) + 8)

	inClass := false
	classStart := false
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case c == '\\' && i+1 < len(expr):
			b.WriteByte(c)
			b.WriteByte(expr[i+1])
			i++
			classStart = false
			continue
		case inClass:
			if c == ']' && !classStart {
				inClass = false
			}
			classStart = classStart && c == '^'
			b.WriteByte(c)
			continue
		case c == '[':
			inClass = true
			classStart = true
			b.WriteByte(c)
			continue
		case c == ' ':
			j := i
			for j < len(expr) && expr[j] == ' ' {
				j++
			}
			if j < len(expr) && isQuantifier(expr[j]) {
				b.WriteString(`(?:` + Whitespace + `)`)
			} else {
				b.WriteString(Whitespace)
			}
			i = j - 1
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isQuantifier(c byte) bool {
	return c == '*' || c == '+' || c == '?' || c == '{'
}
