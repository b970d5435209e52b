package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// segment is either literal text or a reference to a capture group
type segment struct {
	literal string
	group   int
	name    string
	isRef   bool
}

// Template is a parsed replacement string.
//
// The syntax follows Python's re.sub:
//   - \1 .. \99 and \g<1> refer to numbered groups, \g<0> to the whole match
//   - \g<name> refers to a named group
//   - \n \t \r \a \b \f \v \\ are the usual escapes
//   - \0 and three-digit octal escapes such as \101 produce a character
//   - any other escaped punctuation keeps its backslash
//
// A dollar sign has no special meaning.
type Template struct {
	raw  string
	segs []segment
}

// Bound is a Template whose group references were checked against a Matcher
type Bound struct {
	segs []segment
}

var simpleEscapes = map[byte]string{
	'n':  "\n",
	't':  "\t",
	'r':  "\r",
	'a':  "\a",
	'b':  "\b",
	'f':  "\f",
	'v':  "\v",
	'\\': "\\",
}

// ParseTemplate parses a replacement string
func ParseTemplate(s string) (*Template, error) {
	t := &Template{raw: s}
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			t.segs = append(t.segs, segment{literal: lit.String()})
			lit.Reset()
		}
	}
	ref := func(seg segment) {
		flush()
		seg.isRef = true
		t.segs = append(t.segs, seg)
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			lit.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			return nil, fmt.Errorf("bad escape (end of template) at position %d", i)
		}
		next := s[i+1]

		switch {
		case next == 'g':
			end := strings.IndexByte(s[i+2:], '>')
			if i+2 >= len(s) || s[i+2] != '<' || end < 0 {
				return nil, fmt.Errorf("missing group name in \\g at position %d", i)
			}
			name := s[i+3 : i+2+end]
			if name == "" {
				return nil, fmt.Errorf("missing group name in \\g at position %d", i)
			}
			if n, err := strconv.Atoi(name); err == nil {
				if n < 0 {
					return nil, fmt.Errorf("invalid group reference %q at position %d", name, i)
				}
				ref(segment{group: n})
			} else if isIdentifier(name) {
				ref(segment{name: name, group: -1})
			} else {
				return nil, fmt.Errorf("bad character in group name %q at position %d", name, i)
			}
			i += 2 + end
		case next == '0':
			// \0 plus up to two more octal digits
			j := i + 2
			for j < len(s) && j < i+4 && isOctal(s[j]) {
				j++
			}
			v, _ := strconv.ParseUint(s[i+1:j], 8, 8)
			lit.WriteByte(byte(v))
			i = j - 1
		case isDigit(next):
			if i+3 < len(s) && next <= '3' && isOctal(next) && isOctal(s[i+2]) && isOctal(s[i+3]) {
				v, _ := strconv.ParseUint(s[i+1:i+4], 8, 16)
				lit.WriteRune(rune(v))
				i += 3
				continue
			}
			j := i + 2
			if j < len(s) && isDigit(s[j]) {
				j++
			}
			n, _ := strconv.Atoi(s[i+1 : j])
			ref(segment{group: n})
			i = j - 1
		default:
			if esc, ok := simpleEscapes[next]; ok {
				lit.WriteString(esc)
			} else if isASCIILetter(next) {
				return nil, fmt.Errorf("bad escape \\%c at position %d", next, i)
			} else {
				lit.WriteByte('\\')
				lit.WriteByte(next)
			}
			i++
		}
	}
	flush()
	return t, nil
}

// MustParseTemplate is ParseTemplate that panics on error, for fixed templates
func MustParseTemplate(s string) *Template {
	t, err := ParseTemplate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the template source
func (t *Template) String() string {
	return t.raw
}

// Bind resolves named references and checks every group exists in m
func (t *Template) Bind(m Matcher) (*Bound, error) {
	b := &Bound{segs: make([]segment, len(t.segs))}
	for i, seg := range t.segs {
		if seg.isRef {
			if seg.name != "" {
				n := m.GroupIndex(seg.name)
				if n < 0 {
					return nil, fmt.Errorf("unknown group name %q", seg.name)
				}
				seg.group = n
			}
			if !m.HasGroup(seg.group) {
				return nil, fmt.Errorf("invalid group reference %d", seg.group)
			}
		}
		b.segs[i] = seg
	}
	return b, nil
}

func (b *Bound) expand(out *strings.Builder, group func(int) string) {
	for _, seg := range b.segs {
		if seg.isRef {
			out.WriteString(group(seg.group))
		} else {
			out.WriteString(seg.literal)
		}
	}
}

func isDigit(c byte) bool       { return c >= '0' && c <= '9' }
func isOctal(c byte) bool       { return c >= '0' && c <= '7' }
func isASCIILetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

func isIdentifier(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' || isASCIILetter(c) || (i > 0 && isDigit(c)) {
			continue
		}
		return false
	}
	return s != ""
}
