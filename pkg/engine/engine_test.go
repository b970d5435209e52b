package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/arthur-debert/repatch/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var engines = []types.Engine{types.EngineRE2, types.EngineRegexp2}

func replace(t *testing.T, eng types.Engine, pattern, tmpl, doc string) (string, int) {
	t.Helper()
	m, err := Compile(pattern, Options{Engine: eng})
	require.NoError(t, err)
	bound, err := MustParseTemplate(tmpl).Bind(m)
	require.NoError(t, err)
	out, n, err := m.Replace(doc, bound)
	require.NoError(t, err)
	return out, n
}

func TestReplaceExampleScenario(t *testing.T) {
	doc := "METHOD_POST\nURL /chat/completions\n"
	want := "METHOD_POST\nBASE <injected>\nURL /chat/completions\n"

	for _, eng := range engines {
		t.Run(string(eng), func(t *testing.T) {
			out, n := replace(t, eng, `METHOD_POST\nURL (/chat/completions)`, `METHOD_POST\nBASE <injected>\nURL \1`, doc)
			assert.Equal(t, 1, n)
			assert.Equal(t, want, out)
		})
	}
}

func TestReplaceNoMatchIsIdentity(t *testing.T) {
	doc := "METHOD_GET\nURL /models\n"
	for _, eng := range engines {
		t.Run(string(eng), func(t *testing.T) {
			out, n := replace(t, eng, `METHOD_POST\nURL (/models)`, `X \1`, doc)
			assert.Equal(t, 0, n)
			assert.Equal(t, doc, out)
		})
	}
}

func TestReplaceAllNonOverlapping(t *testing.T) {
	for _, eng := range engines {
		t.Run(string(eng), func(t *testing.T) {
			out, n := replace(t, eng, `(a+)b`, `[\1]`, "ab aab xb aaab")
			assert.Equal(t, 3, n)
			assert.Equal(t, "[a] [aa] xb [aaa]", out)
		})
	}
}

func TestReplaceCapturesVerbatim(t *testing.T) {
	doc := "call(\n\t\t\tthis,\n\t\t\t'nvidiaNimApi', ✓ ${1} $x"
	for _, eng := range engines {
		t.Run(string(eng), func(t *testing.T) {
			out, n := replace(t, eng, `(?s)^(call\(.*)$`, `<\1>`, doc)
			assert.Equal(t, 1, n)
			assert.Equal(t, "<"+doc+">", out)
		})
	}
}

func TestReplaceMultiByteOffsets(t *testing.T) {
	for _, eng := range engines {
		t.Run(string(eng), func(t *testing.T) {
			out, n := replace(t, eng, `url: '(/\w+)'`, `url: '/v1\1'`, "é→ url: '/models' ← ü url: '/embeddings'")
			assert.Equal(t, 2, n)
			assert.Equal(t, "é→ url: '/v1/models' ← ü url: '/v1/embeddings'", out)
		})
	}
}

func TestNamedGroups(t *testing.T) {
	out, n := replace(t, types.EngineRE2, `(?P<verb>GET|POST) (?P<url>/\w+)`, `\g<url> via \g<verb>`, "POST /models")
	assert.Equal(t, 1, n)
	assert.Equal(t, "/models via POST", out)

	out, n = replace(t, types.EngineRegexp2, `(?<verb>GET|POST) (?<url>/\w+)`, `\g<url> via \g<verb>`, "GET /models")
	assert.Equal(t, 1, n)
	assert.Equal(t, "/models via GET", out)
}

func TestUnmatchedOptionalGroupIsEmpty(t *testing.T) {
	for _, eng := range engines {
		t.Run(string(eng), func(t *testing.T) {
			out, _ := replace(t, eng, `a(x)?b`, `[\1]`, "ab")
			assert.Equal(t, "[]", out)
		})
	}
}

func TestIgnoreCaseAndDotAll(t *testing.T) {
	for _, eng := range engines {
		t.Run(string(eng), func(t *testing.T) {
			m, err := Compile(`method: 'post'.url`, Options{Engine: eng, IgnoreCase: true, DotAll: true})
			require.NoError(t, err)
			ok, err := m.Match("METHOD: 'POST'\nurl")
			require.NoError(t, err)
			assert.True(t, ok)

			strict, err := Compile(`method: 'post'.url`, Options{Engine: eng})
			require.NoError(t, err)
			ok, err = strict.Match("METHOD: 'POST'\nurl")
			require.NoError(t, err)
			assert.False(t, ok, "matching is case-sensitive and . stops at newlines by default")
		})
	}
}

func TestRegexp2Lookahead(t *testing.T) {
	out, n := replace(t, types.EngineRegexp2, `url: (?!'/models')('[^']+')`, `url: \1 /* patched */`, "url: '/models' url: '/embeddings'")
	assert.Equal(t, 1, n)
	assert.Equal(t, "url: '/models' url: '/embeddings' /* patched */", out)

	_, err := Compile(`url: (?!'/models')`, Options{Engine: types.EngineRE2})
	assert.Error(t, err, "re2 has no lookahead")
}

func TestRegexp2Timeout(t *testing.T) {
	m, err := Compile(`(a+)+$`, Options{Engine: types.EngineRegexp2, Timeout: time.Millisecond})
	require.NoError(t, err)
	bound, err := MustParseTemplate("x").Bind(m)
	require.NoError(t, err)

	_, _, err = m.Replace(strings.Repeat("a", 40)+"!", bound)
	assert.Error(t, err)
}

func TestUnknownEngine(t *testing.T) {
	_, err := Compile(`a`, Options{Engine: "pcre"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown engine")
}

func TestBindRejectsMissingGroups(t *testing.T) {
	for _, eng := range engines {
		t.Run(string(eng), func(t *testing.T) {
			m, err := Compile(`(a)`, Options{Engine: eng})
			require.NoError(t, err)

			_, err = MustParseTemplate(`\2`).Bind(m)
			assert.Error(t, err)

			_, err = MustParseTemplate(`\g<nope>`).Bind(m)
			assert.Error(t, err)

			_, err = MustParseTemplate(`\g<0>\1`).Bind(m)
			assert.NoError(t, err)
		})
	}
}

func TestParseTemplate(t *testing.T) {
	m, err := Compile(`(a)(b)(c)(d)(e)(f)(g)(h)(i)(j)(k)(l)`, Options{})
	require.NoError(t, err)
	doc := "abcdefghijkl"

	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{"escapes", `\1\n\t\t\2`, "a\n\t\tb"},
		{"two digit group", `\12`, "l"},
		{"g syntax splits digits", `\g<1>2`, "a2"},
		{"whole match", `<\g<0>>`, "<abcdefghijkl>"},
		{"backslash escape", `\\1`, `\1`},
		{"octal", `\101\0`, "A\x00"},
		{"punctuation keeps backslash", `\&\'`, `\&\'`},
		{"dollar is literal", `$1 ${2}`, `$1 ${2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := ParseTemplate(tt.tmpl)
			require.NoError(t, err)
			bound, err := tmpl.Bind(m)
			require.NoError(t, err)
			out, n, err := m.Replace(doc, bound)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestParseTemplateErrors(t *testing.T) {
	bad := []string{
		`trailing\`,
		`\q`,
		`\g1`,
		`\g<>`,
		`\g<1`,
		`\g<bad-name>`,
	}
	for _, tmpl := range bad {
		t.Run(tmpl, func(t *testing.T) {
			_, err := ParseTemplate(tmpl)
			assert.Error(t, err)
		})
	}
}

func TestTemplateString(t *testing.T) {
	assert.Equal(t, `\1\n`, MustParseTemplate(`\1\n`).String())
}

func TestRE2DropsEmptyMatchAfterMatch(t *testing.T) {
	// re2 never reports an empty match that abuts the previous match
	out, n := replace(t, types.EngineRE2, `x*`, `-`, "abxd")
	assert.Equal(t, 4, n)
	assert.Equal(t, "-a-b-d-", out)
}

func TestRE2WhitespaceClassIsASCII(t *testing.T) {
	doc := "a\vb a\u00a0b a \t\r\nb"

	_, n := replace(t, types.EngineRE2, `a\s+b`, `ab`, doc)
	assert.Equal(t, 1, n, `\s covers space, \t, \n, \f and \r only`)

	_, n = replace(t, types.EngineRE2, `a[\s\v\p{Zs}]+b`, `ab`, doc)
	assert.Equal(t, 3, n)
}
