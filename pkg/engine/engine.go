// Package engine compiles rule patterns into Matchers and performs the
// global substitution for a rule.
//
// Two implementations are available. "re2" wraps Go's regexp package and is
// the default: linear time, no backtracking. "regexp2" wraps
// github.com/dlclark/regexp2 for patterns that need lookaround or
// backreferences inside the pattern, and supports a per-match timeout.
//
// Replacement templates use the backslash syntax of Python's re.sub for
// both engines, see ParseTemplate.
package engine

import (
	"fmt"
	"time"

	"github.com/arthur-debert/repatch/pkg/types"
)

// Options controls how a pattern is compiled
type Options struct {
	Engine     types.Engine
	IgnoreCase bool
	DotAll     bool
	Timeout    time.Duration
}

// Matcher is a compiled pattern
type Matcher interface {
	// Replace substitutes every non-overlapping match of the pattern in doc
	// and returns the new text with the number of matches. With zero matches
	// doc is returned as is.
	Replace(doc string, tmpl *Bound) (string, int, error)

	// Match reports whether the pattern matches anywhere in doc
	Match(doc string) (bool, error)

	// HasGroup reports whether group number n exists
	HasGroup(n int) bool

	// GroupIndex returns the number of the named group, or -1
	GroupIndex(name string) int
}

// Compile builds a Matcher for expr with the selected engine
func Compile(expr string, opts Options) (Matcher, error) {
	switch opts.Engine {
	case "", types.EngineRE2:
		return compileRE2(expr, opts)
	case types.EngineRegexp2:
		return compileRegexp2(expr, opts)
	default:
		return nil, fmt.Errorf("unknown engine %q (want %s or %s)", opts.Engine, types.EngineRE2, types.EngineRegexp2)
	}
}
