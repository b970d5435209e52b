package types

import (
	"fmt"
	"strings"
	"time"
)

// Engine names a regular expression implementation
type Engine string

const (
	// EngineRE2 is Go's linear-time regexp package. It is the default.
	EngineRE2 Engine = "re2"
	// EngineRegexp2 is the backtracking dlclark/regexp2 engine. It adds
	// lookaround and in-pattern backreferences, and honours Rule.Timeout.
	EngineRegexp2 Engine = "regexp2"
)

// NoMatchPolicy decides what a rule that matched nothing means for a run
type NoMatchPolicy string

const (
	NoMatchIgnore NoMatchPolicy = "ignore"
	NoMatchWarn   NoMatchPolicy = "warn"
	NoMatchError  NoMatchPolicy = "error"
)

// ParseNoMatchPolicy validates a policy name. Empty selects NoMatchWarn.
func ParseNoMatchPolicy(s string) (NoMatchPolicy, error) {
	switch p := NoMatchPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return NoMatchWarn, nil
	case NoMatchIgnore, NoMatchWarn, NoMatchError:
		return p, nil
	default:
		return "", fmt.Errorf("unknown no-match policy %q (want ignore, warn or error)", s)
	}
}

// Rule is one (pattern, replacement) substitution. Rules are immutable once
// loaded and are applied in the order they are listed.
type Rule struct {
	Name    string `koanf:"name"`
	Pattern string `koanf:"pattern"`
	Replace string `koanf:"replace"`
	Engine  Engine `koanf:"engine"`

	// FlexWhitespace turns each unescaped run of spaces in Pattern into \s+
	FlexWhitespace bool `koanf:"flex_whitespace"`
	IgnoreCase     bool `koanf:"ignore_case"`
	DotAll         bool `koanf:"dot_all"`

	// Guard matches text that only exists once the rule has been applied.
	// A rule with zero matches whose guard matches is reported as
	// already applied instead of missing.
	Guard string `koanf:"guard"`

	// Timeout bounds a single match attempt. Only the regexp2 engine honours it.
	Timeout time.Duration `koanf:"timeout"`
}

// EngineOrDefault returns the rule engine, falling back to RE2
func (r Rule) EngineOrDefault() Engine {
	if r.Engine == "" {
		return EngineRE2
	}
	return r.Engine
}

// Target is a file together with the ordered rules to apply to it
type Target struct {
	Path     string `koanf:"path"`
	Encoding string `koanf:"encoding"`
	Rules    []Rule `koanf:"rules"`
}

// RuleLabel returns the rule name or its 1-based position when unnamed
func RuleLabel(r Rule, index int) string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("rule-%d", index+1)
}
