package patcher

import (
	"github.com/arthur-debert/repatch/pkg/engine"
	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/patterns"
	"github.com/arthur-debert/repatch/pkg/types"
)

// CompiledRule is a rule ready to be applied
type CompiledRule struct {
	Rule  types.Rule
	Label string

	matcher engine.Matcher
	tmpl    *engine.Bound
	guard   engine.Matcher
}

// Compile checks and compiles a rule. index is the rule's position in its
// target and is used to label unnamed rules.
func Compile(rule types.Rule, index int) (*CompiledRule, error) {
	label := types.RuleLabel(rule, index)
	opts := engine.Options{
		Engine:     rule.EngineOrDefault(),
		IgnoreCase: rule.IgnoreCase,
		DotAll:     rule.DotAll,
		Timeout:    rule.Timeout,
	}

	expr := rule.Pattern
	if rule.FlexWhitespace {
		expr = patterns.FlexWhitespace(expr)
	}

	matcher, err := engine.Compile(expr, opts)
	if err != nil {
		return nil, ruleError(err, label, "invalid pattern").WithDetail("pattern", expr)
	}

	tmpl, err := engine.ParseTemplate(rule.Replace)
	if err != nil {
		return nil, ruleError(err, label, "invalid replacement")
	}
	bound, err := tmpl.Bind(matcher)
	if err != nil {
		return nil, ruleError(err, label, "invalid replacement")
	}

	compiled := &CompiledRule{
		Rule:    rule,
		Label:   label,
		matcher: matcher,
		tmpl:    bound,
	}

	if rule.Guard != "" {
		guard := rule.Guard
		if rule.FlexWhitespace {
			guard = patterns.FlexWhitespace(guard)
		}
		compiled.guard, err = engine.Compile(guard, opts)
		if err != nil {
			return nil, ruleError(err, label, "invalid guard").WithDetail("guard", guard)
		}
	}

	return compiled, nil
}

// CompileAll compiles the rules of a target in order
func CompileAll(rules []types.Rule) ([]*CompiledRule, error) {
	compiled := make([]*CompiledRule, 0, len(rules))
	for i, r := range rules {
		c, err := Compile(r, i)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, c)
	}
	return compiled, nil
}

func ruleError(err error, label, what string) *errors.PatchError {
	return errors.Wrapf(err, errors.ErrRuleInvalid, "rule %s: %s", label, what).
		WithDetail("rule", label)
}
