package config

import (
	"path/filepath"

	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/logging"
	"github.com/arthur-debert/repatch/pkg/textcodec"
	"github.com/arthur-debert/repatch/pkg/types"
)

// Validate checks the configuration and fills in defaults for the policy,
// the rule engines and the target encodings
func (c *Config) Validate() error {
	logger := logging.GetLogger("config")

	policy, err := types.ParseNoMatchPolicy(string(c.OnNoMatch))
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigValid, "invalid on_no_match")
	}
	c.OnNoMatch = policy

	if len(c.Targets) == 0 {
		return errors.New(errors.ErrConfigValid, "no targets configured")
	}

	paths := make(map[string]bool, len(c.Targets))
	for ti := range c.Targets {
		target := &c.Targets[ti]
		if target.Path == "" {
			return errors.Newf(errors.ErrConfigValid, "target %d has no path", ti+1).
				WithDetail("target", ti+1)
		}
		clean := filepath.Clean(target.Path)
		if paths[clean] {
			return errors.Newf(errors.ErrConfigValid, "target %s is listed more than once, merge its rules", target.Path).
				WithDetail("path", target.Path)
		}
		paths[clean] = true
		if _, err := textcodec.Lookup(target.Encoding); err != nil {
			return errors.Wrapf(err, errors.ErrConfigValid, "target %s", target.Path).
				WithDetail("path", target.Path)
		}
		target.Encoding = textcodec.Normalize(target.Encoding)

		if len(target.Rules) == 0 {
			return errors.Newf(errors.ErrConfigValid, "target %s has no rules", target.Path).
				WithDetail("path", target.Path)
		}

		for ri := range target.Rules {
			rule := &target.Rules[ri]
			label := types.RuleLabel(*rule, ri)
			if rule.Pattern == "" {
				return errors.Newf(errors.ErrConfigValid, "rule %s of %s has no pattern", label, target.Path).
					WithDetail("path", target.Path).
					WithDetail("rule", label)
			}

			rule.Engine = rule.EngineOrDefault()
			switch rule.Engine {
			case types.EngineRE2, types.EngineRegexp2:
			default:
				return errors.Newf(errors.ErrConfigValid, "rule %s of %s has unknown engine %q", label, target.Path, rule.Engine).
					WithDetail("path", target.Path).
					WithDetail("rule", label)
			}

			if rule.Timeout < 0 {
				return errors.Newf(errors.ErrConfigValid, "rule %s of %s has a negative timeout", label, target.Path).
					WithDetail("rule", label)
			}
			if rule.Timeout > 0 && rule.Engine != types.EngineRegexp2 {
				logger.Warn().
					Str("path", target.Path).
					Str("rule", label).
					Msg("Rule timeout only applies to the regexp2 engine, ignoring")
			}
		}
	}
	return nil
}
