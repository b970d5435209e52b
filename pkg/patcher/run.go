package patcher

import (
	"github.com/arthur-debert/repatch/pkg/errors"
	"github.com/arthur-debert/repatch/pkg/logging"
	"github.com/arthur-debert/repatch/pkg/types"
)

// staged is a target that has been loaded and patched in memory
type staged struct {
	doc     *Document
	patched string
	result  *types.TargetResult
}

// Run patches every target. Nothing is written unless every target loads and
// every rule applies; with DryRun nothing is written at all.
func (p *Patcher) Run(targets []types.Target) (*types.RunResult, error) {
	defer logging.LogOperationStart(p.logger, "patch run")()

	if len(targets) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "no targets to patch")
	}

	// Compile up front so a bad rule in the last target fails before any I/O
	compiled := make([][]*CompiledRule, len(targets))
	for i, t := range targets {
		rules, err := CompileAll(t.Rules)
		if err != nil {
			return nil, errors.Wrapf(err, errors.GetErrorCode(err), "target %s", t.Path).
				WithDetail("path", t.Path)
		}
		compiled[i] = rules
	}

	// Capacity is fixed so the staged result pointers stay valid
	result := &types.RunResult{
		Targets: make([]types.TargetResult, 0, len(targets)),
		DryRun:  p.dryRun,
	}
	var pending []*staged
	seen := make(map[string]string, len(targets))

	for i, t := range targets {
		st, err := p.stage(t, compiled[i])
		if err != nil {
			return nil, err
		}
		// Every target starts from the bytes on disk, so a file may appear once
		if prev, ok := seen[st.doc.Real]; ok {
			return nil, errors.Newf(errors.ErrInvalidInput, "targets %s and %s are the same file %s", prev, t.Path, st.doc.Real).
				WithDetail("path", st.doc.Real)
		}
		seen[st.doc.Real] = t.Path

		result.Targets = append(result.Targets, *st.result)
		st.result = &result.Targets[len(result.Targets)-1]
		if st.result.Changed {
			pending = append(pending, st)
		}
	}

	if p.dryRun {
		p.logger.Info().Int("changed", len(pending)).Msg("Dry run, nothing written")
		return result, nil
	}

	if err := p.commit(pending); err != nil {
		return nil, err
	}

	p.logger.Info().
		Int("targets", len(result.Targets)).
		Int("changed", result.ChangedTargets()).
		Int("matches", result.TotalMatches()).
		Msg("Patch run complete")
	return result, nil
}

func (p *Patcher) stage(t types.Target, rules []*CompiledRule) (*staged, error) {
	doc, err := p.Load(t.Path, t.Encoding)
	if err != nil {
		return nil, err
	}

	res := &types.TargetResult{Path: doc.Path, Original: doc.Text}
	text := doc.Text
	for _, rule := range rules {
		var rr types.RuleResult
		text, rr, err = Apply(text, rule)
		if err != nil {
			return nil, errors.Wrapf(err, errors.GetErrorCode(err), "target %s", doc.Path).
				WithDetail("path", doc.Path)
		}
		res.Rules = append(res.Rules, rr)

		if err := p.checkMatch(doc.Path, rr); err != nil {
			return nil, err
		}
		p.logger.Debug().
			Str("path", doc.Path).
			Str("rule", rr.Rule).
			Int("matches", rr.Matches).
			Str("status", string(rr.Status)).
			Msg("Applied rule")
	}

	res.Patched = text
	res.Changed = text != doc.Text
	return &staged{doc: doc, patched: text, result: res}, nil
}

func (p *Patcher) checkMatch(path string, rr types.RuleResult) error {
	if rr.Status != types.RuleNoMatch {
		return nil
	}
	switch p.policy {
	case types.NoMatchError:
		return errors.Newf(errors.ErrNoMatch, "rule %s matched nothing in %s", rr.Rule, path).
			WithDetail("path", path).
			WithDetail("rule", rr.Rule)
	case types.NoMatchWarn:
		p.logger.Warn().
			Str("path", path).
			Str("rule", rr.Rule).
			Msg("Rule matched nothing")
	}
	return nil
}

// commit saves every staged target. On failure the targets already written
// get their original bytes back.
func (p *Patcher) commit(pending []*staged) error {
	var written []*staged
	for _, st := range pending {
		if err := p.Save(st.doc, st.patched); err != nil {
			p.rollback(written)
			return err
		}
		st.result.Written = true
		written = append(written, st)
	}
	return nil
}

func (p *Patcher) rollback(written []*staged) {
	for i := len(written) - 1; i >= 0; i-- {
		st := written[i]
		if err := p.write(st.doc, st.doc.Original); err != nil {
			p.logger.Error().Err(err).Str("path", st.doc.Path).Msg("Rollback failed")
			continue
		}
		st.result.Written = false
		p.logger.Warn().Str("path", st.doc.Path).Msg("Rolled back target")
	}
}
