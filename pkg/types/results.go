package types

// RuleStatus is the outcome of applying one rule
type RuleStatus string

const (
	RuleApplied        RuleStatus = "applied"
	RuleAlreadyApplied RuleStatus = "already-applied"
	RuleNoMatch        RuleStatus = "no-match"
)

// RuleResult reports how one rule fared against its target
type RuleResult struct {
	Rule    string     `json:"rule"`
	Matches int        `json:"matches"`
	Status  RuleStatus `json:"status"`
}

// TargetResult reports what a run did to one target
type TargetResult struct {
	Path     string       `json:"path"`
	Rules    []RuleResult `json:"rules"`
	Changed  bool         `json:"changed"`
	Written  bool         `json:"written"`
	Original string       `json:"-"`
	Patched  string       `json:"-"`
}

// NoMatches returns the rules that matched nothing and had no guard hit
func (t TargetResult) NoMatches() []RuleResult {
	var missing []RuleResult
	for _, r := range t.Rules {
		if r.Status == RuleNoMatch {
			missing = append(missing, r)
		}
	}
	return missing
}

// RunResult is the outcome of a full run over every configured target
type RunResult struct {
	Targets []TargetResult `json:"targets"`
	DryRun  bool           `json:"dryRun"`
}

// TotalMatches sums the matches of every rule on every target
func (r *RunResult) TotalMatches() int {
	total := 0
	for _, t := range r.Targets {
		for _, rr := range t.Rules {
			total += rr.Matches
		}
	}
	return total
}

// ChangedTargets counts targets whose content differs after patching
func (r *RunResult) ChangedTargets() int {
	n := 0
	for _, t := range r.Targets {
		if t.Changed {
			n++
		}
	}
	return n
}
