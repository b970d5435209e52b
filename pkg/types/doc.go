// Package types defines the core types and interfaces used throughout repatch.
// This includes the FS interface the patcher reads and writes through, and
// data structures like Target, Rule, RuleResult and RunResult.
package types
