package repatch

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Apply ordered regex patch rules to text files"
	MsgRulesShort      = "List the configured targets and rules"
	MsgRulesLong       = "Rules lists every target with its rules in the order they are applied. No file is read."
	MsgConfigShort     = "Print or write the effective configuration"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate the man page"

	// Status messages
	MsgConfigSource  = "config: %s"
	MsgConfigBuiltin = "config: built-in defaults"
	MsgConfigWritten = "Wrote %s"
	MsgConfigExists  = "%s already exists, not overwriting"
	MsgConfigDryRun  = "Would write %s"
	MsgVersionFormat = "repatch version %s\n  commit: %s\n  built:  %s\n"

	// Error messages
	MsgErrRoot       = "failed to resolve working root: %w"
	MsgErrLoadConfig = "failed to load configuration: %w"
	MsgErrPatch      = "failed to patch: %w"
	MsgErrRender     = "failed to render output: %w"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig  = "Config file to use instead of the one found in the working root"
	MsgFlagRoot    = "Working root that relative target paths resolve against (default: $REPATCH_ROOT or the current directory)"
	MsgFlagDryRun  = "Apply the rules and show the diff without writing any file"
	MsgFlagNoColor = "Disable colored output"
	MsgFlagStrict  = "Fail when a rule matches nothing (same as on_no_match = \"error\")"
	MsgFlagDiff    = "Show a diff of every changed file"
	MsgFlagWrite   = "Write the configuration to .repatch.toml in the working root"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/root-example.txt
	msgRootExampleRaw string
	MsgRootExample    = strings.TrimRight(msgRootExampleRaw, "\n")

	//go:embed msgs/config-long.txt
	msgConfigLongRaw string
	MsgConfigLong    = strings.TrimSpace(msgConfigLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
