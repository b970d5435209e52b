package repatch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/repatch/internal/version"
	"github.com/arthur-debert/repatch/pkg/config"
	"github.com/arthur-debert/repatch/pkg/logging"
	"github.com/arthur-debert/repatch/pkg/output"
	"github.com/arthur-debert/repatch/pkg/patcher"
	"github.com/arthur-debert/repatch/pkg/types"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// EnvRoot selects the working root when --root is not given
const EnvRoot = config.EnvPrefix + "ROOT"

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	verbosity  int
	configFile string
	root       string
	dryRun     bool
	noColor    bool
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	opts := &globalOptions{}
	var (
		strict   bool
		showDiff bool
	)

	rootCmd := &cobra.Command{
		Use:     "repatch",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Example: MsgRootExample,
		Version: version.String(),
		Args:    cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(opts.verbosity)
			logging.LogCommand(cmd.CommandPath(), args)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(cmd, opts, strict, showDiff)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVarP(&opts.root, "root", "C", "", MsgFlagRoot)
	rootCmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, MsgFlagNoColor)

	// Patch flags
	rootCmd.Flags().BoolVar(&strict, "strict", false, MsgFlagStrict)
	rootCmd.Flags().BoolVar(&showDiff, "diff", false, MsgFlagDiff)

	// Define command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "COMMANDS:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "misc",
		Title: "MISC:",
	})
	rootCmd.SetHelpCommandGroupID("misc")

	// Set custom help template
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	// Add all commands
	rootCmd.AddCommand(newRulesCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	return rootCmd
}

// resolveRoot returns the working root: --root, then $REPATCH_ROOT, then
// the current directory
func resolveRoot(opts *globalOptions) (string, error) {
	root := opts.root
	if root == "" {
		root = os.Getenv(EnvRoot)
	}
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf(MsgErrRoot, err)
		}
		root = cwd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf(MsgErrRoot, err)
	}
	return abs, nil
}

// loadConfig loads the configuration for the working root
func loadConfig(opts *globalOptions, root string, overrides map[string]interface{}) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		Root:       root,
		ConfigFile: opts.configFile,
		Overrides:  overrides,
	})
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}
	return cfg, nil
}

func newRenderer(cmd *cobra.Command, opts *globalOptions) (*output.Renderer, error) {
	out := cmd.OutOrStdout()
	return output.NewRenderer(out, opts.noColor || !isTerminal(out))
}

func runPatch(cmd *cobra.Command, opts *globalOptions, strict, showDiff bool) error {
	logger := logging.GetLogger("cmd.repatch")

	root, err := resolveRoot(opts)
	if err != nil {
		return err
	}

	var overrides map[string]interface{}
	if strict {
		overrides = map[string]interface{}{"on_no_match": string(types.NoMatchError)}
	}
	cfg, err := loadConfig(opts, root, overrides)
	if err != nil {
		return err
	}

	logger.Info().
		Str("root", root).
		Str("config", cfg.String()).
		Bool("dryRun", opts.dryRun).
		Msg("Starting patch run")

	p, err := patcher.New(patcher.Options{
		Root:      root,
		OnNoMatch: cfg.OnNoMatch,
		DryRun:    opts.dryRun,
	})
	if err != nil {
		return fmt.Errorf(MsgErrPatch, err)
	}

	result, err := p.Run(cfg.Targets)
	if err != nil {
		return fmt.Errorf(MsgErrPatch, err)
	}

	renderer, err := newRenderer(cmd, opts)
	if err != nil {
		return fmt.Errorf(MsgErrRender, err)
	}
	if opts.dryRun || showDiff {
		if err := renderer.RenderDiff(result); err != nil {
			return fmt.Errorf(MsgErrRender, err)
		}
	}
	if err := renderer.RenderRun(result, cfg.Message); err != nil {
		return fmt.Errorf(MsgErrRender, err)
	}
	return nil
}
