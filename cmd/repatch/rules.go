package repatch

import (
	"fmt"

	"github.com/arthur-debert/repatch/pkg/config"
	"github.com/spf13/cobra"
)

func newRulesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rules",
		Short:   MsgRulesShort,
		Long:    MsgRulesLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := resolveRoot(opts)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(opts, root, nil)
			if err != nil {
				return err
			}

			renderer, err := newRenderer(cmd, opts)
			if err != nil {
				return fmt.Errorf(MsgErrRender, err)
			}
			if err := renderer.RenderMessage("Muted", configSource(cfg)); err != nil {
				return fmt.Errorf(MsgErrRender, err)
			}
			if err := renderer.RenderRules(cfg.Targets); err != nil {
				return fmt.Errorf(MsgErrRender, err)
			}
			return nil
		},
	}
}

func configSource(cfg *config.Config) string {
	if cfg.Source == "" {
		return MsgConfigBuiltin
	}
	return fmt.Sprintf(MsgConfigSource, cfg.Source)
}
