package repatch

import (
	"fmt"

	"github.com/arthur-debert/repatch/pkg/config"
	"github.com/arthur-debert/repatch/pkg/logging"
	"github.com/spf13/cobra"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cmd.config")

			root, err := resolveRoot(opts)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(opts, root, nil)
			if err != nil {
				return err
			}

			if !write {
				data, err := config.Render(cfg)
				if err != nil {
					return fmt.Errorf(MsgErrRender, err)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			if opts.dryRun {
				logger.Info().Msg("Dry run, not writing config file")
				_, err := fmt.Fprintf(cmd.OutOrStdout(), MsgConfigDryRun+"\n", config.GeneratedFileName)
				return err
			}

			result, err := config.WriteConfig(cfg, root)
			if err != nil {
				return err
			}

			renderer, err := newRenderer(cmd, opts)
			if err != nil {
				return fmt.Errorf(MsgErrRender, err)
			}
			if result.AlreadyExisted {
				return renderer.RenderMessage("Warning", fmt.Sprintf(MsgConfigExists, result.Path))
			}
			return renderer.RenderMessage("Success", fmt.Sprintf(MsgConfigWritten, result.Path))
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, MsgFlagWrite)
	return cmd
}
