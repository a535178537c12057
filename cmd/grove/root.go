package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/phanxgames/grove/internal/logging"
)

type globalFlags struct {
	logLevel string
	debug    bool
	gravity  float64
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "grove",
		Short:         "Grove is an entity-component scene graph toolkit",
		Long:          `Grove builds scene graphs from YAML or JSON prefabs and drives them frame by frame.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable structural warnings for deep or wide trees")
	root.PersistentFlags().Float64Var(&flags.gravity, "gravity", 0, "Vertical gravity for the physics space")

	root.AddCommand(
		newInspectCmd(flags),
		newValidateCmd(flags),
		newWatchCmd(flags),
		newComponentsCmd(flags),
	)
	return root
}

func (f *globalFlags) logger(cmd *cobra.Command) (*slog.Logger, error) {
	level, err := logging.ParseLevel(f.logLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewWithWriter(cmd.ErrOrStderr(), level), nil
}
