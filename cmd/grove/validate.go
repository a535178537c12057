package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errInvalid = errors.New("one or more prefabs are invalid")

func newValidateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check that prefabs parse and build",
		Long:  `Builds each prefab into a fresh scene graph and reports entity and component counts.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := flags.logger(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			failed := false
			for _, path := range args {
				s, err := newScene(logger, flags)
				if err != nil {
					return err
				}
				e, err := s.load(path)
				if err != nil {
					failed = true
					fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
				} else {
					n, c := e.Serialize().Count()
					fmt.Fprintf(out, "ok   %s: %d entities, %d components, depth %d\n",
						path, n, c, s.graph.Stats().MaxDepth-1)
				}
				if err := s.Close(); err != nil {
					logger.Warn("close scene", "file", path, "error", err)
				}
			}
			if failed {
				return errInvalid
			}
			return nil
		},
	}
}
