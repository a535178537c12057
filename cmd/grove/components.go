package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phanxgames/grove"
)

func newComponentsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "components",
		Short: "List registered component types and their schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := flags.logger(cmd)
			if err != nil {
				return err
			}
			s, err := newScene(logger, flags)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			for _, name := range s.graph.ComponentTypes() {
				fmt.Fprintln(out, name)
				c, err := s.graph.CreateComponent(name, nil)
				if err != nil {
					return err
				}
				sc, ok := c.(grove.Schemer)
				if !ok {
					continue
				}
				schema := sc.Schema()
				for _, prop := range schema.Names() {
					fmt.Fprintf(out, "  %s: %s\n", prop, schema[prop])
				}
			}
			return nil
		},
	}
}
