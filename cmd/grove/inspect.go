package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phanxgames/grove/prefab"
)

func newInspectCmd(flags *globalFlags) *cobra.Command {
	var (
		frames int
		dt     float64
		format string
	)
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Build a prefab, run frames and print the resulting subtree",
		Long: `Instantiates the prefab, steps the scene the requested number of frames
and prints the serialized subtree, so tweens, scripts and physics can be
checked without opening a window.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := outputFormat(format)
			if err != nil {
				return err
			}
			logger, err := flags.logger(cmd)
			if err != nil {
				return err
			}
			s, err := newScene(logger, flags)
			if err != nil {
				return err
			}
			defer s.Close()

			e, err := s.load(args[0])
			if err != nil {
				return err
			}
			r := s.runner()
			q := r.Run(frames, dt)

			data, err := prefab.Encode(e.Serialize(), out)
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(data); err != nil {
				return err
			}
			stats := s.graph.Stats()
			logger.Info("inspected",
				"file", args[0],
				"frames", r.Frame(),
				"entities", stats.Entities-1,
				"components", stats.Components,
				"commands", q.Len(),
				"bodies", s.space.Bodies(),
				"mirrored", s.bridge.Mirrored(),
			)
			return nil
		},
	}
	cmd.Flags().IntVar(&frames, "frames", 0, "Number of frames to run before printing")
	cmd.Flags().Float64Var(&dt, "dt", 1.0/60, "Seconds per frame")
	cmd.Flags().StringVarP(&format, "output", "o", "yaml", "Output format (yaml or json)")
	return cmd
}

func outputFormat(name string) (prefab.Format, error) {
	switch name {
	case "yaml", "yml":
		return prefab.FormatYAML, nil
	case "json":
		return prefab.FormatJSON, nil
	}
	return 0, fmt.Errorf("%w: %q", prefab.ErrUnsupportedFormat, name)
}
