package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syssam/denorm/collection"
	"github.com/syssam/denorm/internal/shape"
)

func validateCmd() *cobra.Command {
	var src sourceFlags
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the shape of every collection in a graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src.apply(cmd, &cfg.Source)
			if err := cfg.Validate(); err != nil {
				return err
			}

			g, err := loadGraph(cmd.Context(), cfg.Source)
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, name := range g.Names() {
				coll := g[name]
				kind := shape.CollectionKind(coll)
				idx, err := collection.NewIndex(name, coll)
				if err != nil {
					fmt.Fprintf(out, "  %-16s %-9s invalid\n", name, kind)
					continue
				}
				line := fmt.Sprintf("  %-16s %-9s %d", name, kind, idx.Len())
				if dups := collection.Duplicates(coll); len(dups) > 0 {
					line += fmt.Sprintf(" (duplicate ids: %v)", dups)
				}
				fmt.Fprintln(out, line)
			}

			if err := g.Validate(); err != nil {
				return fmt.Errorf("validate: %w", err)
			}
			fmt.Fprintf(out, "\n%d collections OK\n", len(g))
			return nil
		},
	}
	src.register(cmd)
	return cmd
}
