package cli

import (
	"github.com/spf13/cobra"

	"github.com/born-ml/micrograd/internal/graphviz"
)

func newDotCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "dot FILE",
		Short: "Run backward and print the graph in Graphviz DOT format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, root, err := differentiate(cmd, args[0], output)
			if err != nil {
				return err
			}
			return graphviz.Write(cmd.OutOrStdout(), root)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Attribute to render (default \"y\", else the last attribute)")
	return cmd
}
