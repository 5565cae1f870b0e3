package cli

import (
	"github.com/spf13/cobra"
)

type nodeView struct {
	Name string  `json:"name"`
	Op   string  `json:"op"`
	Data float64 `json:"data"`
	Grad float64 `json:"grad"`
}

type gradView struct {
	Output string     `json:"output"`
	Nodes  []nodeView `json:"nodes"`
}

func newGradCmd(outputFn func(*cobra.Command) *Output) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "grad FILE",
		Short: "Run backward from the output and print every named node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, name, _, err := differentiate(cmd, args[0], output)
			if err != nil {
				return err
			}

			view := gradView{Output: name}
			var rows [][]string
			for _, n := range g.Names() {
				v, _ := g.Lookup(n)
				view.Nodes = append(view.Nodes, nodeView{
					Name: n,
					Op:   v.Op().String(),
					Data: v.Data(),
					Grad: v.Grad(),
				})
				rows = append(rows, []string{n, v.Op().String(), formatFloat(v.Data()), formatFloat(v.Grad())})
			}

			return outputFn(cmd).Print([]string{"NAME", "OP", "DATA", "GRAD"}, rows, view)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Attribute to differentiate (default \"y\", else the last attribute)")
	return cmd
}
