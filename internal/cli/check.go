package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/born-ml/micrograd/internal/gradcheck"
	"github.com/born-ml/micrograd/internal/parallel"
)

// ErrGradientMismatch is returned by check when any parameter fails.
var ErrGradientMismatch = errors.New("gradient check failed")

func newCheckCmd(outputFn func(*cobra.Command) *Output) *cobra.Command {
	var (
		output  string
		workers int
	)
	defaults := gradcheck.DefaultConfig()
	cfg := defaults

	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Compare gradients of every parameter with finite differences",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case workers < 0:
				return fmt.Errorf("--workers must not be negative, got %d", workers)
			case workers == 1:
				cfg.Parallel = parallel.Sequential()
			case workers > 1:
				cfg.Parallel.NumWorkers = workers
			}

			prog, err := loadProgram(cmd, args[0])
			if err != nil {
				return err
			}
			name, err := outputName(prog, output)
			if err != nil {
				return err
			}

			report, err := gradcheck.Check(cmd.Context(), prog, name, cfg)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(report.Results))
			for _, r := range report.Results {
				status := "ok"
				if !r.OK {
					status = "FAIL"
				}
				rows = append(rows, []string{
					r.Name,
					formatFloat(r.Value),
					formatFloat(r.Analytic),
					formatFloat(r.Numeric),
					formatFloat(r.AbsErr),
					status,
				})
			}
			headers := []string{"PARAM", "VALUE", "ANALYTIC", "NUMERIC", "ABS_ERR", "STATUS"}
			if err := outputFn(cmd).Print(headers, rows, report); err != nil {
				return err
			}

			if !report.OK {
				return fmt.Errorf("%s: %w", name, ErrGradientMismatch)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Attribute to differentiate (default \"y\", else the last attribute)")
	cmd.Flags().Float64Var(&cfg.Epsilon, "epsilon", defaults.Epsilon, "Finite-difference step")
	cmd.Flags().Float64Var(&cfg.Tolerance, "tolerance", defaults.Tolerance, "Relative tolerance")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel workers, 1 for sequential (default: number of CPUs)")
	return cmd
}
