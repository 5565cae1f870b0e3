// Package cli implements the micrograd command line tool.
//
// Every command takes a graph file (see package script), evaluates it and
// works on one output attribute, "y" by default:
//   - grad: run backward and print data and gradient of every named node
//   - dot: run backward and print the graph in Graphviz DOT format
//   - check: compare gradients with finite differences
//
// Results go to stdout, logs and diagnostics to stderr, so output can be
// piped: micrograd dot model.hcl | dot -Tsvg > model.svg
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/born-ml/micrograd/internal/autodiff"
	"github.com/born-ml/micrograd/internal/script"
	"github.com/born-ml/micrograd/internal/telemetry"
)

var (
	// ErrInvalidGraph is returned when a graph file fails to compile.
	// The diagnostics themselves are written to stderr.
	ErrInvalidGraph = errors.New("invalid graph file")
	// ErrNoOutput is returned when a graph file has no attributes to differentiate.
	ErrNoOutput = errors.New("graph file defines no attributes")
)

// options holds the persistent flags.
type options struct {
	logLevel  string
	logFormat string
	json      bool
}

// NewRootCmd builds the micrograd command tree.
func NewRootCmd(version string) *cobra.Command {
	env := telemetry.ConfigFromEnv()
	opts := &options{logLevel: env.Level, logFormat: env.Format}

	rootCmd := &cobra.Command{
		Use:           "micrograd",
		Short:         "Evaluate and differentiate scalar graph files",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := telemetry.SetupLogger(telemetry.Config{
				Level:  opts.logLevel,
				Format: opts.logFormat,
				Output: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(telemetry.WithLogger(ctx, logger))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", opts.logLevel, "Log level: debug, info, warn, error (env LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", opts.logFormat, "Log format: text or json (env LOG_FORMAT)")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Output in JSON format")

	outputFn := func(cmd *cobra.Command) *Output { return NewOutput(cmd.OutOrStdout(), opts.json) }

	rootCmd.AddCommand(
		newGradCmd(outputFn),
		newDotCmd(),
		newCheckCmd(outputFn),
		newVersionCmd(version),
	)

	return rootCmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "micrograd %s\n", version)
			return err
		},
	}
}

// loadProgram compiles the graph file at path, writing any diagnostics to stderr.
func loadProgram(cmd *cobra.Command, path string) (*script.Program, error) {
	loader := script.NewLoader()
	prog, diags := loader.Load(cmd.Context(), path)
	if len(diags) > 0 {
		if err := loader.WriteDiagnostics(cmd.ErrOrStderr(), diags); err != nil {
			return nil, err
		}
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidGraph)
	}
	return prog, nil
}

// outputName picks the attribute to differentiate: the flag value if set,
// otherwise the program's default output.
func outputName(prog *script.Program, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if name := prog.Output(); name != "" {
		return name, nil
	}
	return "", fmt.Errorf("%s: %w", prog.Filename(), ErrNoOutput)
}

// differentiate loads path, evaluates it and runs backward from the output.
func differentiate(cmd *cobra.Command, path, outputFlag string) (*script.Graph, string, *autodiff.Value, error) {
	prog, err := loadProgram(cmd, path)
	if err != nil {
		return nil, "", nil, err
	}
	name, err := outputName(prog, outputFlag)
	if err != nil {
		return nil, "", nil, err
	}
	g, err := prog.Eval(cmd.Context(), nil)
	if err != nil {
		return nil, "", nil, err
	}
	root, err := g.Get(name)
	if err != nil {
		return nil, "", nil, err
	}

	autodiff.Backward(root)
	telemetry.FromContext(cmd.Context()).Debug("Backward pass done.",
		"output", name,
		"nodes", len(autodiff.TopologicalOrder(root)),
	)
	return g, name, root, nil
}
