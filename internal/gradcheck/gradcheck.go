// Package gradcheck verifies backpropagated gradients against finite differences.
//
// For every parameter of a graph program the checker compares the gradient
// computed by autodiff.Backward with the central difference
//
//	(f(p + ε) - f(p - ε)) / 2ε
//
// where f re-evaluates the whole program with the parameter overridden. Each
// re-evaluation builds its own graph, so parameters are checked in parallel.
//
// Finite differences are unreliable next to a ReLU kink; a parameter that
// moves some relu input across zero within ±ε may fail even though the
// analytic gradient is right.
package gradcheck

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/micrograd/internal/autodiff"
	"github.com/born-ml/micrograd/internal/parallel"
	"github.com/born-ml/micrograd/internal/script"
	"github.com/born-ml/micrograd/internal/telemetry"
)

// Config controls the check.
type Config struct {
	Epsilon   float64         // finite-difference step
	Tolerance float64         // relative tolerance, scaled by max(1, |analytic|, |numeric|)
	Parallel  parallel.Config // fan-out over parameters
}

// DefaultConfig returns settings that suit float64 graphs of moderate size.
func DefaultConfig() Config {
	return Config{
		Epsilon:   1e-6,
		Tolerance: 1e-5,
		Parallel:  parallel.DefaultConfig(),
	}
}

// Result is the outcome for one parameter.
type Result struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Analytic float64 `json:"analytic"`
	Numeric  float64 `json:"numeric"`
	AbsErr   float64 `json:"abs_err"`
	OK       bool    `json:"ok"`
}

// Report is the outcome of a whole check.
type Report struct {
	Output  string   `json:"output"`
	Value   float64  `json:"value"`
	Results []Result `json:"results"` // sorted by parameter name
	OK      bool     `json:"ok"`
}

// Check differentiates output with respect to every parameter of prog and
// compares each gradient with its finite-difference estimate.
func Check(ctx context.Context, prog *script.Program, output string, cfg Config) (*Report, error) {
	if cfg.Epsilon <= 0 {
		return nil, fmt.Errorf("gradcheck: epsilon must be positive, got %g", cfg.Epsilon)
	}
	if cfg.Tolerance < 0 {
		return nil, fmt.Errorf("gradcheck: tolerance must not be negative, got %g", cfg.Tolerance)
	}

	logger := telemetry.FromContext(ctx)

	g, err := prog.Eval(ctx, nil)
	if err != nil {
		return nil, err
	}
	root, err := g.Get(output)
	if err != nil {
		return nil, err
	}
	autodiff.Backward(root)

	params := prog.Params()
	results := make([]Result, len(params))
	errs := make([]error, len(params))

	parallel.For(len(params), func(i int) {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			return
		}
		name := params[i]
		leaf, _ := g.Lookup(name)

		plus, err := evalAt(ctx, prog, output, name, leaf.Data()+cfg.Epsilon)
		if err != nil {
			errs[i] = err
			return
		}
		minus, err := evalAt(ctx, prog, output, name, leaf.Data()-cfg.Epsilon)
		if err != nil {
			errs[i] = err
			return
		}

		analytic := leaf.Grad()
		numeric := (plus - minus) / (2 * cfg.Epsilon)
		absErr := math.Abs(analytic - numeric)
		scale := math.Max(1, math.Max(math.Abs(analytic), math.Abs(numeric)))

		results[i] = Result{
			Name:     name,
			Value:    leaf.Data(),
			Analytic: analytic,
			Numeric:  numeric,
			AbsErr:   absErr,
			OK:       absErr <= cfg.Tolerance*scale,
		}
	}, cfg.Parallel)

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("gradcheck: %w", err)
	}

	report := &Report{Output: output, Value: root.Data(), Results: results, OK: true}
	for _, r := range results {
		if !r.OK {
			report.OK = false
			logger.Warn("Gradient mismatch.", "param", r.Name, "analytic", r.Analytic, "numeric", r.Numeric)
		}
	}
	logger.Info("Gradient check finished.", "output", output, "params", len(results), "ok", report.OK)
	return report, nil
}

// evalAt evaluates output with one parameter overridden.
func evalAt(ctx context.Context, prog *script.Program, output, name string, value float64) (float64, error) {
	g, err := prog.Eval(ctx, map[string]float64{name: value})
	if err != nil {
		return 0, err
	}
	v, err := g.Get(output)
	if err != nil {
		return 0, err
	}
	return v.Data(), nil
}
