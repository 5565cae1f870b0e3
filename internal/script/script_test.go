package script_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/micrograd/internal/autodiff"
	"github.com/born-ml/micrograd/internal/autodiff/ops"
	"github.com/born-ml/micrograd/internal/script"
)

const sanitySrc = `
x = -4
z = 2*x + 2 + x
q = relu(z) + z*x
h = relu(z*z)
y = h + q + q*x
`

func compile(t *testing.T, src string) *script.Program {
	t.Helper()
	prog, diags := script.Compile([]byte(src), "test.hcl")
	require.False(t, diags.HasErrors(), diags.Error())
	return prog
}

func eval(t *testing.T, prog *script.Program, overrides map[string]float64) *script.Graph {
	t.Helper()
	g, err := prog.Eval(context.Background(), overrides)
	require.NoError(t, err)
	return g
}

func TestCompile_Sanity(t *testing.T) {
	prog := compile(t, sanitySrc)

	assert.Equal(t, []string{"x", "z", "q", "h", "y"}, prog.Names())
	assert.Equal(t, []string{"x"}, prog.Params())
	assert.Equal(t, "y", prog.Output())
	assert.Equal(t, "test.hcl", prog.Filename())

	x, ok := prog.Param("x")
	require.True(t, ok)
	assert.Equal(t, -4.0, x)

	_, ok = prog.Param("z")
	assert.False(t, ok)
}

func TestEval_SanityGradients(t *testing.T) {
	g := eval(t, compile(t, sanitySrc), nil)

	y, err := g.Get("y")
	require.NoError(t, err)
	autodiff.Backward(y)

	assert.Equal(t, -20.0, y.Data())

	got := make(map[string]float64)
	for _, name := range g.Names() {
		v, ok := g.Lookup(name)
		require.True(t, ok, name)
		got[name] = v.Grad()
	}
	want := map[string]float64{"x": 46, "z": -8, "q": -3, "h": 1, "y": 1}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("gradients mismatch (-want +got):\n%s", diff)
	}
}

func TestEval_OrderIndependent(t *testing.T) {
	// Attributes may refer to names defined later in the file.
	prog := compile(t, "y = a * b\na = b + 1\nb = 3\n")
	g := eval(t, prog, nil)

	y, err := g.Get("y")
	require.NoError(t, err)
	assert.Equal(t, 12.0, y.Data())
	assert.Equal(t, []string{"b"}, prog.Params())
}

func TestEval_ReferencesShareNodes(t *testing.T) {
	g := eval(t, compile(t, "x = 3\ny = x + x\n"), nil)

	x, _ := g.Lookup("x")
	y, _ := g.Lookup("y")
	operands := y.Operands()
	require.Len(t, operands, 2)
	assert.Same(t, x, operands[0])
	assert.Same(t, x, operands[1])

	autodiff.Backward(y)
	assert.Equal(t, 2.0, x.Grad())
}

func TestEval_LiteralsAreFreshConstants(t *testing.T) {
	g := eval(t, compile(t, "y = 2 * 2\n"), nil)

	y, _ := g.Lookup("y")
	operands := y.Operands()
	require.Len(t, operands, 2)
	assert.NotSame(t, operands[0], operands[1])
	assert.Equal(t, ops.Constant, operands[0].Op())
}

func TestEval_SubAndNeg(t *testing.T) {
	g := eval(t, compile(t, "a = 5\nb = 2\nd = a - b\ny = -d * (a + 1)\n"), nil)

	y, _ := g.Lookup("y")
	autodiff.Backward(y)

	a, _ := g.Lookup("a")
	b, _ := g.Lookup("b")
	// y = -(a-b)(a+1) = -(a^2 + a - ab - b)
	assert.Equal(t, -18.0, y.Data())
	assert.Equal(t, -(2*5 + 1 - 2.0), a.Grad())
	assert.Equal(t, 5.0+1, b.Grad())
}

func TestEval_Labels(t *testing.T) {
	g := eval(t, compile(t, "x = 1\nalias = x\ny = alias * 2\n"), nil)

	x, _ := g.Lookup("x")
	alias, _ := g.Lookup("alias")
	assert.Same(t, x, alias)
	assert.Equal(t, "x", x.Label(), "first name in source order wins")

	y, _ := g.Lookup("y")
	assert.Equal(t, "y", y.Label())
}

func TestEval_Overrides(t *testing.T) {
	prog := compile(t, sanitySrc)

	g := eval(t, prog, map[string]float64{"x": 3})
	x, _ := g.Lookup("x")
	z, _ := g.Lookup("z")
	assert.Equal(t, 3.0, x.Data())
	assert.Equal(t, 11.0, z.Data())

	// Overrides never leak into the program.
	v, _ := prog.Param("x")
	assert.Equal(t, -4.0, v)
}

func TestEval_OverrideErrors(t *testing.T) {
	prog := compile(t, sanitySrc)

	_, err := prog.Eval(context.Background(), map[string]float64{"nope": 1})
	assert.ErrorIs(t, err, script.ErrUnknownName)

	_, err = prog.Eval(context.Background(), map[string]float64{"z": 1})
	assert.ErrorIs(t, err, script.ErrNotParameter)
}

func TestEval_FreshGraphs(t *testing.T) {
	prog := compile(t, sanitySrc)

	first := eval(t, prog, nil)
	second := eval(t, prog, nil)

	x1, _ := first.Lookup("x")
	x2, _ := second.Lookup("x")
	assert.NotSame(t, x1, x2)
}

func TestGraph_GetUnknown(t *testing.T) {
	g := eval(t, compile(t, sanitySrc), nil)

	_, err := g.Get("missing")
	assert.ErrorIs(t, err, script.ErrUnknownName)
}

func TestProgram_OutputFallback(t *testing.T) {
	assert.Equal(t, "b", compile(t, "a = 1\nb = a * 2\n").Output())
	assert.Equal(t, "", compile(t, "").Output())
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		summary string
	}{
		{"division", "x = 1\ny = x / 2\n", "Unsupported operator"},
		{"logical not", "x = 1\ny = !x\n", "Unsupported operator"},
		{"tuple", "y = [1, 2]\n", "Unsupported expression"},
		{"bool", "y = true\n", "Number expected"},
		{"null", "y = null\n", "Number expected"},
		{"unknown name", "y = z * 2\n", "Unknown name"},
		{"cycle", "a = b + 1\nb = a * 2\n", "Reference cycle"},
		{"self reference", "a = a + 1\n", "Reference cycle"},
		{"unknown function", "y = max(1)\n", "Unknown function"},
		{"relu arity", "y = relu(1, 2)\n", "Wrong number of arguments"},
		{"attribute access", "x = 1\ny = x.foo\n", "Unsupported reference"},
		{"block", "node \"x\" {\n}\n", "Unexpected block"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, diags := script.Compile([]byte(tt.src), "bad.hcl")
			require.True(t, diags.HasErrors())
			assert.Nil(t, prog)

			summaries := make([]string, 0, len(diags))
			for _, d := range diags {
				summaries = append(summaries, d.Summary)
				if d.Subject != nil {
					assert.Equal(t, "bad.hcl", d.Subject.Filename)
				}
			}
			assert.Contains(t, summaries, tt.summary)
		})
	}
}

func TestCompile_SyntaxError(t *testing.T) {
	_, diags := script.Compile([]byte("y = (1 +\n"), "broken.hcl")
	assert.True(t, diags.HasErrors())
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sanity.hcl")
	require.NoError(t, os.WriteFile(path, []byte(sanitySrc), 0o600))

	prog, diags := script.NewLoader().Load(context.Background(), path)
	require.False(t, diags.HasErrors(), diags.Error())
	assert.Equal(t, path, prog.Filename())
	assert.Equal(t, "y", prog.Output())
}

func TestLoader_WriteDiagnostics(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.hcl")
	require.NoError(t, os.WriteFile(path, []byte("y = missing * 2\n"), 0o600))

	loader := script.NewLoader()
	_, diags := loader.Load(context.Background(), path)
	require.True(t, diags.HasErrors())

	var buf bytes.Buffer
	require.NoError(t, loader.WriteDiagnostics(&buf, diags))
	assert.Contains(t, buf.String(), "Unknown name")
	assert.Contains(t, buf.String(), "missing")
}

func TestLoader_MissingFile(t *testing.T) {
	_, diags := script.NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"))
	assert.True(t, diags.HasErrors())
}
