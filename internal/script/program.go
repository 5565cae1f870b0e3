package script

import (
	"context"
	"io"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/born-ml/micrograd/internal/telemetry"
)

// DefaultOutput is the attribute used as the output when a file defines it.
const DefaultOutput = "y"

// attribute is one compiled top-level attribute.
type attribute struct {
	expr      *expr
	nameRange hcl.Range
}

// Program is a compiled graph file.
type Program struct {
	filename string
	attrs    map[string]*attribute
	names    []string           // source order
	order    []string           // dependency order
	params   map[string]float64 // attributes defined by a plain number
}

// Loader parses graph files and keeps their sources for diagnostic output.
// A Loader is not safe for concurrent use; the Programs it returns are.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load reads and compiles the graph file at path.
func (l *Loader) Load(ctx context.Context, path string) (*Program, hcl.Diagnostics) {
	logger := telemetry.FromContext(ctx)
	logger.Debug("Loading graph file.", "path", path)

	file, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, diags
	}
	prog, compileDiags := compileFile(file, path)
	diags = append(diags, compileDiags...)
	if diags.HasErrors() {
		return nil, diags
	}

	logger.Debug("Compiled graph file.", "path", path, "attributes", len(prog.names), "parameters", len(prog.params))
	return prog, diags
}

// Parse compiles graph source held in memory. filename is used in diagnostics.
func (l *Loader) Parse(src []byte, filename string) (*Program, hcl.Diagnostics) {
	file, diags := l.parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}
	prog, compileDiags := compileFile(file, filename)
	diags = append(diags, compileDiags...)
	if diags.HasErrors() {
		return nil, diags
	}
	return prog, diags
}

// WriteDiagnostics renders diags with source snippets from the files this
// Loader has parsed.
func (l *Loader) WriteDiagnostics(w io.Writer, diags hcl.Diagnostics) error {
	return hcl.NewDiagnosticTextWriter(w, l.parser.Files(), 0, false).WriteDiagnostics(diags)
}

// Compile compiles graph source held in memory with a throwaway Loader.
func Compile(src []byte, filename string) (*Program, hcl.Diagnostics) {
	return NewLoader().Parse(src, filename)
}

func compileFile(file *hcl.File, filename string) (*Program, hcl.Diagnostics) {
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Unsupported file format",
			Detail:   "Graph files must use native HCL syntax.",
		}}
	}

	var diags hcl.Diagnostics
	for _, block := range body.Blocks {
		diags = append(diags, errorDiag(
			"Unexpected block",
			"Graph files may only contain attributes such as \"y = x * 2\".",
			block.TypeRange,
		))
	}

	prog := &Program{
		filename: filename,
		attrs:    make(map[string]*attribute, len(body.Attributes)),
		params:   make(map[string]float64),
	}

	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, attr := range body.Attributes {
		attrs = append(attrs, attr)
	}
	slices.SortFunc(attrs, func(a, b *hclsyntax.Attribute) int {
		return a.SrcRange.Start.Byte - b.SrcRange.Start.Byte
	})

	for _, attr := range attrs {
		e, exprDiags := compileExpr(attr.Expr)
		diags = append(diags, exprDiags...)
		if exprDiags.HasErrors() {
			continue
		}
		prog.attrs[attr.Name] = &attribute{expr: e, nameRange: attr.NameRange}
		prog.names = append(prog.names, attr.Name)
		if e.kind == exprNumber {
			prog.params[attr.Name] = e.num
		}
	}
	if diags.HasErrors() {
		return nil, diags
	}

	order, orderDiags := orderAttributes(prog.names, prog.attrs)
	diags = append(diags, orderDiags...)
	if diags.HasErrors() {
		return nil, diags
	}
	prog.order = order

	return prog, diags
}

// Filename returns the name the program was compiled from.
func (p *Program) Filename() string {
	return p.filename
}

// Names returns all attribute names in source order.
func (p *Program) Names() []string {
	return slices.Clone(p.names)
}

// Params returns the parameter names, sorted.
func (p *Program) Params() []string {
	names := make([]string, 0, len(p.params))
	for name := range p.params {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Param returns the value a parameter is defined with.
func (p *Program) Param(name string) (float64, bool) {
	v, ok := p.params[name]
	return v, ok
}

// Output returns the default output attribute: DefaultOutput if the file
// defines it, otherwise the last attribute in source order. Returns "" for an
// empty file.
func (p *Program) Output() string {
	if _, ok := p.attrs[DefaultOutput]; ok {
		return DefaultOutput
	}
	if len(p.names) == 0 {
		return ""
	}
	return p.names[len(p.names)-1]
}
