package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
)

// Output formats command results as a table or as JSON.
type Output struct {
	jsonMode bool
	w        io.Writer
}

// NewOutput creates an Output writing to w. If jsonMode is set, data is
// written as indented JSON instead of a table.
func NewOutput(w io.Writer, jsonMode bool) *Output {
	return &Output{jsonMode: jsonMode, w: w}
}

// Print writes either the table or jsonData, depending on the mode.
func (o *Output) Print(headers []string, rows [][]string, jsonData any) error {
	if o.jsonMode {
		return o.JSON(jsonData)
	}
	return o.Table(headers, rows)
}

// Table writes rows under headers, aligned with tabwriter.
func (o *Output) Table(headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

// JSON writes v as indented JSON.
func (o *Output) JSON(v any) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatFloat renders numbers for tables.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 8, 64)
}
