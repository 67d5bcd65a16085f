package probe

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	tbl "housing-etl/internal/table"
)

// Render writes every section of p to w as terminal tables.
func Render(w io.Writer, p Profile) error {
	if _, err := fmt.Fprintf(w, "Shape: (%d, %d)\n\n", p.Rows, len(p.Columns)); err != nil {
		return err
	}
	renderColumns(w, p)
	if err := RenderRows(w, names(p), p.Head); err != nil {
		return err
	}
	renderSummary(w, p)
	return nil
}

// RenderHead writes the first n rows of t.
func RenderHead(w io.Writer, t *tbl.Table, n int) error {
	rows := make([][]any, 0, n)
	for r := 0; r < min(n, t.Len()); r++ {
		rows = append(rows, t.Row(r))
	}
	return RenderRows(w, t.Names(), rows)
}

// RenderRows writes rows under a header of names; nil cells print as NaN.
func RenderRows(w io.Writer, names []string, rows [][]any) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}
	tw := newWriter(w)
	tw.AppendHeader(header("", names...))
	for i, row := range rows {
		out := table.Row{i}
		for _, v := range row {
			out = append(out, cell(v))
		}
		tw.AppendRow(out)
	}
	tw.Render()
	_, err := fmt.Fprintf(w, "(%d rows)\n\n", len(rows))
	return err
}

func renderColumns(w io.Writer, p Profile) {
	tw := newWriter(w)
	tw.AppendHeader(table.Row{"column", "type", "nulls"})
	for _, c := range p.Columns {
		tw.AppendRow(table.Row{c.Name, c.Type.String(), c.Nulls})
	}
	tw.Render()
	fmt.Fprintln(w)
}

func renderSummary(w io.Writer, p Profile) {
	tw := newWriter(w)
	tw.AppendHeader(table.Row{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"})
	n := 0
	for _, c := range p.Columns {
		if c.Summary == nil {
			continue
		}
		s := c.Summary
		tw.AppendRow(table.Row{c.Name, s.Count, num(s.Mean), num(s.Std), num(s.Min), num(s.P25), num(s.P50), num(s.P75), num(s.Max)})
		n++
	}
	if n == 0 {
		fmt.Fprintln(w, "(no numeric columns)")
		return
	}
	tw.Render()
}

func newWriter(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	return tw
}

func header(first string, rest ...string) table.Row {
	row := table.Row{first}
	for _, n := range rest {
		row = append(row, n)
	}
	return row
}

func names(p Profile) []string {
	out := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		out[i] = c.Name
	}
	return out
}

func cell(v any) string {
	if v == nil {
		return "NaN"
	}
	return tbl.FormatCell(v)
}

func num(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', 4, 64)
}
