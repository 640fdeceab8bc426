// Package render prints reports and table profiles as aligned text.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mfonekpo/springer-capital/internal/domain"
	"github.com/mfonekpo/springer-capital/internal/profile"
)

// Null is printed for null cells.
const Null = "—"

// Report prints up to maxRows rows of rep, followed by a footer counting the
// rows left out and the valid/invalid totals. maxRows <= 0 prints every row.
func Report(w io.Writer, rep domain.Report, maxRows int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(domain.ReportColumns, "\t"))

	shown := rep.Rows
	if maxRows > 0 && len(shown) > maxRows {
		shown = shown[:maxRows]
	}
	cells := make([]string, len(domain.ReportColumns))
	for _, r := range shown {
		for i, v := range r.Values() {
			cells[i] = cell(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if rest := len(rep.Rows) - len(shown); rest > 0 {
		fmt.Fprintf(w, "... and %d more rows\n", rest)
	}
	_, err := fmt.Fprintf(w, "rows=%d valid=%d invalid=%d\n", len(rep.Rows), rep.Valid, rep.Invalid)
	return err
}

// Profiles prints the column profiles of every table, tables in name order.
func Profiles(w io.Writer, profiles map[string][]profile.Column) error {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		cols := profiles[n]
		if len(cols) == 0 {
			fmt.Fprintf(w, "== %s (empty)\n\n", n)
			continue
		}
		fmt.Fprintf(w, "== %s (%d rows)\n", n, cols[0].RowCount)

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "column\ttype\tnull %\tdistinct %\ttop\trange")
		for _, c := range cols {
			top := Null
			if c.HasTop {
				top = fmt.Sprintf("%s → %d", c.TopValue, c.TopFreq)
			}
			rng := Null
			if c.HasRange {
				rng = fmt.Sprintf("%d..%d", c.Min, c.Max)
			}
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%s\t%s\n",
				c.Column, c.DataType, c.NullPct, c.DistinctPct, top, rng)
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("render: %w", err)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return Null
	case time.Time:
		return t.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprint(t)
	}
}
