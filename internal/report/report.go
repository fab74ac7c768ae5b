package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"leadclean/internal"
)

// Summary renders the batch statistics as a pipe table.
func Summary(s internal.Stats) string {
	rows := [][]string{
		{"metric", "value"},
		{"total", fmt.Sprint(s.Total)},
		{"valid email", fmt.Sprint(s.ValidEmail)},
		{"invalid email", fmt.Sprint(s.InvalidEmail)},
		{"missing email", fmt.Sprint(s.MissingEmail)},
		{"disposable email", fmt.Sprint(s.DisposableEmail)},
		{"valid phone", fmt.Sprint(s.ValidPhone)},
		{"inferred last name", fmt.Sprint(s.InferredLastName)},
		{"duplicates", fmt.Sprint(s.Duplicates)},
		{"changed", fmt.Sprintf("%d (%.2f%%)", s.Changed, s.PercentChanged)},
		{"average quality", fmt.Sprintf("%.2f", s.AverageQuality)},
	}
	for i, n := range s.ListCounts {
		rows = append(rows, []string{fmt.Sprintf("list %d", i+1), fmt.Sprint(n)})
	}
	return strings.Join(table(rows), "\n") + "\n"
}

// Changes renders up to limit before/after rows, in input order. A limit
// of zero or less prints every change.
func Changes(contacts []internal.Contact, limit int) string {
	rows := [][]string{{"row", "field", "before", "after", "kind"}}
	for _, c := range contacts {
		fields := make([]string, 0, len(c.ChangeLog))
		for f := range c.ChangeLog {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			if limit > 0 && len(rows)-1 >= limit {
				break
			}
			ch := c.ChangeLog[f]
			rows = append(rows, []string{fmt.Sprint(c.Row), f, ch.Before, ch.After, string(ch.Kind)})
		}
	}
	if len(rows) == 1 {
		return ""
	}
	return strings.Join(table(rows), "\n") + "\n"
}

func Write(w io.Writer, s internal.Stats, contacts []internal.Contact, changeLimit int) error {
	if _, err := io.WriteString(w, Summary(s)); err != nil {
		return err
	}
	if changes := Changes(contacts, changeLimit); changes != "" {
		if _, err := io.WriteString(w, "\n"+changes); err != nil {
			return err
		}
	}
	return nil
}

// table pads cells to display width so wide and accented names line up.
// The first row is the header and gets a dash separator below it.
func table(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	widths := make([]int, colCount)
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		if widths[i] < 3 {
			widths[i] = 3
		}
	}

	line := func(row []string) string {
		var sb strings.Builder
		sb.WriteString("|")
		for j := 0; j < colCount; j++ {
			content := ""
			if j < len(row) {
				content = row[j]
			}
			sb.WriteString(" ")
			sb.WriteString(content)
			if pad := widths[j] - runewidth.StringWidth(content); pad > 0 {
				sb.WriteString(strings.Repeat(" ", pad))
			}
			sb.WriteString(" |")
		}
		return sb.String()
	}

	out := []string{line(rows[0])}
	sep := make([]string, colCount)
	for j := range sep {
		sep[j] = strings.Repeat("-", widths[j])
	}
	out = append(out, line(sep))
	for _, row := range rows[1:] {
		out = append(out, line(row))
	}
	return out
}
