// Package render draws dashboards as plain text for the operator CLI.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/harborlog/server/internal/harborlog/report"
	"github.com/harborlog/server/internal/harborlog/types"
)

const (
	DefaultBarWidth = 24

	noData = "No data"
	noRows = "No rows in range"
)

var titles = map[types.Variant]string{
	types.VariantRelocation: "Relocation",
	types.VariantHarbor:     "Harbor",
}

var breakdownTitles = map[string]string{
	report.CategoryReason: "By reason",
	report.CategoryStaff:  "By staff",
}

// Printer renders with locale-grouped numbers.
type Printer struct {
	p     *message.Printer
	width int
}

// New returns a Printer for tag. width <= 0 uses DefaultBarWidth.
func New(tag language.Tag, width int) *Printer {
	if width <= 0 {
		width = DefaultBarWidth
	}
	return &Printer{p: message.NewPrinter(tag), width: width}
}

// Default renders for en-GB.
func Default() *Printer {
	return New(language.BritishEnglish, 0)
}

// Report writes the whole dashboard.
func (pr *Printer) Report(w io.Writer, rep types.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s to %s\n\n", title(rep.Variant),
		report.DisplayDay(rep.Start), report.DisplayDay(rep.End))
	b.WriteString(pr.p.Sprintf("Total entries        %d\n", rep.Total))
	b.WriteString(pr.p.Sprintf("Unique participants  %d\n", rep.UniqueParticipants))

	pr.section(&b, "By year group", rep.ByYear)
	pr.section(&b, "By period", rep.ByPeriod)
	for _, c := range rep.Categories {
		name, ok := breakdownTitles[c.Name]
		if !ok {
			name = "By " + c.Name
		}
		pr.section(&b, name, c.Bars)
	}

	b.WriteString("\nDaily trend\n")
	if len(rep.Trend) == 0 {
		b.WriteString("  " + noData + "\n")
	}
	peak := 1
	for _, d := range rep.Trend {
		peak = max(peak, d.Count)
	}
	for _, d := range rep.Trend {
		pct := 100 * float64(d.Count) / float64(peak)
		fmt.Fprintf(&b, "  %-12s %s ", report.DisplayDay(d.Day), pr.Bar(pct, d.Count))
		b.WriteString(pr.p.Sprintf("%d\n", d.Count))
	}

	b.WriteString("\n")
	pr.roster(&b, rep.Roster)

	_, err := io.WriteString(w, b.String())
	return err
}

// Roster writes only the day roster.
func (pr *Printer) Roster(w io.Writer, variant types.Variant, days []types.RosterDay) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s roster\n", title(variant))
	pr.roster(&b, days)
	_, err := io.WriteString(w, b.String())
	return err
}

// Bar draws percent of the configured width. Any non-zero value gets at
// least one cell.
func (pr *Printer) Bar(percent float64, value int) string {
	n := int(math.Round(percent * float64(pr.width) / 100))
	n = min(max(n, 0), pr.width)
	if n == 0 && value > 0 {
		n = 1
	}
	return strings.Repeat("█", n) + strings.Repeat(" ", pr.width-n)
}

func (pr *Printer) section(b *strings.Builder, name string, bars []types.Bar) {
	b.WriteString("\n" + name + "\n")
	total := 0
	for _, bar := range bars {
		total += bar.Value
	}
	if total == 0 {
		b.WriteString("  " + noData + "\n")
		return
	}

	labelWidth := 0
	for _, bar := range bars {
		labelWidth = max(labelWidth, len([]rune(bar.Label)))
	}
	for _, bar := range bars {
		fmt.Fprintf(b, "  %-*s %s ", labelWidth, bar.Label, pr.Bar(bar.Percent, bar.Value))
		b.WriteString(pr.p.Sprintf("%d\n", bar.Value))
	}
}

func (pr *Printer) roster(b *strings.Builder, days []types.RosterDay) {
	if len(days) == 0 {
		b.WriteString("  " + noRows + "\n")
		return
	}
	for _, d := range days {
		fmt.Fprintf(b, "  %s (%s)  %s\n", report.DisplayDay(d.Day), pr.p.Sprintf("%d", d.Unique), d.Preview)
	}
}

func title(v types.Variant) string {
	if t, ok := titles[v]; ok {
		return t
	}
	return string(v)
}
