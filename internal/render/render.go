// Package render prints entries and totals for the command line.
package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/baiirun/chew/internal/collection"
	"github.com/baiirun/chew/internal/db"
	"github.com/baiirun/chew/internal/model"
	"github.com/baiirun/chew/internal/nutrition"
	"github.com/baiirun/chew/internal/parse"
)

const (
	boxUnchecked = "☐"
	boxChecked   = "☑"
	maxFoodWidth = 40
)

// Styles
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Strikethrough(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	countStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	calStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	totalStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// Printer writes human-readable output.
type Printer struct {
	w     io.Writer
	plain bool
}

// New returns a Printer writing to w. Plain disables styling.
func New(w io.Writer, plain bool) *Printer {
	return &Printer{w: w, plain: plain}
}

func (p *Printer) style(s lipgloss.Style, text string) string {
	if p.plain {
		return text
	}
	return s.Render(text)
}

// Calories formats a calorie figure with thousands separators.
func Calories(n int) string {
	return humanize.Comma(int64(n)) + " kcal"
}

// ItemLine formats one item: box, order, food, count, cal and its share of
// the total.
func (p *Printer) ItemLine(item model.Item) string {
	box := boxUnchecked
	if item.Done {
		box = boxChecked
	}

	food := item.Food
	if food == "" {
		food = item.Title
	}
	if r := []rune(food); len(r) > maxFoodWidth {
		food = string(r[:maxFoodWidth-3]) + "..."
	}
	food = fmt.Sprintf("%-*s", maxFoodWidth, food)
	if item.Done {
		food = p.style(doneStyle, food)
	}

	cal := "—"
	if item.Cal != "" {
		cal = item.Cal
	}

	line := fmt.Sprintf("%s %3d. %s %s %s",
		p.style(mutedStyle, box), item.Order, food,
		p.style(countStyle, fmt.Sprintf("%-5s", item.Count)),
		p.style(calStyle, fmt.Sprintf("%6s", cal)),
	)
	if !item.Done && !nutrition.Missing(item) {
		line += p.style(mutedStyle, "  = "+Calories(nutrition.Contribution(item)))
	}
	return line + "  " + p.style(mutedStyle, item.ID)
}

// StatsLine formats done, remaining and total.
func (p *Printer) StatsLine(s collection.Stats) string {
	return fmt.Sprintf("%d done · %d remaining · %s",
		s.Done, s.Remaining, p.style(totalStyle, Calories(s.Total)))
}

// List prints all items followed by the stats line.
func (p *Printer) List(name string, items []model.Item, s collection.Stats) {
	fmt.Fprintln(p.w, p.style(titleStyle, name))
	if len(items) == 0 {
		fmt.Fprintln(p.w, p.style(mutedStyle, "no entries"))
	}
	for _, item := range items {
		fmt.Fprintln(p.w, p.ItemLine(item))
	}
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.StatsLine(s))
}

// OK prints a success message.
func (p *Printer) OK(msg string) {
	fmt.Fprintln(p.w, p.style(successStyle, "✔ "+msg))
}

// Entry prints the trace of one parse: count, cal and food.
func (p *Printer) Entry(line string, e parse.Entry) {
	fmt.Fprintln(p.w, line)
	fmt.Fprintln(p.w, "count: "+e.CountValue())
	if e.Cal != nil {
		fmt.Fprintln(p.w, "cal: "+e.Cal.Value)
	}
	fmt.Fprintln(p.w, "food: "+e.Food)
	fmt.Fprintln(p.w)
}

// Collections prints one line per collection summary.
func (p *Printer) Collections(summaries []db.Summary) {
	width := 0
	for _, s := range summaries {
		width = max(width, len(s.Collection))
	}
	for _, s := range summaries {
		fmt.Fprintf(p.w, "%s  %s\n",
			p.style(titleStyle, fmt.Sprintf("%-*s", width, s.Collection)),
			p.StatsLine(collection.Stats{Done: s.Done, Remaining: s.Remaining, Total: s.Total}))
	}
}
