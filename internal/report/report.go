// Package report collects trial outcomes and renders them as a table.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Success is the category of modules that installed and uninstalled cleanly
const Success = "Success"

// Report maps outcome categories to module codes. Categories keep the
// order they were first seen in, codes keep the order they were added in.
type Report struct {
	order []string
	codes map[string][]string
}

// New creates an empty report
func New() *Report {
	return &Report{codes: make(map[string][]string)}
}

// Add records code under category
func (r *Report) Add(category, code string) {
	if _, ok := r.codes[category]; !ok {
		r.order = append(r.order, category)
	}
	r.codes[category] = append(r.codes[category], code)
}

// Categories returns the categories in first-seen order
func (r *Report) Categories() []string {
	return append([]string(nil), r.order...)
}

// Codes returns the module codes recorded under category
func (r *Report) Codes(category string) []string {
	return append([]string(nil), r.codes[category]...)
}

// Count returns how many modules were recorded under category
func (r *Report) Count(category string) int {
	return len(r.codes[category])
}

// Total returns the number of recorded modules
func (r *Report) Total() int {
	n := 0
	for _, codes := range r.codes {
		n += len(codes)
	}
	return n
}

// Empty reports whether nothing was recorded
func (r *Report) Empty() bool {
	return len(r.order) == 0
}

// Table is the plain cell layout of a report
type Table struct {
	Headers []string
	Rows    [][]string
	Footer  []string
}

// Table lays the report out with one column per category. Shorter columns
// are padded with blank cells and the footer holds per-category counts.
func (r *Report) Table() Table {
	t := Table{
		Headers: r.Categories(),
		Footer:  make([]string, len(r.order)),
	}

	depth := 0
	for i, category := range r.order {
		n := len(r.codes[category])
		t.Footer[i] = strconv.Itoa(n)
		if n > depth {
			depth = n
		}
	}

	t.Rows = make([][]string, depth)
	for row := range depth {
		cells := make([]string, len(r.order))
		for col, category := range r.order {
			if codes := r.codes[category]; row < len(codes) {
				cells[col] = codes[row]
			}
		}
		t.Rows[row] = cells
	}
	return t
}

var (
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	successStyle = headerStyle.Foreground(lipgloss.Color("42"))
	failureStyle = headerStyle.Foreground(lipgloss.Color("196"))
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	footerStyle  = cellStyle.Bold(true)
)

// Render draws the report to w
func Render(w io.Writer, r *Report) error {
	if r.Empty() {
		return nil
	}

	t := r.Table()
	footerRow := len(t.Rows)

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow && t.Headers[col] == Success:
				return successStyle
			case row == table.HeaderRow:
				return failureStyle
			case row == footerRow:
				return footerStyle
			default:
				return cellStyle
			}
		}).
		Headers(t.Headers...).
		Rows(t.Rows...).
		Row(t.Footer...)

	_, err := fmt.Fprintln(w, tbl.String())
	return err
}
