package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/eduflexsms/eduflex/core/attendance"
)

var (
	colorPresent = lipgloss.Color("#8BC34A")
	colorAbsent  = lipgloss.Color("#e53935")
	colorMuted   = lipgloss.Color("#9e9e9e")
)

// table renders rows in padded columns.
type table struct {
	headers []string
	rows    [][]string
}

func newTable(headers ...string) *table {
	return &table{headers: headers}
}

func (t *table) addRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(r *lipgloss.Renderer) string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	header := r.NewStyle().Bold(true)
	var sb strings.Builder
	writeRow := func(cells []string, style lipgloss.Style) {
		for i := range widths {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			if i == len(widths)-1 {
				sb.WriteString(style.Render(cell))
				break
			}
			sb.WriteString(style.Width(widths[i] + 2).Render(cell))
		}
		sb.WriteString("\n")
	}

	writeRow(t.headers, header)
	for _, row := range t.rows {
		writeRow(row, r.NewStyle())
	}
	return sb.String()
}

// statusCell renders an attendance status as a single letter.
func statusCell(r *lipgloss.Renderer, s attendance.Status) string {
	switch s {
	case attendance.Present:
		return r.NewStyle().Foreground(colorPresent).Render("P")
	case attendance.Absent:
		return r.NewStyle().Foreground(colorAbsent).Render("A")
	}
	return r.NewStyle().Foreground(colorMuted).Render("-")
}

// recordCell renders a fee or tute status.
func recordCell(r *lipgloss.Renderer, rt attendance.RecordType, s attendance.Status) string {
	if s != attendance.Present {
		return r.NewStyle().Foreground(colorMuted).Render("due")
	}
	if rt == attendance.RecordTute {
		return r.NewStyle().Foreground(colorPresent).Render("given")
	}
	return r.NewStyle().Foreground(colorPresent).Render("paid")
}
