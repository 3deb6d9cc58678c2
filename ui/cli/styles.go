// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	colorSubtle    = lipgloss.Color("240") // Muted gray
	colorHighlight = lipgloss.Color("81")  // Teal
	colorError     = lipgloss.Color("196") // Bright red
	colorSuccess   = lipgloss.Color("40")  // Green
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorHighlight).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().Foreground(colorSubtle)

	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorHighlight).
			Padding(0, 2)

	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)

	headerCellStyle = lipgloss.NewStyle().Foreground(colorHighlight).Bold(true).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
)

// renderTable writes rows under headers as a bordered table.
func renderTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(subtitleStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		})
	_, _ = io.WriteString(w, t.Render()+"\n")
}

func itoa[T ~int | ~int64](n T) string {
	return strconv.FormatInt(int64(n), 10)
}

// result prints a success or error line.
func result(w io.Writer, ok bool, msg string) {
	if ok {
		_, _ = io.WriteString(w, successStyle.Render(msg)+"\n")
		return
	}
	_, _ = io.WriteString(w, errorStyle.Render(msg)+"\n")
}
