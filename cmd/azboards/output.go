package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/h0rv/azboards/internal/domain"
	"github.com/h0rv/azboards/internal/server"
	"github.com/muesli/reflow/truncate"
)

const maxTitleWidth = 60

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// writeJSON prints the result in the same shape the relay returns.
func writeJSON(w io.Writer, result *domain.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(server.NewFetchResponse(result))
}

// writeTable prints one row per work item, or the empty-result message.
func writeTable(w io.Writer, result *domain.Result) error {
	if result == nil || len(result.WorkItems) == 0 {
		msg := domain.NoResultsMessage
		if result != nil && result.Message != "" {
			msg = result.Message
		}
		_, err := fmt.Fprintln(w, msg)
		return err
	}

	rows := make([][]string, 0, len(result.WorkItems))
	for _, item := range result.WorkItems {
		rows = append(rows, []string{
			strconv.Itoa(item.ID),
			truncate.StringWithTail(item.Title, maxTitleWidth, "…"),
			item.State,
			item.Type,
			item.AssignedTo,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers("ID", "Title", "State", "Type", "Assigned To").
		Rows(rows...)

	_, err := fmt.Fprintf(w, "%s\n%d work items\n", t.Render(), len(rows))
	return err
}
