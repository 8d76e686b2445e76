// =============================================================================
// Expense Intake - Terminal Rendering
// =============================================================================
//
// This module prints batches and reports as pipe tables for the CLI.
// Column widths are measured in display cells, so descriptions with wide or
// accented characters still line up.
//
// =============================================================================

package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ginjaninja78/expense-intake/internal/reports"
	"github.com/ginjaninja78/expense-intake/internal/types"
	"github.com/ginjaninja78/expense-intake/internal/validation"
	"github.com/mattn/go-runewidth"
)

// MaxCellWidth caps the display width of a single cell.
const MaxCellWidth = 48

// Table writes headers and rows as a pipe table.
func Table(w io.Writer, headers []string, rows [][]string) error {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	table := make([][]string, 0, len(rows)+1)
	table = append(table, headers)
	table = append(table, rows...)

	// Calculate max widths (using display width).
	colWidths := make([]int, colCount)
	for _, row := range table {
		for i := 0; i < len(row); i++ {
			width := runewidth.StringWidth(cell(row, i, colCount))
			if width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}
	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	var sb strings.Builder
	for i, row := range table {
		writeRow(&sb, row, colWidths)
		if i == 0 {
			sb.WriteString("|")
			for _, width := range colWidths {
				sb.WriteString(" ")
				sb.WriteString(strings.Repeat("-", width))
				sb.WriteString(" |")
			}
			sb.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeRow(sb *strings.Builder, row []string, colWidths []int) {
	sb.WriteString("|")
	for j, width := range colWidths {
		content := cell(row, j, len(colWidths))
		sb.WriteString(" ")
		sb.WriteString(content)
		if padding := width - runewidth.StringWidth(content); padding > 0 {
			sb.WriteString(strings.Repeat(" ", padding))
		}
		sb.WriteString(" |")
	}
	sb.WriteString("\n")
}

// cell returns the i-th value of row. Every column but the last is
// truncated to MaxCellWidth.
func cell(row []string, i, colCount int) string {
	if i >= len(row) {
		return ""
	}
	if i == colCount-1 {
		return row[i]
	}
	return runewidth.Truncate(row[i], MaxCellWidth, "...")
}

// =============================================================================
// DOMAIN VIEWS
// =============================================================================

var expenseHeaders = []string{"Row", "Date", "Amount", "Currency", "Department", "Category", "Description"}

func expenseRow(row int, e types.Expense) []string {
	return []string{
		strconv.Itoa(row),
		e.Date,
		strconv.FormatFloat(e.Amount, 'f', 2, 64),
		e.Currency,
		e.Department,
		e.Category,
		e.Description,
	}
}

// Batch writes a validation batch: counts, valid rows, then invalid rows
// with their issues.
func Batch(w io.Writer, batch *types.ValidationBatch) error {
	if _, err := fmt.Fprintf(w, "Rows: %d total, %d valid, %d invalid\n",
		batch.TotalRows, batch.ValidRows, batch.InvalidRows); err != nil {
		return err
	}

	if len(batch.Valid) > 0 {
		rows := make([][]string, len(batch.Valid))
		for i, r := range batch.Valid {
			rows[i] = expenseRow(r.Row, r.Data)
		}
		if _, err := fmt.Fprintln(w, "\nValid rows:"); err != nil {
			return err
		}
		if err := Table(w, expenseHeaders, rows); err != nil {
			return err
		}
	}

	if len(batch.Invalid) > 0 {
		return invalidTable(w, "Invalid rows:", batch.Invalid)
	}
	return nil
}

// Report writes a report header followed by its expenses.
func Report(w io.Writer, r *types.Report) error {
	if _, err := fmt.Fprintf(w, "Report %s\nCreated: %s\nItems: %d\nTotal: %.2f %s\n\n",
		r.ID, r.CreatedAt, r.ItemsCount, r.TotalAmount, r.Currency); err != nil {
		return err
	}

	rows := make([][]string, len(r.Expenses))
	for i, e := range r.Expenses {
		rows[i] = expenseRow(i+1, e)
	}
	return Table(w, expenseHeaders, rows)
}

// Rejection writes a rejected submission.
func Rejection(w io.Writer, rej *reports.RejectionError) error {
	if _, err := fmt.Fprintf(w, "%s\nValid: %d, invalid: %d\n",
		rej.Message, rej.ValidCount, rej.InvalidCount); err != nil {
		return err
	}

	results := make([]types.RowResult, len(rej.Invalid))
	for i, inv := range rej.Invalid {
		results[i] = types.RowResult{Row: inv.Row, Data: inv.Data, Errors: inv.Errors}
	}
	return invalidTable(w, "Invalid rows:", results)
}

func invalidTable(w io.Writer, title string, results []types.RowResult) error {
	headers := append(append([]string{}, expenseHeaders...), "Issues")
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = append(expenseRow(r.Row, r.Data), validation.FormatIssues(r.Errors))
	}

	if _, err := fmt.Fprintf(w, "\n%s\n", title); err != nil {
		return err
	}
	return Table(w, headers, rows)
}
