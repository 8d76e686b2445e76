// =============================================================================
// Expense Intake - Spreadsheet Parser Module
// =============================================================================
//
// This module decodes spreadsheet uploads into a header row and data rows.
// Only the first sheet is read. The first row of that sheet is the header.
//
// CELL VALUES:
//   Every cell is read twice: once with its number format applied (the text
//   a user sees) and once raw (the stored value). Keeping both lets callers
//   recover numbers as numbers and date-formatted serials as dates.
//
//   | Stored        | Number format | Raw      | Formatted    |
//   |---------------|---------------|----------|--------------|
//   | 12.5          | General       | 12.5     | 12.5         |
//   | 45672         | mm-dd-yy      | 45672    | 01-15-25     |
//   | "Team lunch"  | (text)        | Team ... | Team ...     |
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheets is returned when the workbook has no worksheet.
var ErrNoSheets = errors.New("workbook has no sheets")

// ErrNoHeader is returned when the first sheet has no rows.
var ErrNoHeader = errors.New("no header row")

// =============================================================================
// DATA STRUCTURES
// =============================================================================

// Cell is one spreadsheet cell.
type Cell struct {
	// Raw is the stored value without number formatting.
	Raw string

	// Formatted is the value as displayed with its number format.
	Formatted string

	// Numeric is true when the cell stores a number.
	Numeric bool
}

// Empty reports whether the cell holds nothing but whitespace.
func (c Cell) Empty() bool {
	return strings.TrimSpace(c.Raw) == "" && strings.TrimSpace(c.Formatted) == ""
}

// Value returns the cell as a float64 when it stores a number, otherwise
// as its displayed text.
func (c Cell) Value() any {
	if c.Numeric {
		if f, err := strconv.ParseFloat(c.Raw, 64); err == nil {
			return f
		}
	}
	return c.Formatted
}

// Time interprets a numeric cell whose display differs from its stored
// value (for example a serial number shown through a date format) as a
// date. It returns false for any other cell.
func (c Cell) Time() (time.Time, bool) {
	if !c.Numeric || c.Raw == c.Formatted {
		return time.Time{}, false
	}
	if _, err := strconv.ParseFloat(strings.ReplaceAll(c.Formatted, ",", ""), 64); err == nil {
		// Only a numeric format such as "0.00" was applied.
		return time.Time{}, false
	}

	serial, err := strconv.ParseFloat(c.Raw, 64)
	if err != nil || serial <= 0 {
		return time.Time{}, false
	}

	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Data is a decoded sheet.
type Data struct {
	// SheetName is the name of the sheet that was read.
	SheetName string

	// Headers contains the trimmed labels from the first row.
	Headers []string

	// Rows contains the data rows in sheet order with blank rows removed.
	Rows [][]Cell
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Decode reads the first sheet of a workbook.
//
// PARAMETERS:
//   - r: The upload content.
//
// RETURNS:
//   - The decoded sheet.
//   - An error if the content is not a readable workbook.
func Decode(r io.Reader) (*Data, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoSheets
	}

	formatted, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	raw, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read raw rows: %w", err)
	}

	if len(formatted) == 0 {
		return nil, ErrNoHeader
	}

	data := &Data{
		SheetName: sheetName,
		Headers:   cleanHeaders(formatted[0]),
		Rows:      make([][]Cell, 0, len(formatted)-1),
	}

	for i := 1; i < len(formatted); i++ {
		row := make([]Cell, len(formatted[i]))
		for j, text := range formatted[i] {
			cell := Cell{Raw: text, Formatted: text}
			if i < len(raw) && j < len(raw[i]) {
				cell.Raw = raw[i][j]
			}
			cell.Numeric = isNumericCell(f, sheetName, j+1, i+1, cell.Raw)
			row[j] = cell
		}

		if isRowEmpty(row) {
			continue
		}
		data.Rows = append(data.Rows, row)
	}

	return data, nil
}

// isNumericCell reports whether the cell at (col, row) stores a number.
func isNumericCell(f *excelize.File, sheet string, col, row int, raw string) bool {
	if raw == "" {
		return false
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}
	typ, err := f.GetCellType(sheet, axis)
	if err != nil {
		return false
	}
	switch typ {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		_, err := strconv.ParseFloat(raw, 64)
		return err == nil
	default:
		return false
	}
}

// cleanHeaders trims header values and names empty headers by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []Cell) bool {
	for _, cell := range row {
		if !cell.Empty() {
			return false
		}
	}
	return true
}
