// =============================================================================
// Expense Intake - CSV Parser Module
// =============================================================================
//
// This module decodes delimited-text uploads into a header row and data rows.
// It does not know which columns are required; the fileparser package applies
// that contract on top of the decoded table.
//
// FEATURES:
//   - Configurable delimiter via config.CSVSettings
//   - UTF-8 byte order mark stripped from the first header
//   - Lazy quoting: a bare quote inside an unquoted field is kept as text
//   - Rows may be shorter or longer than the header row
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/expense-intake/internal/config"
)

// ErrNoHeader is returned when the stream holds no records at all.
var ErrNoHeader = errors.New("no header row")

const bom = "\uFEFF"

// =============================================================================
// CSV DATA STRUCTURE
// =============================================================================

// Data is a decoded delimited-text table.
type Data struct {
	// Headers contains the cleaned column labels from the first record.
	Headers []string

	// Rows contains the data records in file order, with blank records
	// removed. A row may have fewer or more cells than Headers.
	Rows [][]string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Decode reads a delimited-text stream.
//
// PARAMETERS:
//   - r: The upload content.
//   - settings: Delimiter settings from the configuration.
//
// RETURNS:
//   - The decoded table.
//   - An error if the content is not valid delimited text or has no header.
func Decode(r io.Reader, settings config.CSVSettings) (*Data, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	if err := configureReader(reader, settings); err != nil {
		return nil, err
	}

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, ErrNoHeader
	}

	data := &Data{
		Headers: cleanHeaders(allRows[0]),
		Rows:    make([][]string, 0, len(allRows)-1),
	}

	for _, row := range allRows[1:] {
		if isRowEmpty(row) {
			continue
		}
		data.Rows = append(data.Rows, row)
	}

	return data, nil
}

// configureReader applies the settings to the CSV reader.
func configureReader(reader *csv.Reader, settings config.CSVSettings) error {
	comma, err := settings.Comma()
	if err != nil {
		return err
	}
	reader.Comma = comma

	// Allow a variable number of fields per row.
	reader.FieldsPerRecord = -1

	// Keep bare quotes such as 27" monitor as literal text.
	reader.LazyQuotes = true

	reader.TrimLeadingSpace = true
	reader.ReuseRecord = false
	return nil
}

// cleanHeaders trims header values and names empty headers by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		if i == 0 {
			header = strings.TrimPrefix(header, bom)
		}
		header = strings.TrimSpace(header)

		if header == "" {
			header = fmt.Sprintf("column_%d", i+1)
		}

		cleaned[i] = header
	}

	return cleaned
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
