// =============================================================================
// Expense Intake - File Parser
// =============================================================================
//
// This module turns an uploaded byte stream into an ordered list of raw
// records. It picks a decoder from the filename suffix, normalizes column
// labels and enforces the required-column contract.
//
// PARSING PROCESS:
//   1. Read the whole stream (empty content is rejected first)
//   2. Select the decoder: .csv -> csvparser, .xlsx/.xls -> xlsxparser
//   3. Lower-case and trim every column label
//   4. Check the six required columns are present
//   5. Project every row onto the six columns, dropping blank rows
//
// ERRORS:
//   Decoder failures never leak their cause. Callers see ErrDecodeFailure
//   and its generic message; the cause is only logged at debug level.
//
// =============================================================================

package fileparser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/expense-intake/internal/config"
	"github.com/ginjaninja78/expense-intake/internal/csvparser"
	"github.com/ginjaninja78/expense-intake/internal/logger"
	"github.com/ginjaninja78/expense-intake/internal/types"
	"github.com/ginjaninja78/expense-intake/internal/xlsxparser"
)

// =============================================================================
// ERRORS
// =============================================================================

// Input-format errors. Their messages are safe to show to end users.
var (
	ErrEmptyFile         = errors.New("Empty file. Please upload a .csv or .xlsx with data.")
	ErrUnsupportedFormat = errors.New("Unsupported file type. Upload .csv or .xlsx")
	ErrDecodeFailure     = errors.New("Failed to read file. Please verify the format and try again.")
	ErrMissingColumns    = errors.New("missing required columns")
)

// MissingColumnsError names the required columns an upload lacks.
type MissingColumnsError struct {
	Missing []string
}

// Error implements the error interface.
func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("Missing required columns: %s. Required: %s",
		strings.Join(e.Missing, ", "),
		strings.Join(types.RequiredColumns, ", "),
	)
}

// Is makes errors.Is(err, ErrMissingColumns) true.
func (e *MissingColumnsError) Is(target error) bool {
	return target == ErrMissingColumns
}

// IsInputError reports whether err is one of the input-format errors.
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyFile) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrDecodeFailure) ||
		errors.Is(err, ErrMissingColumns)
}

// =============================================================================
// PARSER
// =============================================================================

// Parser decodes uploads. The zero value uses comma-separated text.
type Parser struct {
	CSV config.CSVSettings
}

// New returns a parser using the given delimited-text settings.
func New(settings config.CSVSettings) *Parser {
	return &Parser{CSV: settings}
}

// Parse decodes r using the suffix of filename to pick the format.
//
// PARAMETERS:
//   - ctx: Carries the logger.
//   - r: The upload content.
//   - filename: Advisory name used only for its suffix.
//
// RETURNS:
//   - The records in source order, restricted to the required columns.
//   - One of the input-format errors.
func (p *Parser) Parse(ctx context.Context, r io.Reader, filename string) ([]types.RawRecord, error) {
	log := logger.FromContext(ctx)

	content, err := io.ReadAll(r)
	if err != nil {
		log.Debug().Err(err).Str("file", filename).Msg("read failed")
		return nil, ErrDecodeFailure
	}
	if len(content) == 0 {
		return nil, ErrEmptyFile
	}

	var (
		headers []string
		rows    [][]any
	)

	switch strings.ToLower(filepath.Ext(strings.TrimSpace(filename))) {
	case ".csv":
		headers, rows, err = p.decodeCSV(content)
	case ".xlsx", ".xls":
		headers, rows, err = decodeSpreadsheet(content)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		log.Debug().Err(err).Str("file", filename).Msg("decode failed")
		return nil, ErrDecodeFailure
	}

	return project(headers, rows)
}

// ParseFile opens path and parses it. The file is closed on every path.
func (p *Parser) ParseFile(ctx context.Context, path string) ([]types.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return p.Parse(ctx, f, filepath.Base(path))
}

// Parse decodes r with the default settings.
func Parse(ctx context.Context, r io.Reader, filename string) ([]types.RawRecord, error) {
	return (&Parser{}).Parse(ctx, r, filename)
}

// =============================================================================
// DECODERS
// =============================================================================

func (p *Parser) decodeCSV(content []byte) ([]string, [][]any, error) {
	data, err := csvparser.Decode(bytes.NewReader(content), p.CSV)
	if err != nil {
		return nil, nil, err
	}

	rows := make([][]any, len(data.Rows))
	for i, row := range data.Rows {
		values := make([]any, len(row))
		for j, cell := range row {
			values[j] = cell
		}
		rows[i] = values
	}
	return data.Headers, rows, nil
}

func decodeSpreadsheet(content []byte) ([]string, [][]any, error) {
	data, err := xlsxparser.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, nil, err
	}

	dateCol := -1
	for i, h := range data.Headers {
		if normalizeLabel(h) == "date" {
			dateCol = i
			break
		}
	}

	rows := make([][]any, len(data.Rows))
	for i, row := range data.Rows {
		values := make([]any, len(row))
		for j, cell := range row {
			if j == dateCol {
				if t, ok := cell.Time(); ok {
					values[j] = t
					continue
				}
			}
			values[j] = cell.Value()
		}
		rows[i] = values
	}
	return data.Headers, rows, nil
}

// =============================================================================
// COLUMN CONTRACT
// =============================================================================

// project maps decoded rows onto the required columns.
func project(headers []string, rows [][]any) ([]types.RawRecord, error) {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		label := normalizeLabel(h)
		if _, seen := index[label]; !seen {
			index[label] = i
		}
	}

	var missing []string
	for _, col := range types.RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	records := make([]types.RawRecord, 0, len(rows))
	for _, row := range rows {
		rec := make(types.RawRecord, len(types.RequiredColumns))
		empty := true
		for _, col := range types.RequiredColumns {
			v := cellValue(row, index[col])
			rec[col] = v
			if v != nil {
				empty = false
			}
		}
		if empty {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// cellValue returns the value at i, or nil when the cell is missing or blank.
func cellValue(row []any, i int) any {
	if i >= len(row) {
		return nil
	}
	if s, ok := row[i].(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}
	return row[i]
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
