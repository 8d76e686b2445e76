package fileparser

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/expense-intake/internal/config"
	"github.com/ginjaninja78/expense-intake/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const header = "Date,Amount,Currency,Department,Category,Description\n"

func parse(t *testing.T, content, filename string) ([]types.RawRecord, error) {
	t.Helper()
	return Parse(context.Background(), strings.NewReader(content), filename)
}

func TestParse_CSV(t *testing.T) {
	records, err := parse(t, header+`2025-01-15,100,usd,Engineering,Travel,"Team lunch"`+"\n", "expenses.csv")
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, types.RawRecord{
		"date":        "2025-01-15",
		"amount":      "100",
		"currency":    "usd",
		"department":  "Engineering",
		"category":    "Travel",
		"description": "Team lunch",
	}, records[0])
}

func TestParse_BareQuoteIsText(t *testing.T) {
	content := header +
		"2025-01-15,300,USD,Engineering,Office Supplies,27\" monitor\n" +
		"2025-01-16,12,USD,Sales,Meals,Lunch\n"

	records, err := parse(t, content, "x.csv")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "27\" monitor", records[0]["description"])
	assert.Equal(t, "Lunch", records[1]["description"])
}

func TestParse_LabelsAndExtraColumns(t *testing.T) {
	content := " DESCRIPTION ,Notes,category,Department,currency,AMOUNT,date\n" +
		"Taxi,ignored,Travel,Sales,USD,12.5,2025-01-02\n"

	records, err := parse(t, content, "Upload.CSV")
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.NotContains(t, records[0], "notes")
	assert.Len(t, records[0], 6)
	assert.Equal(t, "Taxi", records[0]["description"])
	assert.Equal(t, "12.5", records[0]["amount"])
}

func TestParse_DuplicateLabelFirstWins(t *testing.T) {
	content := "date,amount,currency,department,category,description,Amount\n" +
		"2025-01-02,1,USD,Sales,Travel,Taxi,999\n"

	records, err := parse(t, content, "a.csv")
	require.NoError(t, err)
	assert.Equal(t, "1", records[0]["amount"])
}

func TestParse_BlankCellsAndRows(t *testing.T) {
	content := header +
		"2025-01-02,,USD,Sales,Travel,Taxi\n" +
		",,,,,\n" +
		"2025-01-03,5\n"

	records, err := parse(t, content, "a.csv")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Nil(t, records[0]["amount"])
	assert.Contains(t, records[0], "amount")
	assert.Equal(t, "5", records[1]["amount"])
	assert.Nil(t, records[1]["description"])
}

func TestParse_RowsEmptyInRequiredColumnsDropped(t *testing.T) {
	content := "date,amount,currency,department,category,description,notes\n" +
		",,,,,,only a note\n" +
		"2025-01-02,1,USD,Sales,Travel,Taxi,\n"

	records, err := parse(t, content, "a.csv")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "2025-01-02", records[0]["date"])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		filename string
		want     error
	}{
		{"empty", "", "a.csv", ErrEmptyFile},
		{"empty wins over suffix", "", "a.pdf", ErrEmptyFile},
		{"unsupported", "data", "a.txt", ErrUnsupportedFormat},
		{"no suffix", "data", "expenses", ErrUnsupportedFormat},
		{"csv without records", "\n\n", "a.csv", ErrDecodeFailure},
		{"not a workbook", header, "a.xlsx", ErrDecodeFailure},
		{"legacy workbook", "\xd0\xcf\x11\xe0\xa1\xb1\x1a\xe1garbage", "a.xls", ErrDecodeFailure},
		{"missing column", "date,amount,currency,department,description\n", "a.csv", ErrMissingColumns},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(t, tt.content, tt.filename)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsInputError(err))
		})
	}
}

func TestParse_MissingColumnsNamesThem(t *testing.T) {
	_, err := parse(t, "date,amount,currency,department,description\n2025-01-02,1,USD,Sales,Taxi\n", "a.csv")

	var mce *MissingColumnsError
	require.True(t, errors.As(err, &mce))
	assert.Equal(t, []string{"category"}, mce.Missing)
	assert.Equal(t,
		"Missing required columns: category. Required: date, amount, currency, department, category, description",
		err.Error())
}

func TestParse_DecodeFailureHidesCause(t *testing.T) {
	_, err := parse(t, "PK\x03\x04truncated", "a.xlsx")
	assert.Equal(t, "Failed to read file. Please verify the format and try again.", err.Error())
}

func TestParse_Semicolon(t *testing.T) {
	p := New(config.CSVSettings{Delimiter: ";"})
	content := "date;amount;currency;department;category;description\n2025-01-02;1,5;USD;Sales;Travel;Taxi\n"

	records, err := p.Parse(context.Background(), strings.NewReader(content), "a.csv")
	require.NoError(t, err)
	assert.Equal(t, "1,5", records[0]["amount"])
}

func TestParse_Spreadsheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Date", "Amount", "Currency", "Department", "Category", "Description"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{45672, 42.5, "usd", "Engineering", "Travel", "Hotel"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"2025-01-16 00:00:00", "abc", "USD", "Sales", "Meals", "Dinner"}))
	style, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Sheet1", "A2", "A2", style))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	records, err := Parse(context.Background(), bytes.NewReader(buf.Bytes()), "upload.xlsx")
	require.NoError(t, err)
	require.Len(t, records, 2)

	date, ok := records[0]["date"].(time.Time)
	require.True(t, ok, "date-formatted serial decodes as a date")
	assert.Equal(t, "2025-01-15", date.Format("2006-01-02"))
	assert.Equal(t, 42.5, records[0]["amount"])
	assert.Equal(t, "usd", records[0]["currency"])

	assert.Equal(t, "2025-01-16 00:00:00", records[1]["date"])
	assert.Equal(t, "abc", records[1]["amount"])
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "expenses.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+"2025-01-02,1,USD,Sales,Travel,Taxi\n"), 0o644))

	records, err := (&Parser{}).ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = (&Parser{}).ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
	assert.False(t, IsInputError(err))
}
