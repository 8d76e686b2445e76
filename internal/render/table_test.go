package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ginjaninja78/expense-intake/internal/reports"
	"github.com/ginjaninja78/expense-intake/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, Table(buf, []string{"A", "Name"}, [][]string{{"1", "Taxi"}, {"22", "Café"}}))

	want := "" +
		"| A   | Name |\n" +
		"| --- | ---- |\n" +
		"| 1   | Taxi |\n" +
		"| 22  | Café |\n"
	assert.Equal(t, want, buf.String())
}

func TestTable_WideCharacters(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, Table(buf, []string{"Desc", "X"}, [][]string{{"出張", "1"}, {"ab", "2"}}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| Desc | X   |", lines[0])
	assert.Equal(t, "| 出張 | 1   |", lines[2])
	assert.Equal(t, "| ab   | 2   |", lines[3])
}

func TestTable_TruncatesAllButLastColumn(t *testing.T) {
	long := strings.Repeat("x", MaxCellWidth+10)
	buf := &bytes.Buffer{}
	require.NoError(t, Table(buf, []string{"A", "B"}, [][]string{{long, long}}))

	assert.Contains(t, buf.String(), "...")
	assert.Contains(t, buf.String(), long)
}

func TestTable_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, Table(buf, nil, nil))
	assert.Empty(t, buf.String())
}

func TestBatch(t *testing.T) {
	batch := &types.ValidationBatch{
		Valid: []types.RowResult{{Row: 1, Data: types.Expense{
			Date: "2025-01-15", Amount: 100, Currency: "USD",
			Department: "Engineering", Category: "Travel", Description: "Team lunch",
		}}},
		Invalid: []types.RowResult{{Row: 2, Data: types.Expense{Currency: "EUR"}, Errors: []types.Issue{
			{Code: types.CurrencyNotUSD, Message: "Currency must be 'USD'"},
		}}},
		TotalRows: 2, ValidRows: 1, InvalidRows: 1,
	}

	buf := &bytes.Buffer{}
	require.NoError(t, Batch(buf, batch))

	out := buf.String()
	assert.Contains(t, out, "Rows: 2 total, 1 valid, 1 invalid")
	assert.Contains(t, out, "| 1   | 2025-01-15 | 100.00 |")
	assert.Contains(t, out, "CURRENCY_NOT_USD: Currency must be 'USD'")
}

func TestReportAndRejection(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, Report(buf, &types.Report{
		ID: "r-1", CreatedAt: "2025-03-01T00:00:00Z", Currency: "USD",
		TotalAmount: 12.5, ItemsCount: 1,
		Expenses: []types.Expense{{Amount: 12.5, Description: "Taxi"}},
	}))
	assert.Contains(t, buf.String(), "Report r-1")
	assert.Contains(t, buf.String(), "Total: 12.50 USD")

	buf.Reset()
	require.NoError(t, Rejection(buf, &reports.RejectionError{
		Message:      reports.RejectionMessage,
		Invalid:      []reports.InvalidRow{{Row: 3, Errors: []types.Issue{{Code: types.AmountInvalid, Message: "Amount must be a number"}}}},
		ValidCount:   2,
		InvalidCount: 1,
	}))
	assert.Contains(t, buf.String(), reports.RejectionMessage)
	assert.Contains(t, buf.String(), "Valid: 2, invalid: 1")
	assert.Contains(t, buf.String(), "AMOUNT_INVALID")
}
