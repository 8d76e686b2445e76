package validation

import (
	"testing"
	"time"

	"github.com/ginjaninja78/expense-intake/internal/refdata"
	"github.com/ginjaninja78/expense-intake/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 30, 23, 30, 0, 0, time.UTC)

func newValidator() *Validator {
	ref := refdata.New(
		[]string{"Travel", "Meals", "Office Supplies"},
		[]string{"Engineering", "Sales"},
	)
	return New(ref, WithClock(func() time.Time { return fixedNow }))
}

func validRecord() types.RawRecord {
	return types.RawRecord{
		"date":        "2025-01-15",
		"amount":      "100",
		"currency":    "usd",
		"department":  "Engineering",
		"category":    "Travel",
		"description": "Team lunch",
	}
}

func codes(issues []types.Issue) []types.IssueCode {
	out := make([]types.IssueCode, len(issues))
	for i, is := range issues {
		out[i] = is.Code
	}
	return out
}

func TestValidate_ValidRow(t *testing.T) {
	issues := newValidator().Validate(validRecord())
	assert.NotNil(t, issues)
	assert.Empty(t, issues)
}

func TestValidate_MultipleIssuesInRuleOrder(t *testing.T) {
	rec := types.RawRecord{
		"amount":      -5,
		"currency":    "EUR",
		"description": "ok",
		"date":        "2099-01-01",
		"department":  "",
		"category":    "Travel",
	}

	issues := newValidator().Validate(rec)

	assert.Equal(t, []types.IssueCode{
		types.AmountNonPositive,
		types.CurrencyNotUSD,
		types.DescriptionTooShort,
		types.DateInFuture,
		types.DepartmentRequired,
	}, codes(issues))
}

func TestValidate_SingleRules(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   any
		code    types.IssueCode
		message string
	}{
		{"amount missing", "amount", nil, types.AmountInvalid, "Amount must be a number"},
		{"amount empty", "amount", "", types.AmountInvalid, "Amount must be a number"},
		{"amount text", "amount", "abc", types.AmountInvalid, "Amount must be a number"},
		{"amount zero", "amount", 0.0, types.AmountNonPositive, "Amount must be > 0"},
		{"amount negative string", "amount", "-0.01", types.AmountNonPositive, "Amount must be > 0"},
		{"currency missing", "currency", nil, types.CurrencyRequired, "Currency is required"},
		{"currency blank", "currency", "   ", types.CurrencyRequired, "Currency is required"},
		{"currency other", "currency", "EUR", types.CurrencyNotUSD, "Currency must be 'USD'"},
		{"description short", "description", " ab ", types.DescriptionTooShort, "Description must be at least 3 characters"},
		{"description missing", "description", nil, types.DescriptionTooShort, "Description must be at least 3 characters"},
		{"date missing", "date", nil, types.DateInvalid, "Date is required"},
		{"date blank", "date", "  ", types.DateInvalid, "Date is required"},
		{"date garbage", "date", "15.01.2025", types.DateInvalid, "Invalid date format"},
		{"date with time", "date", "2025-01-15 00:00:00", types.DateInvalid, "Invalid date format"},
		{"date impossible", "date", "2025-02-30", types.DateInvalid, "Invalid date format"},
		{"date number", "date", 45672.0, types.DateInvalid, "Invalid date type"},
		{"date tomorrow", "date", "2025-07-01", types.DateInFuture, "Future date not allowed"},
		{"date future timestamp", "date", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), types.DateInFuture, "Future date not allowed"},
		{"department missing", "department", nil, types.DepartmentRequired, "Department is required"},
		{"department unknown", "department", "Legal", types.DepartmentInvalid, "Department is not allowed"},
		{"category blank", "category", " ", types.CategoryRequired, "Category is required"},
		{"category unknown", "category", "Gifts", types.CategoryInvalid, "Category is not allowed"},
	}

	v := newValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			rec[tt.field] = tt.value

			issues := v.Validate(rec)

			require.Len(t, issues, 1)
			assert.Equal(t, tt.code, issues[0].Code)
			assert.Equal(t, tt.message, issues[0].Message)
		})
	}
}

func TestValidate_AcceptedVariants(t *testing.T) {
	tests := []struct {
		field string
		value any
	}{
		{"date", "2025-1-5"},
		{"date", "01-15-2025"},
		{"date", "1/15/2025"},
		{"date", "2025/01/15"},
		{"date", "2025-06-30"},
		{"date", time.Date(2025, 6, 30, 23, 59, 0, 0, time.UTC)},
		{"amount", 0.01},
		{"amount", 12},
		{"amount", " 7.5 "},
		{"currency", " Usd "},
		{"department", "  engineering "},
		{"category", "OFFICE SUPPLIES"},
		{"description", "Taxi"},
		{"description", "café"},
	}

	v := newValidator()
	for _, tt := range tests {
		rec := validRecord()
		rec[tt.field] = tt.value
		assert.Empty(t, v.Validate(rec), "%s=%v", tt.field, tt.value)
	}
}

func TestValidate_DescriptionCountsCharacters(t *testing.T) {
	rec := validRecord()
	rec["description"] = "ñé"

	issues := newValidator().Validate(rec)
	assert.Equal(t, []types.IssueCode{types.DescriptionTooShort}, codes(issues))
}

func TestParseDate_LayoutOrder(t *testing.T) {
	d, msg := ParseDate("01-02-2025")
	require.Empty(t, msg)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), d)

	d, msg = ParseDate("2025/12/31")
	require.Empty(t, msg)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), d)
}

func TestValidateRaw(t *testing.T) {
	rec := validRecord()
	rec["amount"] = "12,50"
	rec["date"] = "2025-01-15 00:00:00"

	expense, issues := newValidator().ValidateRaw(rec)

	assert.Equal(t, 0.0, expense.Amount)
	assert.Equal(t, "2025-01-15", expense.Date)
	assert.Equal(t, "USD", expense.Currency)
	assert.Equal(t, []types.IssueCode{types.AmountInvalid, types.DateInvalid}, codes(issues))
}

func TestNew_DefaultClock(t *testing.T) {
	v := New(refdata.New([]string{"Travel"}, []string{"Sales"}))

	rec := validRecord()
	rec["department"] = "Sales"
	rec["date"] = time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")

	assert.Equal(t, []types.IssueCode{types.DateInFuture}, codes(v.Validate(rec)))
}

func TestFormatIssues(t *testing.T) {
	out := FormatIssues([]types.Issue{
		{Code: types.AmountInvalid, Message: "Amount must be a number"},
		{Code: types.CategoryRequired, Message: "Category is required"},
	})
	assert.Equal(t, "AMOUNT_INVALID: Amount must be a number; CATEGORY_REQUIRED: Category is required", out)
	assert.Equal(t, "", FormatIssues(nil))
}
