// =============================================================================
// Expense Intake - Validation Engine
// =============================================================================
//
// This module applies the business rules to one expense row. Every rule runs
// on every row, so a row can carry several issues at once. Issues come back
// in rule order:
//
//   1. Amount       AMOUNT_INVALID, AMOUNT_NON_POSITIVE
//   2. Currency     CURRENCY_REQUIRED, CURRENCY_NOT_USD
//   3. Description  DESCRIPTION_TOO_SHORT
//   4. Date         DATE_INVALID, DATE_IN_FUTURE
//   5. Department   DEPARTMENT_REQUIRED, DEPARTMENT_INVALID
//   6. Category     CATEGORY_REQUIRED, CATEGORY_INVALID
//
// ERROR HANDLING:
//   Issues are data, not errors. Nothing in this package returns an error.
//
// =============================================================================

package validation

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ginjaninja78/expense-intake/internal/normalize"
	"github.com/ginjaninja78/expense-intake/internal/refdata"
	"github.com/ginjaninja78/expense-intake/internal/types"
)

// DateLayouts are the accepted calendar date layouts, tried in order.
// The first layout that parses wins, so "01-02-2025" is January 2nd.
var DateLayouts = []string{
	"2006-1-2",
	"1-2-2006",
	"1/2/2006",
	"2006/1/2",
}

// MinDescriptionLength is the shortest accepted description, in characters.
const MinDescriptionLength = 3

// Issue messages.
const (
	msgAmountInvalid       = "Amount must be a number"
	msgAmountNonPositive   = "Amount must be > 0"
	msgCurrencyRequired    = "Currency is required"
	msgCurrencyNotUSD      = "Currency must be 'USD'"
	msgDescriptionTooShort = "Description must be at least 3 characters"
	msgDateRequired        = "Date is required"
	msgDateFormat          = "Invalid date format"
	msgDateType            = "Invalid date type"
	msgDateInFuture        = "Future date not allowed"
	msgDepartmentRequired  = "Department is required"
	msgDepartmentInvalid   = "Department is not allowed"
	msgCategoryRequired    = "Category is required"
	msgCategoryInvalid     = "Category is not allowed"
)

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks rows against the business rules.
// It is safe for concurrent use.
type Validator struct {
	ref *refdata.Provider
	now func() time.Time
}

// Option customizes a Validator.
type Option func(*Validator)

// WithClock sets the clock used for the future-date rule.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// New creates a Validator that checks departments and categories
// against ref.
func New(ref *refdata.Provider, opts ...Option) *Validator {
	if ref == nil {
		ref = refdata.New(nil, nil)
	}
	v := &Validator{ref: ref, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// =============================================================================
// MAIN VALIDATION FUNCTIONS
// =============================================================================

// Validate applies every rule to a raw record and returns the issues in
// rule order. The result is never nil.
func (v *Validator) Validate(rec types.RawRecord) []types.Issue {
	issues := make([]types.Issue, 0)

	issues = v.checkAmount(issues, rec["amount"])
	issues = v.checkCurrency(issues, normalize.Text(rec["currency"]))
	issues = v.checkDescription(issues, normalize.Text(rec["description"]))
	issues = v.checkDate(issues, rec["date"])
	issues = v.checkDepartment(issues, normalize.Text(rec["department"]))
	issues = v.checkCategory(issues, normalize.Text(rec["category"]))

	return issues
}

// ValidateRaw normalizes a raw record and validates it.
//
// The rules run on the raw values, so a malformed amount is reported as
// AMOUNT_INVALID even though the normalized amount reads 0.
func (v *Validator) ValidateRaw(rec types.RawRecord) (types.Expense, []types.Issue) {
	return normalize.Expense(rec), v.Validate(rec)
}

// =============================================================================
// RULES
// =============================================================================

func (v *Validator) checkAmount(issues []types.Issue, value any) []types.Issue {
	amount, ok := normalize.Amount(value)
	switch {
	case !ok:
		return append(issues, types.Issue{Code: types.AmountInvalid, Message: msgAmountInvalid})
	case amount <= 0:
		return append(issues, types.Issue{Code: types.AmountNonPositive, Message: msgAmountNonPositive})
	}
	return issues
}

func (v *Validator) checkCurrency(issues []types.Issue, currency string) []types.Issue {
	switch {
	case currency == "":
		return append(issues, types.Issue{Code: types.CurrencyRequired, Message: msgCurrencyRequired})
	case strings.ToUpper(currency) != types.ReportCurrency:
		return append(issues, types.Issue{Code: types.CurrencyNotUSD, Message: msgCurrencyNotUSD})
	}
	return issues
}

func (v *Validator) checkDescription(issues []types.Issue, description string) []types.Issue {
	if utf8.RuneCountInString(description) < MinDescriptionLength {
		return append(issues, types.Issue{Code: types.DescriptionTooShort, Message: msgDescriptionTooShort})
	}
	return issues
}

func (v *Validator) checkDate(issues []types.Issue, value any) []types.Issue {
	d, msg := ParseDate(value)
	if msg != "" {
		return append(issues, types.Issue{Code: types.DateInvalid, Message: msg})
	}

	now := v.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.After(today) {
		return append(issues, types.Issue{Code: types.DateInFuture, Message: msgDateInFuture})
	}
	return issues
}

func (v *Validator) checkDepartment(issues []types.Issue, department string) []types.Issue {
	switch {
	case department == "":
		return append(issues, types.Issue{Code: types.DepartmentRequired, Message: msgDepartmentRequired})
	case !v.ref.HasDepartment(department):
		return append(issues, types.Issue{Code: types.DepartmentInvalid, Message: msgDepartmentInvalid})
	}
	return issues
}

func (v *Validator) checkCategory(issues []types.Issue, category string) []types.Issue {
	switch {
	case category == "":
		return append(issues, types.Issue{Code: types.CategoryRequired, Message: msgCategoryRequired})
	case !v.ref.HasCategory(category):
		return append(issues, types.Issue{Code: types.CategoryInvalid, Message: msgCategoryInvalid})
	}
	return issues
}

// =============================================================================
// DATE PARSING
// =============================================================================

// ParseDate reads a date value as a UTC calendar date.
//
// RETURNS:
//   - The date at midnight UTC.
//   - An empty message on success, otherwise the reason the value was
//     rejected ("Date is required", "Invalid date format" or
//     "Invalid date type").
func ParseDate(value any) (time.Time, string) {
	switch t := value.(type) {
	case nil:
		return time.Time{}, msgDateRequired
	case time.Time:
		if t.IsZero() {
			return time.Time{}, msgDateRequired
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), ""
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, msgDateRequired
		}
		for _, layout := range DateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return d, ""
			}
		}
		return time.Time{}, msgDateFormat
	default:
		return time.Time{}, msgDateType
	}
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatIssues renders issues as "CODE: message" lines joined by "; ".
func FormatIssues(issues []types.Issue) string {
	parts := make([]string, len(issues))
	for i, issue := range issues {
		parts[i] = string(issue.Code) + ": " + issue.Message
	}
	return strings.Join(parts, "; ")
}
