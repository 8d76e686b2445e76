// =============================================================================
// Expense Intake - Shared Types
// =============================================================================
//
// This package contains the data model shared by the parser, normalizer,
// validator, orchestrator and report builder. Keeping it here avoids import
// cycles between those packages.
//
// =============================================================================

package types

// =============================================================================
// RAW RECORDS
// =============================================================================

// RawRecord is one data row as read from an upload or a submission.
//
// Keys are lower-cased, trimmed column labels. Values may be a string, a
// float64, an int, a json.Number, a time.Time, or nil when the cell was empty.
type RawRecord map[string]any

// RequiredColumns lists the columns every upload must carry, in output order.
var RequiredColumns = []string{"date", "amount", "currency", "department", "category", "description"}

// =============================================================================
// NORMALIZED EXPENSE
// =============================================================================

// Expense is the canonical form of a row after normalization.
// All six fields are always present.
type Expense struct {
	// Date is "YYYY-MM-DD" when recognizable, otherwise the trimmed input
	// or "" when absent.
	Date string `json:"date"`

	// Amount is 0 when the source value was absent or non-numeric.
	Amount float64 `json:"amount"`

	// Currency is trimmed and upper-cased.
	Currency string `json:"currency"`

	Department  string `json:"department"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// =============================================================================
// VALIDATION ISSUES
// =============================================================================

// IssueCode identifies a validation rule violation.
type IssueCode string

// The closed set of issue codes.
const (
	AmountInvalid       IssueCode = "AMOUNT_INVALID"
	AmountNonPositive   IssueCode = "AMOUNT_NON_POSITIVE"
	CurrencyRequired    IssueCode = "CURRENCY_REQUIRED"
	CurrencyNotUSD      IssueCode = "CURRENCY_NOT_USD"
	DescriptionTooShort IssueCode = "DESCRIPTION_TOO_SHORT"
	DateInvalid         IssueCode = "DATE_INVALID"
	DateInFuture        IssueCode = "DATE_IN_FUTURE"
	DepartmentRequired  IssueCode = "DEPARTMENT_REQUIRED"
	DepartmentInvalid   IssueCode = "DEPARTMENT_INVALID"
	CategoryRequired    IssueCode = "CATEGORY_REQUIRED"
	CategoryInvalid     IssueCode = "CATEGORY_INVALID"
)

// Issue is a single rule violation found on a row.
type Issue struct {
	Code    IssueCode `json:"code"`
	Message string    `json:"message"`
}

// =============================================================================
// VALIDATION RESULTS
// =============================================================================

// RowResult is the outcome of validating one row.
type RowResult struct {
	// Row is the 1-based position of the row in the parsed sequence.
	Row int `json:"row"`

	Data     Expense `json:"data"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// Valid reports whether the row has no errors.
func (r RowResult) Valid() bool {
	return len(r.Errors) == 0
}

// ValidationBatch is the outcome of validating a whole upload.
//
// ValidRows + InvalidRows always equals TotalRows.
type ValidationBatch struct {
	Valid       []RowResult `json:"valid"`
	Invalid     []RowResult `json:"invalid"`
	TotalRows   int         `json:"total_rows"`
	ValidRows   int         `json:"valid_rows"`
	InvalidRows int         `json:"invalid_rows"`
}

// =============================================================================
// REPORTS
// =============================================================================

// ReportCurrency is the only currency reports are issued in.
const ReportCurrency = "USD"

// Report is an immutable, accepted collection of expenses.
type Report struct {
	ID          string    `json:"id"`
	CreatedAt   string    `json:"created_at"`
	Currency    string    `json:"currency"`
	TotalAmount float64   `json:"total_amount"`
	ItemsCount  int       `json:"items_count"`
	Expenses    []Expense `json:"expenses"`
}

// ReportSummary is a Report without its expenses.
type ReportSummary struct {
	ID          string  `json:"id"`
	CreatedAt   string  `json:"created_at"`
	Currency    string  `json:"currency"`
	TotalAmount float64 `json:"total_amount"`
	ItemsCount  int     `json:"items_count"`
}

// Summary projects the report onto its summary.
func (r Report) Summary() ReportSummary {
	return ReportSummary{
		ID:          r.ID,
		CreatedAt:   r.CreatedAt,
		Currency:    r.Currency,
		TotalAmount: r.TotalAmount,
		ItemsCount:  r.ItemsCount,
	}
}

// Clone returns a copy of the report that shares no slice with r.
func (r Report) Clone() Report {
	out := r
	if r.Expenses != nil {
		out.Expenses = make([]Expense, len(r.Expenses))
		copy(out.Expenses, r.Expenses)
	}
	return out
}

// =============================================================================
// ANALYTICS
// =============================================================================

// Bucket is an aggregated total for one category or department.
type Bucket struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Items  int     `json:"items"`
}

// Analytics aggregates all stored reports.
type Analytics struct {
	TotalAmount  float64  `json:"total_amount"`
	ReportsCount int      `json:"reports_count"`
	ItemsCount   int      `json:"items_count"`
	ByCategory   []Bucket `json:"by_category"`
	ByDepartment []Bucket `json:"by_department"`
}
