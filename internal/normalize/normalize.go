// =============================================================================
// Expense Intake - Field Normalizer
// =============================================================================
//
// This module converts loosely typed raw values into the canonical forms the
// validator and report builder expect. Normalization never fails: a value
// that cannot be read degrades to a safe default and the validator is left
// to reject the row.
//
// FIELD RULES:
//   | Field       | Canonical form                                       |
//   |-------------|------------------------------------------------------|
//   | date        | "YYYY-MM-DD" when recognizable, else trimmed text    |
//   | amount      | float64, 0 when absent or unreadable                 |
//   | currency    | trimmed, upper-cased                                 |
//   | department  | trimmed                                              |
//   | category    | trimmed                                              |
//   | description | trimmed                                              |
//
// =============================================================================

package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ginjaninja78/expense-intake/internal/types"
)

// DateLayout is the canonical calendar date layout.
const DateLayout = "2006-01-02"

// Expense normalizes a raw record. Absent keys behave like empty cells.
func Expense(raw types.RawRecord) types.Expense {
	amount, _ := Amount(raw["amount"])

	return types.Expense{
		Date:        Date(raw["date"]),
		Amount:      amount,
		Currency:    strings.ToUpper(Text(raw["currency"])),
		Department:  Text(raw["department"]),
		Category:    Text(raw["category"]),
		Description: Text(raw["description"]),
	}
}

// Date returns the canonical form of a date value.
//
// A structured date is formatted as YYYY-MM-DD with the time of day dropped.
// A string starting with a YYYY-MM-DD prefix (for example
// "2025-01-15 00:00:00") is cut to that prefix. Other strings are returned
// trimmed. Any other type yields "".
func Date(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format(DateLayout)
	case *time.Time:
		if t == nil {
			return ""
		}
		return Date(*t)
	case string:
		s := strings.TrimSpace(t)
		if len(s) >= 10 && isASCII(s[:10]) && s[4] == '-' && s[7] == '-' {
			return s[:10]
		}
		return s
	default:
		return ""
	}
}

// isASCII reports whether s is all single-byte characters, so byte and
// character positions agree.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Amount reads a numeric value. The second result is false when the value
// is absent, empty, not a number, NaN or infinite; the amount is then 0.
func Amount(v any) (float64, bool) {
	var f float64

	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Text renders a scalar as trimmed text. nil yields "".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return strings.TrimSpace(t.String())
	case time.Time:
		return t.Format("2006-01-02 15:04:05")
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
