// =============================================================================
// Expense Intake - Main Entry Point
// =============================================================================
//
// USAGE:
//   expense-intake validate <file|dir>...  - Validate uploads row by row
//   expense-intake submit <file>           - Issue a report from an upload
//   expense-intake serve                   - Run the HTTP API
//   expense-intake version                 - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Parsing, validation, reports and the HTTP API
//   - pkg/       : Shared file utilities
//   - data/      : Default category and department lists
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/expense-intake/cmd"
)

func main() {
	cmd.Execute()
}
