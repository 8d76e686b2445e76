// =============================================================================
// Expense Intake - Submit Command
// =============================================================================
//
// COMMAND USAGE:
//   expense-intake submit <file> [--out report.json]
//
// Every row of the upload is validated again and submitted as one report.
// A single invalid row rejects the whole upload: the rejection is printed and
// the command fails. The report lives in process memory only; use --out to
// keep it.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"

	"github.com/ginjaninja78/expense-intake/internal/fileparser"
	"github.com/ginjaninja78/expense-intake/internal/render"
	"github.com/ginjaninja78/expense-intake/internal/reports"
	"github.com/ginjaninja78/expense-intake/internal/reports/inmemory"
	"github.com/ginjaninja78/expense-intake/internal/validation"
	"github.com/ginjaninja78/expense-intake/pkg/utils"
	"github.com/spf13/cobra"
)

var submitOut string

var submitCmd = &cobra.Command{
	Use:   "submit <file>",
	Short: "Submit an upload as an expense report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSubmit(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVar(&submitOut, "out", "", "Write the issued report to this JSON file")
}

func runSubmit(cmd *cobra.Command, path string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	records, err := fileparser.New(env.cfg.CSV).ParseFile(ctx, path)
	if err != nil {
		return err
	}

	svc := reports.NewService(inmemory.New(), validation.New(env.ref))
	out := cmd.OutOrStdout()

	report, err := svc.Submit(ctx, records)
	if err != nil {
		var rej *reports.RejectionError
		if errors.As(err, &rej) {
			if renderErr := render.Rejection(out, rej); renderErr != nil {
				return renderErr
			}
		}
		return err
	}

	if err := render.Report(out, report); err != nil {
		return err
	}

	if submitOut != "" {
		if err := utils.WriteJSONFile(submitOut, report); err != nil {
			return err
		}
		fmt.Fprintf(out, "Report written to %s\n", submitOut)
	}
	return nil
}
