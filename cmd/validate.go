// =============================================================================
// Expense Intake - Validate Command
// =============================================================================
//
// COMMAND USAGE:
//   expense-intake validate <file|dir>... [flags]
//
// FLAGS:
//   --format     : "table" (default) or "json"
//   --out        : Write the JSON results to a file (one input) or a
//                  directory (several inputs)
//   --error-log  : Directory for a plain-text log of invalid rows
//
// PROCESSING PIPELINE:
//   1. Expand the arguments into upload files
//   2. Validate every file concurrently
//   3. Print each batch, then write the optional output files
//
// A file that cannot be read does not stop the others. The command fails
// when at least one file could not be read; invalid rows alone do not fail it.
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/ginjaninja78/expense-intake/internal/fileparser"
	"github.com/ginjaninja78/expense-intake/internal/pipeline"
	"github.com/ginjaninja78/expense-intake/internal/render"
	"github.com/ginjaninja78/expense-intake/internal/types"
	"github.com/ginjaninja78/expense-intake/internal/validation"
	"github.com/ginjaninja78/expense-intake/pkg/utils"
	"github.com/spf13/cobra"
)

// Output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
)

var (
	validateFormat   string
	validateOut      string
	validateErrorLog string
)

// fileResult is the JSON shape of one validated file.
type fileResult struct {
	File  string                 `json:"file"`
	Batch *types.ValidationBatch `json:"batch,omitempty"`
	Error string                 `json:"error,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate <file|dir>...",
	Short: "Validate expense uploads row by row",
	Long: `Validate reads each .csv or .xlsx upload, checks every row, and reports the
valid and invalid rows with the issues found on each.

Directories are expanded to the upload files they contain.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFormat, "format", formatTable, "Output format: table or json")
	validateCmd.Flags().StringVar(&validateOut, "out", "", "Write JSON results to this file or directory")
	validateCmd.Flags().StringVar(&validateErrorLog, "error-log", "", "Write an error log of invalid rows to this directory")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runValidate(cmd *cobra.Command, args []string) error {
	if validateFormat != formatTable && validateFormat != formatJSON {
		return fmt.Errorf("unknown format %q (use table or json)", validateFormat)
	}

	env, err := setup(cmd)
	if err != nil {
		return err
	}

	paths, err := utils.ExpandInputs(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no .csv or .xlsx files found")
	}

	orch := pipeline.New(
		validation.New(env.ref),
		pipeline.WithParser(fileparser.New(env.cfg.CSV)),
	)

	ctx := cmd.Context()
	results := orch.ValidateFiles(ctx, paths)

	out := cmd.OutOrStdout()
	summary := make([]fileResult, len(results))
	failed := 0

	for i, res := range results {
		summary[i] = fileResult{File: res.Path, Batch: res.Batch}
		if res.Err != nil {
			failed++
			summary[i].Error = res.Err.Error()
			env.log.Error().Err(res.Err).Str("file", res.Path).Msg("file could not be validated")
		} else {
			env.log.Debug().
				Str("file", res.Path).
				Dur("elapsed", res.Elapsed).
				Msg("file validated")
		}
	}

	if validateFormat == formatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return err
		}
	} else if err := printResults(out, summary); err != nil {
		return err
	}

	if validateOut != "" {
		if err := writeResults(validateOut, summary); err != nil {
			return err
		}
	}

	if validateErrorLog != "" {
		path, err := utils.WriteErrorLog(errorLogEntries(summary), validateErrorLog)
		if err != nil {
			return err
		}
		if path != "" {
			env.log.Info().Str("path", path).Msg("error log written")
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) could not be validated", failed, len(results))
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func printResults(w io.Writer, results []fileResult) error {
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "== %s ==\n", filepath.Base(res.File))

		if res.Error != "" {
			fmt.Fprintf(w, "Error: %s\n", res.Error)
			continue
		}
		if err := render.Batch(w, res.Batch); err != nil {
			return err
		}
	}
	return nil
}

// writeResults writes one file for a single input, or one file per input
// inside dir otherwise. The input position keeps names unique when inputs
// from different directories share a base name.
func writeResults(out string, results []fileResult) error {
	if len(results) == 1 {
		return utils.WriteJSONFile(out, results[0])
	}

	for i, res := range results {
		name := utils.GenerateOutputFileName("{index}_{original}_validation_{timestamp}.json",
			map[string]string{
				"index":    strconv.Itoa(i + 1),
				"original": utils.BaseName(res.File),
			})
		if err := utils.WriteJSONFile(filepath.Join(out, name), res); err != nil {
			return err
		}
	}
	return nil
}

func errorLogEntries(results []fileResult) []utils.ErrorLogEntry {
	var entries []utils.ErrorLogEntry

	for _, res := range results {
		name := filepath.Base(res.File)
		if res.Error != "" {
			entries = append(entries, utils.ErrorLogEntry{FileName: name, Message: res.Error})
			continue
		}
		for _, row := range res.Batch.Invalid {
			entries = append(entries, utils.ErrorLogEntry{
				FileName: name,
				Row:      row.Row,
				Message:  validation.FormatIssues(row.Errors),
			})
		}
	}

	return entries
}
