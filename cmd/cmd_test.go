package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/expense-intake/internal/reports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCSV = "date,amount,currency,department,category,description\n" +
	"2025-01-15,100,USD,Engineering,Travel,Team lunch\n" +
	"2025-01-16,20.50,USD,Sales,Meals,Client coffee\n"

const mixedCSV = "date,amount,currency,department,category,description\n" +
	"2025-01-15,100,USD,Engineering,Travel,Team lunch\n" +
	"2025-01-16,abc,USD,Sales,Meals,Client coffee\n"

// writeEnv creates reference data and a config file in a temp dir and
// returns the dir and the config path.
func writeEnv(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	write(t, filepath.Join(dir, "categories.json"), `[{"id":1,"name":"Travel"},{"id":2,"name":"Meals"}]`)
	write(t, filepath.Join(dir, "departments.json"), `[{"id":1,"name":"Engineering"},{"id":2,"name":"Sales"}]`)

	cfg := filepath.Join(dir, "config.yaml")
	write(t, cfg, "reference_data:\n"+
		"  categories_file: "+filepath.Join(dir, "categories.json")+"\n"+
		"  departments_file: "+filepath.Join(dir, "departments.json")+"\n"+
		"logging:\n  level: error\n")

	return dir, cfg
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	validateFormat = formatTable
	validateOut = ""
	validateErrorLog = ""
	submitOut = ""
	verbose = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidateCommand_JSON(t *testing.T) {
	dir, cfg := writeEnv(t)
	upload := filepath.Join(dir, "march.csv")
	write(t, upload, mixedCSV)

	outFile := filepath.Join(dir, "out", "result.json")
	logDir := filepath.Join(dir, "logs")

	out, err := run(t, "validate", upload, "--config", cfg, "--format", "json",
		"--out", outFile, "--error-log", logDir)
	require.NoError(t, err)

	var results []fileResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Batch.TotalRows)
	assert.Equal(t, 1, results[0].Batch.ValidRows)
	assert.Equal(t, 2, results[0].Batch.Invalid[0].Row)

	assert.FileExists(t, outFile)

	logs, err := os.ReadDir(logDir)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestValidateCommand_Table(t *testing.T) {
	dir, cfg := writeEnv(t)
	write(t, filepath.Join(dir, "a.csv"), validCSV)
	write(t, filepath.Join(dir, "b.csv"), mixedCSV)

	outDir := filepath.Join(dir, "results")
	out, err := run(t, "validate", dir, "--config", cfg, "--out", outDir)
	require.NoError(t, err)

	assert.Contains(t, out, "== a.csv ==")
	assert.Contains(t, out, "== b.csv ==")
	assert.Contains(t, out, "Rows: 2 total, 2 valid, 0 invalid")
	assert.Contains(t, out, "AMOUNT_INVALID")

	written, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, written, 2)
}

func TestValidateCommand_SameBaseNames(t *testing.T) {
	dir, cfg := writeEnv(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "jan"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "feb"), 0755))
	first := filepath.Join(dir, "jan", "expenses.csv")
	second := filepath.Join(dir, "feb", "expenses.csv")
	write(t, first, validCSV)
	write(t, second, mixedCSV)

	outDir := filepath.Join(dir, "results")
	_, err := run(t, "validate", first, second, "--config", cfg, "--out", outDir)
	require.NoError(t, err)

	written, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, written, 2)

	files := map[string]bool{}
	for _, entry := range written {
		data, err := os.ReadFile(filepath.Join(outDir, entry.Name()))
		require.NoError(t, err)
		var res fileResult
		require.NoError(t, json.Unmarshal(data, &res))
		files[res.File] = true
	}
	assert.Equal(t, map[string]bool{first: true, second: true}, files)
}

func TestValidateCommand_UnreadableFile(t *testing.T) {
	dir, cfg := writeEnv(t)
	good := filepath.Join(dir, "good.csv")
	bad := filepath.Join(dir, "scan.pdf")
	write(t, good, validCSV)
	write(t, bad, "%PDF-1.4")

	out, err := run(t, "validate", good, bad, "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 file(s)")
	assert.Contains(t, out, "Unsupported file type")
	assert.Contains(t, out, "Rows: 2 total, 2 valid, 0 invalid")
}

func TestValidateCommand_BadFormat(t *testing.T) {
	dir, cfg := writeEnv(t)
	upload := filepath.Join(dir, "a.csv")
	write(t, upload, validCSV)

	_, err := run(t, "validate", upload, "--config", cfg, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestSubmitCommand(t *testing.T) {
	dir, cfg := writeEnv(t)
	upload := filepath.Join(dir, "a.csv")
	write(t, upload, validCSV)
	reportFile := filepath.Join(dir, "report.json")

	out, err := run(t, "submit", upload, "--config", cfg, "--out", reportFile)
	require.NoError(t, err)

	assert.Contains(t, out, "Items: 2")
	assert.Contains(t, out, "Total: 120.50 USD")

	data, err := os.ReadFile(reportFile)
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 120.5, report["total_amount"])
}

func TestSubmitCommand_Rejected(t *testing.T) {
	dir, cfg := writeEnv(t)
	upload := filepath.Join(dir, "a.csv")
	write(t, upload, mixedCSV)

	out, err := run(t, "submit", upload, "--config", cfg)
	require.Error(t, err)

	var rej *reports.RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, 1, rej.InvalidCount)
	assert.Contains(t, out, reports.RejectionMessage)
}

func TestSubmitCommand_MissingConfig(t *testing.T) {
	dir, _ := writeEnv(t)
	upload := filepath.Join(dir, "a.csv")
	write(t, upload, validCSV)

	_, err := run(t, "submit", upload, "--config", filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Expense Intake")
	assert.Contains(t, out, "Version:    "+Version)
}
