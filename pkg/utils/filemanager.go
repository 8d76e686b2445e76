// =============================================================================
// Expense Intake - File Manager Utility
// =============================================================================
//
// This module provides the file handling used by the CLI:
//   - Input discovery (directories expand to the upload files they contain)
//   - JSON result files
//   - Output file naming
//   - Plain-text error logs for rejected rows and unreadable files
//
// =============================================================================

package utils

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UploadExtensions are the file suffixes picked up when a directory is given
// as input.
var UploadExtensions = []string{".csv", ".xlsx", ".xls"}

// =============================================================================
// INPUT DISCOVERY
// =============================================================================

// ExpandInputs turns command-line arguments into a list of files.
//
// PARAMETERS:
//   - args: File paths, directories or glob patterns.
//
// RETURNS:
//   - The files in argument order. Files found inside a directory are
//     sorted by name. Explicit file arguments are kept whatever their suffix,
//     so the parser can report unsupported types.
//   - An error if an argument matches nothing.
func ExpandInputs(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			found, err := discoverUploads(arg)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)

		case err == nil:
			files = append(files, arg)

		default:
			matches, globErr := filepath.Glob(arg)
			if globErr != nil || len(matches) == 0 {
				return nil, fmt.Errorf("input not found: %s", arg)
			}
			sort.Strings(matches)
			files = append(files, matches...)
		}
	}

	return files, nil
}

// discoverUploads lists the upload files directly inside dir.
func discoverUploads(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, entry := range entries {
		if entry.IsDir() || !isUpload(entry.Name()) {
			continue
		}
		result = append(result, filepath.Join(dir, entry.Name()))
	}

	sort.Strings(result)
	return result, nil
}

func isUpload(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range UploadExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// =============================================================================
// OUTPUT FILES
// =============================================================================

// WriteJSONFile writes v as indented JSON, creating parent directories.
func WriteJSONFile(path string, v any) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return file.Sync()
}

// GenerateOutputFileName generates a unique output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {original}  - Must be supplied in params
//   - params: Extra placeholder values, keyed without braces.
//
// RETURNS:
//   - The generated file name, always ending in ".json".
//
// EXAMPLE:
//   format: "{original}_validation_{timestamp}.json"
//   params: {"original": "march"}
//   output: "march_validation_20250115_143022.json"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.NewString(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if !strings.HasSuffix(strings.ToLower(result), ".json") {
		result += ".json"
	}

	return result
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry is one rejected row or unreadable file.
type ErrorLogEntry struct {
	FileName string

	// Row is 0 when the whole file failed.
	Row int

	Message string
}

// WriteErrorLog writes entries to a timestamped log file in outputDir.
//
// RETURNS:
//   - The path to the log file, or "" when there was nothing to write.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	now := time.Now()
	logPath := filepath.Join(outputDir, fmt.Sprintf("error_log_%s.txt", now.Format("20060102_150405")))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Expense Intake - Error Log\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		now.Format("2006-01-02 15:04:05"), len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n  File:    %s\n", i+1, entry.FileName)
		if entry.Row > 0 {
			fmt.Fprintf(writer, "  Row:     %d\n", entry.Row)
		}
		fmt.Fprintf(writer, "  Message: %s\n\n", entry.Message)
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
