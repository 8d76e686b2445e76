// =============================================================================
// Expense Intake - Validation Orchestrator
// =============================================================================
//
// This module runs the whole ingestion pipeline for an uploaded file and
// classifies every row.
//
// PIPELINE:
//   1. Parse the upload into raw records (fileparser)
//   2. Number the records from 1 in source order
//   3. Normalize and validate each record
//   4. Partition the rows into valid and invalid
//
// FAILURES:
//   Input-format errors abort the whole batch and no partial result is
//   returned. Row issues never abort: every row yields exactly one result.
//   A panic while decoding is recovered here and reported as a decode
//   failure.
//
// CONCURRENCY:
//   An Orchestrator holds no per-call state. ValidateFiles processes each
//   file in its own goroutine.
//
// =============================================================================

package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ginjaninja78/expense-intake/internal/fileparser"
	"github.com/ginjaninja78/expense-intake/internal/logger"
	"github.com/ginjaninja78/expense-intake/internal/types"
	"github.com/ginjaninja78/expense-intake/internal/validation"
)

// RecordParser decodes an upload into raw records.
type RecordParser interface {
	Parse(ctx context.Context, r io.Reader, filename string) ([]types.RawRecord, error)
}

// Orchestrator validates uploads.
type Orchestrator struct {
	parser    RecordParser
	validator *validation.Validator
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithParser replaces the default file parser.
func WithParser(p RecordParser) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.parser = p
		}
	}
}

// New creates an Orchestrator using v for the row rules.
func New(v *validation.Validator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		parser:    &fileparser.Parser{},
		validator: v,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate parses r and classifies every row.
//
// PARAMETERS:
//   - ctx: Carries the logger; checked for cancellation before work starts.
//   - r: The upload content.
//   - filename: Advisory name used to pick the format.
//
// RETURNS:
//   - The classified batch.
//   - An input-format error from fileparser, or the context error.
func (o *Orchestrator) Validate(ctx context.Context, r io.Reader, filename string) (*types.ValidationBatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := logger.WithFields(logger.FromContext(ctx), map[string]any{"file": filename})
	start := time.Now()

	records, err := o.parse(ctx, r, filename)
	if err != nil {
		log.Debug().Err(err).Msg("upload rejected")
		return nil, err
	}

	batch := o.Classify(records)

	log.Info().
		Int("total_rows", batch.TotalRows).
		Int("valid_rows", batch.ValidRows).
		Int("invalid_rows", batch.InvalidRows).
		Dur("elapsed", time.Since(start)).
		Msg("upload validated")

	return batch, nil
}

// ValidateFile opens path and validates it. The file is released on every
// exit path.
func (o *Orchestrator) ValidateFile(ctx context.Context, path string) (*types.ValidationBatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return o.Validate(ctx, f, filepath.Base(path))
}

// Classify normalizes, validates and partitions records.
// Row numbers are 1-based positions in records.
func (o *Orchestrator) Classify(records []types.RawRecord) *types.ValidationBatch {
	batch := &types.ValidationBatch{
		Valid:   make([]types.RowResult, 0, len(records)),
		Invalid: make([]types.RowResult, 0),
	}

	for i, rec := range records {
		data, issues := o.validator.ValidateRaw(rec)
		result := types.RowResult{
			Row:      i + 1,
			Data:     data,
			Errors:   issues,
			Warnings: make([]types.Issue, 0),
		}

		if result.Valid() {
			batch.Valid = append(batch.Valid, result)
		} else {
			batch.Invalid = append(batch.Invalid, result)
		}
	}

	batch.TotalRows = len(records)
	batch.ValidRows = len(batch.Valid)
	batch.InvalidRows = len(batch.Invalid)
	return batch
}

// parse runs the parser and converts a panic into a decode failure.
func (o *Orchestrator) parse(ctx context.Context, r io.Reader, filename string) (records []types.RawRecord, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log := logger.FromContext(ctx)
			log.Error().
				Interface("panic", rec).
				Str("file", filename).
				Msg("parser panicked")
			records, err = nil, fileparser.ErrDecodeFailure
		}
	}()

	return o.parser.Parse(ctx, r, filename)
}

// =============================================================================
// BATCH PROCESSING
// =============================================================================

// Result is the outcome of validating one file in ValidateFiles.
type Result struct {
	// Path is the file that was validated.
	Path string

	// Batch is nil when Err is set.
	Batch *types.ValidationBatch

	Err error

	// Elapsed is the time spent on this file.
	Elapsed time.Duration
}

// ValidateFiles validates each path concurrently and returns the results
// in the order of paths.
func (o *Orchestrator) ValidateFiles(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()

			start := time.Now()
			batch, err := o.ValidateFile(ctx, path)
			results[i] = Result{
				Path:    path,
				Batch:   batch,
				Err:     err,
				Elapsed: time.Since(start),
			}
		}(i, path)
	}
	wg.Wait()

	return results
}
