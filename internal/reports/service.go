// =============================================================================
// Expense Intake - Report Builder
// =============================================================================
//
// This module turns an approved batch of expenses into an immutable report.
// Every record is validated again before anything is stored, and a batch is
// accepted or rejected as a whole.
//
// SUBMISSION:
//   1. Normalize and validate every record
//   2. Reject the whole batch if any record has issues
//   3. Sum the amounts exactly
//   4. Assign an identifier and a UTC creation time
//   5. Append the report to the store
//
// =============================================================================

package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/ginjaninja78/expense-intake/internal/logger"
	"github.com/ginjaninja78/expense-intake/internal/normalize"
	"github.com/ginjaninja78/expense-intake/internal/types"
	"github.com/ginjaninja78/expense-intake/internal/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RejectionMessage is the message carried by every RejectionError.
const RejectionMessage = "Invalid expenses. Fix or remove invalid rows before submitting."

// InvalidRow describes one rejected record of a submission.
type InvalidRow struct {
	// Row is the 1-based position of the record in the submission.
	Row    int           `json:"row"`
	Errors []types.Issue `json:"errors"`
	Data   types.Expense `json:"data"`
}

// RejectionError is returned by Submit when any record fails validation.
// No report is created when it is returned.
type RejectionError struct {
	Message      string       `json:"message"`
	Invalid      []InvalidRow `json:"invalid"`
	ValidCount   int          `json:"valid_count"`
	InvalidCount int          `json:"invalid_count"`
}

// Error implements the error interface.
func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s (%d invalid of %d)", e.Message, e.InvalidCount, e.ValidCount+e.InvalidCount)
}

// =============================================================================
// SERVICE
// =============================================================================

// Service builds reports and answers queries about them.
type Service struct {
	store     ReportStore
	validator *validation.Validator
	now       func() time.Time
	newID     func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithClock sets the clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the identifier generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService creates a Service storing reports in store.
func NewService(store ReportStore, v *validation.Validator, opts ...Option) *Service {
	s := &Service{
		store:     store,
		validator: v,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates records and stores them as a new report.
//
// PARAMETERS:
//   - ctx: Carries the logger and is passed to the store.
//   - records: The expenses to submit, in order.
//
// RETURNS:
//   - The stored report.
//   - A *RejectionError when any record is invalid, or a store error.
func (s *Service) Submit(ctx context.Context, records []types.RawRecord) (*types.Report, error) {
	log := logger.FromContext(ctx)

	expenses := make([]types.Expense, len(records))
	var invalid []InvalidRow

	for i, rec := range records {
		data, issues := s.validator.ValidateRaw(rec)
		expenses[i] = data
		if len(issues) > 0 {
			invalid = append(invalid, InvalidRow{Row: i + 1, Errors: issues, Data: data})
		}
	}

	if len(invalid) > 0 {
		log.Info().
			Int("records", len(records)).
			Int("invalid", len(invalid)).
			Msg("submission rejected")
		return nil, &RejectionError{
			Message:      RejectionMessage,
			Invalid:      invalid,
			ValidCount:   len(records) - len(invalid),
			InvalidCount: len(invalid),
		}
	}

	total := decimal.Zero
	for _, rec := range records {
		amount, _ := normalize.Amount(rec["amount"])
		total = total.Add(decimal.NewFromFloat(amount))
	}
	totalAmount, _ := total.Float64()

	report := types.Report{
		ID:          s.newID(),
		CreatedAt:   s.now().UTC().Format(time.RFC3339Nano),
		Currency:    types.ReportCurrency,
		TotalAmount: totalAmount,
		ItemsCount:  len(expenses),
		Expenses:    expenses,
	}

	if err := s.store.Append(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	log.Info().
		Str("report_id", report.ID).
		Int("items", report.ItemsCount).
		Str("total", total.String()).
		Msg("report created")

	return &report, nil
}

// List returns the summaries of all reports in insertion order.
func (s *Service) List(ctx context.Context) ([]types.ReportSummary, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	summaries := make([]types.ReportSummary, len(all))
	for i, r := range all {
		summaries[i] = r.Summary()
	}
	return summaries, nil
}

// Get returns the report with the given id. A missing report is reported
// with found == false and a nil error.
func (s *Service) Get(ctx context.Context, id string) (report *types.Report, found bool, err error) {
	r, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get report: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	return &r, true, nil
}
