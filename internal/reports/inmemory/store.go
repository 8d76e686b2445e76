// Package inmemory provides a process-lifetime ReportStore.
package inmemory

import (
	"context"
	"sync"

	"github.com/ginjaninja78/expense-intake/internal/reports"
	"github.com/ginjaninja78/expense-intake/internal/types"
)

// Store keeps reports in a slice guarded by a read-write mutex.
// Reports are copied on the way in and on the way out.
type Store struct {
	mu      sync.RWMutex
	reports []types.Report
}

// Compile-time check that Store implements reports.ReportStore.
var _ reports.ReportStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// Append adds a report at the end of the store.
func (s *Store) Append(ctx context.Context, report types.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append(s.reports, report.Clone())
	return nil
}

// List returns all reports in insertion order.
func (s *Store) List(ctx context.Context) ([]types.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Report, len(s.reports))
	for i, r := range s.reports {
		out[i] = r.Clone()
	}
	return out, nil
}

// Get returns the first report with the given id.
func (s *Store) Get(ctx context.Context, id string) (types.Report, bool, error) {
	if err := ctx.Err(); err != nil {
		return types.Report{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.reports {
		if r.ID == id {
			return r.Clone(), true, nil
		}
	}
	return types.Report{}, false, nil
}

