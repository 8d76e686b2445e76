package reports

import (
	"context"

	"github.com/ginjaninja78/expense-intake/internal/types"
)

// ReportStore holds accepted reports in insertion order.
// Implementations must be safe for concurrent use and must not let callers
// mutate stored reports through returned values.
//
//go:generate mockgen -destination=mocks/mock_store.go -source=store.go ReportStore
type ReportStore interface {
	Append(ctx context.Context, report types.Report) error
	List(ctx context.Context) ([]types.Report, error)
	Get(ctx context.Context, id string) (types.Report, bool, error)
}
