package reports

import (
	"context"
	"fmt"
	"sort"

	"github.com/ginjaninja78/expense-intake/internal/types"
	"github.com/shopspring/decimal"
)

// UnassignedBucket names the bucket for expenses with an empty category or
// department.
const UnassignedBucket = "(none)"

type accumulator struct {
	amount decimal.Decimal
	items  int
}

// Analytics totals every stored expense by category and by department.
// Buckets are sorted by amount, largest first, then by name.
func (s *Service) Analytics(ctx context.Context) (*types.Analytics, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	total := decimal.Zero
	byCategory := map[string]*accumulator{}
	byDepartment := map[string]*accumulator{}
	out := &types.Analytics{ReportsCount: len(all)}

	for _, r := range all {
		for _, e := range r.Expenses {
			amount := decimal.NewFromFloat(e.Amount)
			total = total.Add(amount)
			add(byCategory, e.Category, amount)
			add(byDepartment, e.Department, amount)
			out.ItemsCount++
		}
	}

	out.TotalAmount, _ = total.Float64()
	out.ByCategory = buckets(byCategory)
	out.ByDepartment = buckets(byDepartment)
	return out, nil
}

func add(m map[string]*accumulator, name string, amount decimal.Decimal) {
	if name == "" {
		name = UnassignedBucket
	}
	acc, ok := m[name]
	if !ok {
		acc = &accumulator{amount: decimal.Zero}
		m[name] = acc
	}
	acc.amount = acc.amount.Add(amount)
	acc.items++
}

func buckets(m map[string]*accumulator) []types.Bucket {
	out := make([]types.Bucket, 0, len(m))
	for name, acc := range m {
		amount, _ := acc.amount.Float64()
		out = append(out, types.Bucket{Name: name, Amount: amount, Items: acc.items})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	return out
}
