package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/olivramos/beneficioops/internal/store"
)

// ErrAverageUndefined is returned when the average is requested for an empty
// store. Division by zero is rejected rather than silently reported as 0.
var ErrAverageUndefined = errors.New("average undefined: no beneficios")

// valorScale matches the NUMERIC(15,2) precision of the persisted balances.
const valorScale = 2

// Stats derives read-only aggregates from the store's current snapshot.
// Nothing is cached: every call recomputes from live contents.
type Stats struct {
	store store.Store
}

func NewStats(s store.Store) *Stats {
	return &Stats{store: s}
}

func (s *Stats) Count(ctx context.Context) (int, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *Stats) ActiveCount(ctx context.Context) (int, error) {
	records, err := s.store.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// TotalValue sums valor across all records; 0 for an empty store.
func (s *Stats) TotalValue(ctx context.Context) (decimal.Decimal, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, b := range records {
		total = total.Add(b.Valor)
	}
	return total, nil
}

// AverageValue is total valor divided by record count, rounded to the valor
// scale. Fails with ErrAverageUndefined for an empty store.
func (s *Stats) AverageValue(ctx context.Context) (decimal.Decimal, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if len(records) == 0 {
		return decimal.Zero, ErrAverageUndefined
	}

	total := decimal.Zero
	for _, b := range records {
		total = total.Add(b.Valor)
	}
	return total.DivRound(decimal.NewFromInt(int64(len(records))), valorScale), nil
}

// Summary is the aggregate view served by the stats endpoint. AverageValue
// is omitted when the store is empty.
type Summary struct {
	Count        int              `json:"count"`
	ActiveCount  int              `json:"activeCount"`
	TotalValue   decimal.Decimal  `json:"totalValue"`
	AverageValue *decimal.Decimal `json:"averageValue,omitempty"`
}

// Summarize computes all aggregates from one snapshot so the numbers are
// mutually consistent.
func (s *Stats) Summarize(ctx context.Context) (Summary, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{TotalValue: decimal.Zero}
	for _, b := range records {
		summary.Count++
		if b.Ativo {
			summary.ActiveCount++
		}
		summary.TotalValue = summary.TotalValue.Add(b.Valor)
	}
	if summary.Count > 0 {
		avg := summary.TotalValue.DivRound(decimal.NewFromInt(int64(summary.Count)), valorScale)
		summary.AverageValue = &avg
	}
	return summary, nil
}
