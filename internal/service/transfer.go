package service

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/olivramos/beneficioops/internal/domain"
	"github.com/olivramos/beneficioops/internal/store"
)

var transfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "beneficio_transfers_total",
	Help: "Transfer attempts by outcome",
}, []string{"outcome"})

// TransferEngine moves value between two beneficio balances. It holds no
// state of its own; balances are re-read inside the store's atomic section
// on every call, so the engine never acts on stale data.
type TransferEngine struct {
	store store.Store
}

func NewTransferEngine(s store.Store) *TransferEngine {
	return &TransferEngine{store: s}
}

// Transfer validates the request and executes it atomically against the
// store. Preconditions are checked in order; the first failure wins and
// leaves both records untouched.
func (e *TransferEngine) Transfer(ctx context.Context, req domain.TransferRequest) (domain.Benefit, domain.Benefit, error) {
	if !req.Amount.IsPositive() {
		transfersTotal.WithLabelValues("validation").Inc()
		return domain.Benefit{}, domain.Benefit{}, domain.NewValidation("amount", "amount must be positive")
	}
	if req.FromID == req.ToID {
		transfersTotal.WithLabelValues("validation").Inc()
		return domain.Benefit{}, domain.Benefit{}, domain.NewValidation("toId", "cannot transfer to the same beneficio")
	}

	from, to, err := e.store.ApplyTransfer(ctx, req.FromID, req.ToID, req.Amount)
	if err != nil {
		outcome := string(domain.CodeOf(err))
		if outcome == "" {
			outcome = "error"
		}
		transfersTotal.WithLabelValues(outcome).Inc()
		return domain.Benefit{}, domain.Benefit{}, err
	}

	transfersTotal.WithLabelValues("success").Inc()
	return from, to, nil
}
