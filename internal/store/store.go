package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/olivramos/beneficioops/internal/domain"
)

// Store is the single source of truth for beneficio records. All mutation
// passes through it; every mutating call is all-or-nothing.
type Store interface {
	// Create validates input, assigns a new id and version 1.
	Create(ctx context.Context, input domain.BenefitInput) (domain.Benefit, error)

	// List returns a snapshot of all records in insertion order.
	List(ctx context.Context) ([]domain.Benefit, error)

	// ListActive returns the snapshot filtered to ativo = true.
	ListActive(ctx context.Context) ([]domain.Benefit, error)

	// Get returns the record with the given id.
	Get(ctx context.Context, id int64) (domain.Benefit, error)

	// Update replaces the mutable fields and increments version. When
	// input.ExpectedVersion is set it must match the stored version.
	Update(ctx context.Context, id int64, input domain.BenefitInput) (domain.Benefit, error)

	// Delete removes the record irrevocably.
	Delete(ctx context.Context, id int64) error

	// ApplyTransfer moves amount between two balances as one atomic step,
	// bumping both versions. Existence, active and balance checks run
	// inside the same atomic section as the writes.
	ApplyTransfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) (domain.Benefit, domain.Benefit, error)
}

// Persister is the external persistence collaborator: LoadAll on startup,
// Persist after every accepted mutation, Remove after delete. The store
// stays authoritative whether or not a Persister is attached.
type Persister interface {
	LoadAll(ctx context.Context) ([]domain.Benefit, error)
	Persist(ctx context.Context, b domain.Benefit) error
	Remove(ctx context.Context, id int64) error
}
