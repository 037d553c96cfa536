package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/olivramos/beneficioops/internal/domain"
)

var persistFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "beneficio_persist_failures_total",
	Help: "Collaborator persist calls that failed after an accepted mutation",
}, []string{"op"})

// Memory is the authoritative in-memory store. A single RWMutex serializes
// mutations; reads return copies, so callers observe only pre- or
// post-states of any mutation.
type Memory struct {
	mu        sync.RWMutex
	records   map[int64]domain.Benefit
	order     []int64
	persister Persister
	logger    *zap.Logger
}

// NewMemory creates an empty store. persister may be nil for pure in-memory
// operation.
func NewMemory(persister Persister, logger *zap.Logger) *Memory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Memory{
		records:   make(map[int64]domain.Benefit),
		persister: persister,
		logger:    logger,
	}
}

// Load pulls the collaborator's records into the store. Call once at
// startup, before serving traffic.
func (m *Memory) Load(ctx context.Context) error {
	if m.persister == nil {
		return nil
	}

	records, err := m.persister.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load from persister: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make(map[int64]domain.Benefit, len(records))
	m.order = make([]int64, 0, len(records))
	for _, b := range records {
		m.records[b.ID] = b
		m.order = append(m.order, b.ID)
	}
	return nil
}

func (m *Memory) Create(ctx context.Context, input domain.BenefitInput) (domain.Benefit, error) {
	if err := validateInput(input); err != nil {
		return domain.Benefit{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	b := domain.Benefit{
		ID:        m.nextID(),
		Nome:      input.Nome,
		Descricao: input.Descricao,
		Valor:     input.Valor,
		Ativo:     input.Ativo,
		Version:   1,
	}
	m.records[b.ID] = b
	m.order = append(m.order, b.ID)

	m.persist(ctx, "create", b)
	return b, nil
}

func (m *Memory) List(ctx context.Context) ([]domain.Benefit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Benefit, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id])
	}
	return out, nil
}

func (m *Memory) ListActive(ctx context.Context) ([]domain.Benefit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Benefit, 0, len(m.order))
	for _, id := range m.order {
		if b := m.records[id]; b.Ativo {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *Memory) Get(ctx context.Context, id int64) (domain.Benefit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.records[id]
	if !ok {
		return domain.Benefit{}, domain.NewNotFound("id", id)
	}
	return b, nil
}

func (m *Memory) Update(ctx context.Context, id int64, input domain.BenefitInput) (domain.Benefit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.records[id]
	if !ok {
		return domain.Benefit{}, domain.NewNotFound("id", id)
	}
	if err := validateInput(input); err != nil {
		return domain.Benefit{}, err
	}
	if input.ExpectedVersion != nil && *input.ExpectedVersion != b.Version {
		return domain.Benefit{}, domain.NewConflict(id, *input.ExpectedVersion, b.Version)
	}

	b.Nome = input.Nome
	b.Descricao = input.Descricao
	b.Valor = input.Valor
	b.Ativo = input.Ativo
	b.Version++
	m.records[id] = b

	m.persist(ctx, "update", b)
	return b, nil
}

func (m *Memory) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return domain.NewNotFound("id", id)
	}
	delete(m.records, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}

	m.remove(ctx, id)
	return nil
}

func (m *Memory) ApplyTransfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) (domain.Benefit, domain.Benefit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from, ok := m.records[fromID]
	if !ok {
		return domain.Benefit{}, domain.Benefit{}, domain.NewNotFound("fromId", fromID)
	}
	to, ok := m.records[toID]
	if !ok {
		return domain.Benefit{}, domain.Benefit{}, domain.NewNotFound("toId", toID)
	}
	if !from.Ativo {
		return domain.Benefit{}, domain.Benefit{}, domain.NewValidation("fromId", "source beneficio is not active")
	}
	if !to.Ativo {
		return domain.Benefit{}, domain.Benefit{}, domain.NewValidation("toId", "destination beneficio is not active")
	}
	if from.Valor.LessThan(amount) {
		return domain.Benefit{}, domain.Benefit{}, domain.NewInsufficientBalance(fromID, from.Valor, amount)
	}

	from.Valor = from.Valor.Sub(amount)
	to.Valor = to.Valor.Add(amount)
	from.Version++
	to.Version++
	m.records[fromID] = from
	m.records[toID] = to

	m.persist(ctx, "transfer", from)
	m.persist(ctx, "transfer", to)
	return from, to, nil
}

// nextID is one greater than the current maximum id, or 1 when empty.
func (m *Memory) nextID() int64 {
	var max int64
	for id := range m.records {
		if id > max {
			max = id
		}
	}
	return max + 1
}

func (m *Memory) persist(ctx context.Context, op string, b domain.Benefit) {
	if m.persister == nil {
		return
	}
	if err := m.persister.Persist(ctx, b); err != nil {
		persistFailures.WithLabelValues(op).Inc()
		m.logger.Warn("persist failed",
			zap.String("op", op),
			zap.Int64("id", b.ID),
			zap.Error(err))
	}
}

func (m *Memory) remove(ctx context.Context, id int64) {
	if m.persister == nil {
		return
	}
	if err := m.persister.Remove(ctx, id); err != nil {
		persistFailures.WithLabelValues("delete").Inc()
		m.logger.Warn("remove failed", zap.Int64("id", id), zap.Error(err))
	}
}

func validateInput(input domain.BenefitInput) error {
	if strings.TrimSpace(input.Nome) == "" {
		return domain.NewValidation("nome", "nome is required")
	}
	if input.Valor.IsNegative() {
		return domain.NewValidation("valor", "valor must be non-negative")
	}
	return nil
}
