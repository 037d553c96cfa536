package service

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivramos/beneficioops/internal/domain"
	"github.com/olivramos/beneficioops/internal/store"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedPair(t *testing.T, m *store.Memory, valorA, valorB string) (domain.Benefit, domain.Benefit) {
	t.Helper()
	ctx := context.Background()

	a, err := m.Create(ctx, domain.BenefitInput{Nome: "Beneficio A", Valor: dec(valorA), Ativo: true})
	require.NoError(t, err)
	b, err := m.Create(ctx, domain.BenefitInput{Nome: "Beneficio B", Valor: dec(valorB), Ativo: true})
	require.NoError(t, err)
	return a, b
}

func totalValue(t *testing.T, m *store.Memory) decimal.Decimal {
	t.Helper()
	records, err := m.List(context.Background())
	require.NoError(t, err)

	total := decimal.Zero
	for _, b := range records {
		total = total.Add(b.Valor)
	}
	return total
}

func TestTransferMovesValueAndBumpsVersions(t *testing.T) {
	m := store.NewMemory(nil, nil)
	engine := NewTransferEngine(m)
	a, b := seedPair(t, m, "500", "200")

	before := totalValue(t, m)

	from, to, err := engine.Transfer(context.Background(), domain.TransferRequest{
		FromID: a.ID, ToID: b.ID, Amount: dec("300"),
	})
	require.NoError(t, err)

	assert.True(t, from.Valor.Equal(dec("200")), "got %s", from.Valor)
	assert.True(t, to.Valor.Equal(dec("500")), "got %s", to.Valor)
	assert.Equal(t, a.Version+1, from.Version)
	assert.Equal(t, b.Version+1, to.Version)

	after := totalValue(t, m)
	assert.True(t, before.Equal(after), "conservation violated: %s != %s", before, after)
	assert.True(t, after.Equal(dec("700")))
}

func TestTransferNonPositiveAmount(t *testing.T) {
	m := store.NewMemory(nil, nil)
	engine := NewTransferEngine(m)
	a, b := seedPair(t, m, "500", "200")

	for _, amount := range []string{"0", "-10"} {
		_, _, err := engine.Transfer(context.Background(), domain.TransferRequest{
			FromID: a.ID, ToID: b.ID, Amount: dec(amount),
		})
		assert.True(t, domain.IsCode(err, domain.ErrorValidation), "amount %s", amount)
	}
}

func TestTransferToSelfRejected(t *testing.T) {
	m := store.NewMemory(nil, nil)
	engine := NewTransferEngine(m)
	a, _ := seedPair(t, m, "500", "200")

	_, _, err := engine.Transfer(context.Background(), domain.TransferRequest{
		FromID: a.ID, ToID: a.ID, Amount: dec("10"),
	})
	assert.True(t, domain.IsCode(err, domain.ErrorValidation))

	// Version must not have been bumped by the rejected self-transfer.
	current, err := m.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Version, current.Version)
}

func TestTransferUnknownIDs(t *testing.T) {
	m := store.NewMemory(nil, nil)
	engine := NewTransferEngine(m)
	a, _ := seedPair(t, m, "500", "200")

	_, _, err := engine.Transfer(context.Background(), domain.TransferRequest{
		FromID: 999, ToID: a.ID, Amount: dec("10"),
	})
	assert.True(t, domain.IsCode(err, domain.ErrorNotFound))

	_, _, err = engine.Transfer(context.Background(), domain.TransferRequest{
		FromID: a.ID, ToID: 999, Amount: dec("10"),
	})
	assert.True(t, domain.IsCode(err, domain.ErrorNotFound))
}

func TestTransferInsufficientBalanceLeavesRecordsUntouched(t *testing.T) {
	m := store.NewMemory(nil, nil)
	engine := NewTransferEngine(m)
	a, b := seedPair(t, m, "100", "200")

	_, _, err := engine.Transfer(context.Background(), domain.TransferRequest{
		FromID: a.ID, ToID: b.ID, Amount: dec("100.01"),
	})
	assert.True(t, domain.IsCode(err, domain.ErrorInsufficientBalance))

	curA, err := m.Get(context.Background(), a.ID)
	require.NoError(t, err)
	curB, err := m.Get(context.Background(), b.ID)
	require.NoError(t, err)

	assert.True(t, curA.Valor.Equal(dec("100")))
	assert.True(t, curB.Valor.Equal(dec("200")))
	assert.Equal(t, a.Version, curA.Version)
	assert.Equal(t, b.Version, curB.Version)
}

func TestTransferExactBalanceAllowed(t *testing.T) {
	m := store.NewMemory(nil, nil)
	engine := NewTransferEngine(m)
	a, b := seedPair(t, m, "100", "0")

	from, to, err := engine.Transfer(context.Background(), domain.TransferRequest{
		FromID: a.ID, ToID: b.ID, Amount: dec("100"),
	})
	require.NoError(t, err)
	assert.True(t, from.Valor.IsZero())
	assert.True(t, to.Valor.Equal(dec("100")))
}

func TestTransferConcurrentConservation(t *testing.T) {
	m := store.NewMemory(nil, nil)
	engine := NewTransferEngine(m)
	a, b := seedPair(t, m, "1000", "1000")

	before := totalValue(t, m)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := domain.TransferRequest{FromID: a.ID, ToID: b.ID, Amount: dec("10")}
			if i%2 == 0 {
				req.FromID, req.ToID = req.ToID, req.FromID
			}
			// Failures (insufficient balance) are fine; they must simply
			// leave no trace.
			engine.Transfer(context.Background(), req)
		}(i)
	}
	wg.Wait()

	after := totalValue(t, m)
	assert.True(t, before.Equal(after), "conservation violated: %s != %s", before, after)

	records, err := m.List(context.Background())
	require.NoError(t, err)
	for _, r := range records {
		assert.False(t, r.Valor.IsNegative(), "beneficio %d went negative: %s", r.ID, r.Valor)
	}
}

func TestTransferConcurrentDrain(t *testing.T) {
	m := store.NewMemory(nil, nil)
	engine := NewTransferEngine(m)
	a, b := seedPair(t, m, "20", "0")

	// 50 workers race to move 1 each from a balance of 20; exactly 20 may win.
	var wg sync.WaitGroup
	success := 0
	var mu sync.Mutex
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := engine.Transfer(context.Background(), domain.TransferRequest{
				FromID: a.ID, ToID: b.ID, Amount: dec("1"),
			})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, success)

	curA, err := m.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, curA.Valor.IsZero(), "got %s", curA.Valor)
}

func TestTransferRandomizedConservation(t *testing.T) {
	m := store.NewMemory(nil, nil)
	engine := NewTransferEngine(m)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := m.Create(ctx, domain.BenefitInput{Nome: "Beneficio", Valor: dec("100"), Ativo: true})
		require.NoError(t, err)
	}
	before := totalValue(t, m)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		from := int64(rng.Intn(5) + 1)
		to := int64(rng.Intn(5) + 1)
		amount := decimal.NewFromInt(int64(rng.Intn(50)))
		engine.Transfer(ctx, domain.TransferRequest{FromID: from, ToID: to, Amount: amount})
	}

	after := totalValue(t, m)
	assert.True(t, before.Equal(after), "conservation violated: %s != %s", before, after)
}
