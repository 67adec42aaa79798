package cart

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	m       sync.RWMutex
	cart    *domain.Cart
	loadErr error
	saveErr error
	deletes int
	saves   int
}

func (m *mockRepository) Load(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.cart == nil {
		return nil, ErrCartNotFound
	}
	return m.cart, nil
}

func (m *mockRepository) Save(_ context.Context, c *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.cart = c
	return nil
}

func (m *mockRepository) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.deletes++
	m.cart = nil
	return nil
}

type mockCache struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockCache) Get(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, ErrCacheMiss
	}
	return m.cart, nil
}

func (m *mockCache) Set(_ context.Context, _ string, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = cart
	return m.err
}

func (m *mockCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	return nil
}

func newTestStore(t *testing.T, repo *mockRepository) *Store {
	t.Helper()
	s := NewStore("user-1", repo, &mockCache{}, slog.Default())
	require.NoError(t, s.Load(context.Background()))
	return s
}

func whey(price float64) domain.Product {
	return domain.Product{ID: "p1", Name: "Whey Protein", Price: price}
}

func TestAddItem_MergesOnSameProductAndOptions(t *testing.T) {
	s := newTestStore(t, &mockRepository{})
	ctx := context.Background()
	opts := domain.SelectedOptions{Flavor: "chocolate", Size: "1kg"}

	s.AddItem(ctx, whey(250), 2, opts)
	s.AddItem(ctx, whey(250), 3, opts)

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 5, s.TotalItems())
}

func TestAddItem_DifferentOptionsStaySeparate(t *testing.T) {
	s := newTestStore(t, &mockRepository{})
	ctx := context.Background()

	s.AddItem(ctx, whey(250), 1, domain.SelectedOptions{Flavor: "chocolate"})
	s.AddItem(ctx, whey(250), 1, domain.SelectedOptions{Flavor: "vanilla"})

	assert.Len(t, s.Items(), 2)
}

func TestAddItem_RejectsInvalidRequests(t *testing.T) {
	repo := &mockRepository{}
	s := newTestStore(t, repo)
	ctx := context.Background()

	s.AddItem(ctx, whey(250), 0, domain.SelectedOptions{})
	s.AddItem(ctx, whey(250), -1, domain.SelectedOptions{})
	s.AddItem(ctx, domain.Product{Price: 10}, 1, domain.SelectedOptions{})

	assert.Empty(t, s.Items())
	assert.Zero(t, repo.saves, "rejected adds must not persist")
}

func TestRemoveItem_IsIdempotent(t *testing.T) {
	s := newTestStore(t, &mockRepository{})
	ctx := context.Background()

	s.AddItem(ctx, whey(250), 2, domain.SelectedOptions{})
	id := s.Items()[0].ID

	s.RemoveItem(ctx, id)
	first := s.Items()
	s.RemoveItem(ctx, id)
	second := s.Items()

	assert.Empty(t, first)
	assert.Equal(t, first, second)

	// Unknown ids never raise.
	s.RemoveItem(ctx, "no-such-item")
}

func TestUpdateQuantity_ZeroOrBelowRemoves(t *testing.T) {
	s := newTestStore(t, &mockRepository{})
	ctx := context.Background()

	s.AddItem(ctx, whey(250), 2, domain.SelectedOptions{})
	id := s.Items()[0].ID

	s.UpdateQuantity(ctx, id, 0)
	assert.Empty(t, s.Items(), "quantity 0 must remove, never persist")

	s.AddItem(ctx, whey(250), 2, domain.SelectedOptions{})
	id = s.Items()[0].ID
	s.UpdateQuantity(ctx, id, -3)
	assert.Empty(t, s.Items())
}

func TestUpdateQuantity_SetsInPlace(t *testing.T) {
	s := newTestStore(t, &mockRepository{})
	ctx := context.Background()

	s.AddItem(ctx, whey(250), 2, domain.SelectedOptions{})
	id := s.Items()[0].ID

	s.UpdateQuantity(ctx, id, 7)
	require.Len(t, s.Items(), 1)
	assert.Equal(t, 7, s.Items()[0].Quantity)
}

func TestClear_EmptiesWorkingSetAndStore(t *testing.T) {
	repo := &mockRepository{}
	s := newTestStore(t, repo)
	ctx := context.Background()

	s.AddItem(ctx, whey(250), 2, domain.SelectedOptions{})
	s.Clear(ctx)

	assert.Empty(t, s.Items())
	repo.m.RLock()
	defer repo.m.RUnlock()
	assert.Nil(t, repo.cart)
}

func TestLoad_RestoresValidCart(t *testing.T) {
	repo := &mockRepository{cart: &domain.Cart{
		UserID: "user-1",
		Items: []domain.LineItem{
			{ID: "i1", ProductID: "p1", Quantity: 2, Product: whey(250)},
			{ID: "i2", ProductID: "p2", Quantity: 1, Product: domain.Product{ID: "p2", Name: "Creatine", Price: 149.99}},
		},
	}}
	s := newTestStore(t, repo)

	assert.Len(t, s.Items(), 2)
	assert.Equal(t, 3, s.TotalItems())
}

func TestLoad_FailClosedOnCorruptEntry(t *testing.T) {
	// One entry of three has a non-positive price: the whole cart must be
	// discarded and the durable copy wiped, not restored as a two-item cart.
	repo := &mockRepository{cart: &domain.Cart{
		UserID: "user-1",
		Items: []domain.LineItem{
			{ID: "i1", ProductID: "p1", Quantity: 1, Product: whey(250)},
			{ID: "i2", ProductID: "p2", Quantity: 1, Product: domain.Product{ID: "p2", Name: "Creatine", Price: -10}},
			{ID: "i3", ProductID: "p3", Quantity: 1, Product: domain.Product{ID: "p3", Name: "BCAA", Price: 80}},
		},
	}}
	s := newTestStore(t, repo)

	assert.Empty(t, s.Items())
	repo.m.RLock()
	defer repo.m.RUnlock()
	assert.Equal(t, 1, repo.deletes, "corrupt stored cart must be wiped")
	assert.Nil(t, repo.cart)
}

func TestLoad_MissingCartMeansEmpty(t *testing.T) {
	s := newTestStore(t, &mockRepository{})
	assert.Empty(t, s.Items())
}

func TestLoad_RepositoryErrorFallsBackToEmpty(t *testing.T) {
	repo := &mockRepository{loadErr: assert.AnError}
	s := NewStore("user-1", repo, &mockCache{}, slog.Default())

	require.NoError(t, s.Load(context.Background()))
	assert.Empty(t, s.Items())
}

func TestSaveFailure_InMemoryStaysAuthoritative(t *testing.T) {
	repo := &mockRepository{saveErr: assert.AnError}
	s := newTestStore(t, repo)
	ctx := context.Background()

	s.AddItem(ctx, whey(250), 2, domain.SelectedOptions{})

	require.Len(t, s.Items(), 1)
	assert.Equal(t, 2, s.Items()[0].Quantity)
}

func TestDerivedTotals(t *testing.T) {
	s := newTestStore(t, &mockRepository{})
	ctx := context.Background()

	s.AddItem(ctx, whey(250), 2, domain.SelectedOptions{})

	assert.InDelta(t, 500, s.Subtotal(), 0.001)
	assert.InDelta(t, 0, s.ShippingCost(), 0.001)
	assert.InDelta(t, 575, s.Total(), 0.001)

	summary := s.Summary()
	assert.InDelta(t, 75, summary.Tax, 0.001)
}

func TestSubscribersNotifiedOnMutation(t *testing.T) {
	s := newTestStore(t, &mockRepository{})
	ctx := context.Background()

	var mu sync.Mutex
	notified := 0
	s.Subscribe(func() {
		mu.Lock()
		notified++
		mu.Unlock()
	})

	s.AddItem(ctx, whey(250), 1, domain.SelectedOptions{})
	id := s.Items()[0].ID
	s.UpdateQuantity(ctx, id, 4)
	s.RemoveItem(ctx, id)
	s.Clear(ctx)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 4, notified)
}

func TestManager_SharesStorePerUser(t *testing.T) {
	m := NewManager(&mockRepository{}, &mockCache{}, slog.Default())
	ctx := context.Background()

	s1, err := m.Get(ctx, "user-1")
	require.NoError(t, err)
	s2, err := m.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Same(t, s1, s2)

	other, err := m.Get(ctx, "user-2")
	require.NoError(t, err)
	assert.NotSame(t, s1, other)

	m.Release("user-1")
	s3, err := m.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.NotSame(t, s1, s3)
}
