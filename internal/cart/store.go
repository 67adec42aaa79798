// Package cart owns the authoritative in-memory line item set for a
// session and its durable copy. All mutations go through the Store; no
// other component writes the carts collection.
package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/domain"
	"github.com/Tjay-cmd/apex-nutrition-sub001/internal/pricing"
	"github.com/google/uuid"
)

// Store holds one session's cart. The in-memory working set is
// authoritative for the lifetime of the session; the durable copy is
// best-effort and may lag after a failed save. Mutations are serialized
// by a mutex, so within one store they are totally ordered. Two sessions
// for the same user still reconcile last-writer-wins through the shared
// durable store.
type Store struct {
	userID string
	repo   Repository
	cache  Cache
	log    *slog.Logger

	mu        sync.Mutex
	items     []domain.LineItem
	createdAt time.Time

	subMu sync.RWMutex
	subs  []func()
}

func NewStore(userID string, repo Repository, cache Cache, log *slog.Logger) *Store {
	return &Store{
		userID:    userID,
		repo:      repo,
		cache:     cache,
		log:       log.With("user_id", userID),
		createdAt: time.Now(),
	}
}

// Subscribe registers fn to run after every completed mutation. The cart
// is a single source of truth with an explicit observer mechanism rather
// than ambient shared state.
func (s *Store) Subscribe(fn func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) notify() {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, fn := range s.subs {
		fn()
	}
}

// Load restores the working set from cache or repository. Restored
// entries are validated fail-closed: any invalid entry discards the whole
// cart and wipes the durable copy. A load failure falls back to an empty
// cart so the session stays usable.
func (s *Store) Load(ctx context.Context) error {
	cart, err := s.loadStored(ctx)
	if err != nil {
		if !errors.Is(err, ErrCartNotFound) {
			s.log.Error("cart load failed, starting empty", "error", err)
		}
		s.setItems(nil)
		return nil
	}

	if err := ValidateRestored(cart); err != nil {
		s.log.Warn("discarding corrupt stored cart", "error", err)
		if delErr := s.repo.Delete(ctx, s.userID); delErr != nil {
			s.log.Error("failed to wipe corrupt cart", "error", delErr)
		}
		s.invalidateCache()
		s.setItems(nil)
		return nil
	}

	s.mu.Lock()
	s.items = cart.Items
	s.createdAt = cart.CreatedAt
	s.mu.Unlock()
	return nil
}

func (s *Store) loadStored(ctx context.Context) (*domain.Cart, error) {
	cart, err := s.cache.Get(ctx, s.userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		s.log.Warn("cart cache get failed", "error", err)
	}

	cart, err = s.repo.Load(ctx, s.userID)
	if err != nil {
		return nil, err
	}

	go func() {
		if setErr := s.cache.Set(context.Background(), s.userID, cart); setErr != nil {
			s.log.Warn("cart cache set failed", "error", setErr)
		}
	}()

	return cart, nil
}

func (s *Store) setItems(items []domain.LineItem) {
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

// AddItem appends a line item, or bumps the quantity of an existing one
// with the same (product, options) key. Requests with a non-positive
// quantity or an identity-less product are dropped as logged no-ops.
func (s *Store) AddItem(ctx context.Context, product domain.Product, quantity int, opts domain.SelectedOptions) {
	if quantity <= 0 {
		s.log.Warn("ignoring add with non-positive quantity", "product_id", product.ID, "quantity", quantity)
		return
	}
	if product.ID == "" || product.Name == "" {
		s.log.Warn("ignoring add of product without identity", "product_id", product.ID)
		return
	}

	key := product.ID + "|" + opts.Key()

	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].MergeKey() == key {
			s.items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, domain.LineItem{
			ID:              uuid.NewString(),
			ProductID:       product.ID,
			Quantity:        quantity,
			Product:         product,
			SelectedOptions: opts,
		})
	}
	s.mu.Unlock()

	s.persist(ctx)
}

// RemoveItem filters the item out. Removing an unknown id is a no-op, so
// the operation is idempotent.
func (s *Store) RemoveItem(ctx context.Context, itemID string) {
	s.mu.Lock()
	kept := s.items[:0]
	for _, it := range s.items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	s.items = kept
	s.mu.Unlock()

	s.persist(ctx)
}

// UpdateQuantity sets the quantity in place. A quantity of zero or below
// removes the item instead; the cart never persists a non-positive
// quantity.
func (s *Store) UpdateQuantity(ctx context.Context, itemID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, itemID)
		return
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == itemID {
			s.items[i].Quantity = quantity
			break
		}
	}
	s.mu.Unlock()

	s.persist(ctx)
}

// Clear empties the working set and the durable store unconditionally.
func (s *Store) Clear(ctx context.Context) {
	s.setItems(nil)

	if err := s.repo.Delete(ctx, s.userID); err != nil {
		s.log.Error("failed to clear stored cart", "error", err)
	}
	s.invalidateCache()
	s.notify()
}

// persist writes the full working set through to the repository. Save
// failures are logged and swallowed: the in-memory cart stays
// authoritative even when the durable copy is stale.
func (s *Store) persist(ctx context.Context) {
	s.mu.Lock()
	cart := &domain.Cart{
		UserID:    s.userID,
		Items:     append([]domain.LineItem(nil), s.items...),
		CreatedAt: s.createdAt,
	}
	s.mu.Unlock()

	if err := s.repo.Save(ctx, cart); err != nil {
		s.log.Error("cart save failed, in-memory copy remains authoritative", "error", err)
	}
	s.invalidateCache()
	s.notify()
}

func (s *Store) invalidateCache() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, s.userID); err != nil {
		s.log.Warn("cart cache invalidate failed", "error", err)
	}
}

// Items returns a copy of the working set.
func (s *Store) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.LineItem(nil), s.items...)
}

// TotalItems sums quantities across valid entries.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	for _, it := range s.items {
		if it.Valid() {
			n += it.Quantity
		}
	}
	return n
}

func (s *Store) Subtotal() float64 {
	return pricing.Subtotal(s.Items())
}

func (s *Store) ShippingCost() float64 {
	return s.Summary().Shipping
}

func (s *Store) Total() float64 {
	return pricing.Total(s.Items())
}

// Summary derives the current order summary via the pricing engine.
func (s *Store) Summary() pricing.Summary {
	return pricing.Summarize(s.Items())
}
