// Package cartstore is the client-side cart state holder shared by every
// view of one browsing session (header badge, sidebar, checkout summary).
//
// Mutations are optimistic: the in-memory state changes immediately, the
// backend call runs, and then a full refresh overwrites whatever was
// speculated. The refresh happens whether the call succeeded or not, so a
// failed mutation is reverted by the refresh and tagged NoticeReverted.
// When two mutations race, the last refresh to complete wins.
package cartstore

import (
	"context"
	"errors"
	"sync"

	"github.com/01moynul/storefront-golang/internal/apperr"
	"github.com/01moynul/storefront-golang/internal/events"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/pricing"
)

// Backend is the server the store reconciles with.
type Backend interface {
	ListCart(ctx context.Context) ([]models.CartItemWithProduct, error)
	AddToCart(ctx context.Context, productID int64, quantity int) (string, error)
	UpdateCartItemQuantity(ctx context.Context, itemID int64, quantity int) (string, error)
	RemoveFromCart(ctx context.Context, itemID int64) (string, error)
	ClearCart(ctx context.Context) error
}

// ErrInFlight is returned when a mutation for the same row is still running.
var ErrInFlight = errors.New("cartstore: a change to this item is already in progress")

// NoticeKind classifies the toast shown after a mutation.
type NoticeKind string

const (
	NoticeSuccess  NoticeKind = "success"
	NoticeReverted NoticeKind = "reverted"
	NoticeError    NoticeKind = "error"
)

// Notice is the outcome of the last mutation.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Snapshot is an immutable copy of the store state.
type Snapshot struct {
	Items    []models.CartItemWithProduct
	Totals   pricing.Totals
	Loaded   bool
	InFlight map[int64]bool // cart item ids with a mutation running
	Adding   map[int64]bool // product ids with an add running
	Clearing bool
	Notice   *Notice
	Version  uint64
}

// Busy reports whether the control for itemID should be disabled.
func (s Snapshot) Busy(itemID int64) bool {
	return s.Clearing || s.InFlight[itemID]
}

// Empty reports whether the cart has no items.
func (s Snapshot) Empty() bool { return len(s.Items) == 0 }

// Store holds one user's cart in memory.
type Store struct {
	backend Backend
	rates   pricing.Rates

	mu       sync.Mutex
	items    []models.CartItemWithProduct
	loaded   bool
	inFlight map[int64]bool
	adding   map[int64]bool
	clearing bool
	notice   *Notice
	version  uint64
	subs     map[int]func(Snapshot)
	nextSub  int
}

// Option configures a Store.
type Option func(*Store)

// WithRates overrides the checkout rates used for Snapshot.Totals.
func WithRates(r pricing.Rates) Option {
	return func(s *Store) { s.rates = r }
}

// New creates an empty, not yet loaded store.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		rates:    pricing.DefaultRates,
		inFlight: map[int64]bool{},
		adding:   map[int64]bool{},
		subs:     map[int]func(Snapshot){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn to receive a snapshot after every change.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	items := append([]models.CartItemWithProduct(nil), s.items...)
	inFlight := make(map[int64]bool, len(s.inFlight))
	for k := range s.inFlight {
		inFlight[k] = true
	}
	adding := make(map[int64]bool, len(s.adding))
	for k := range s.adding {
		adding[k] = true
	}
	var notice *Notice
	if s.notice != nil {
		n := *s.notice
		notice = &n
	}
	return Snapshot{
		Items:    items,
		Totals:   pricing.Checkout(items, s.rates),
		Loaded:   s.loaded,
		InFlight: inFlight,
		Adding:   adding,
		Clearing: s.clearing,
		Notice:   notice,
		Version:  s.version,
	}
}

// commit bumps the version and returns what to send to subscribers. Must be
// called with s.mu held; the caller notifies after unlocking.
func (s *Store) commit() (Snapshot, []func(Snapshot)) {
	s.version++
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return snap, subs
}

func publish(snap Snapshot, subs []func(Snapshot)) {
	for _, fn := range subs {
		fn(snap)
	}
}

// Load fetches the cart. Without a session the cart is simply empty.
// On a backend error the current state is kept and the error returned.
func (s *Store) Load(ctx context.Context) error {
	items, err := s.backend.ListCart(ctx)
	if errors.Is(err, apperr.ErrUnauthenticated) {
		items, err = nil, nil
	}
	if err != nil {
		return err
	}
	if items == nil {
		items = []models.CartItemWithProduct{}
	}

	s.mu.Lock()
	s.items = items
	s.loaded = true
	snap, subs := s.commit()
	s.mu.Unlock()
	publish(snap, subs)
	return nil
}

// Refresh re-runs Load to replace speculative state with server truth.
func (s *Store) Refresh(ctx context.Context) error {
	return s.Load(ctx)
}

// UpdateItemOptimistically rewrites the quantity in memory right away.
// A non-positive quantity drops the item, matching the server.
func (s *Store) UpdateItemOptimistically(itemID int64, quantity int) {
	if quantity <= 0 {
		s.RemoveItemOptimistically(itemID)
		return
	}
	s.mu.Lock()
	items := make([]models.CartItemWithProduct, len(s.items))
	copy(items, s.items)
	for i := range items {
		if items[i].ID == itemID {
			items[i].Quantity = quantity
		}
	}
	s.items = items
	snap, subs := s.commit()
	s.mu.Unlock()
	publish(snap, subs)
}

// RemoveItemOptimistically drops the item from memory right away.
func (s *Store) RemoveItemOptimistically(itemID int64) {
	s.mu.Lock()
	items := make([]models.CartItemWithProduct, 0, len(s.items))
	for _, it := range s.items {
		if it.ID != itemID {
			items = append(items, it)
		}
	}
	s.items = items
	snap, subs := s.commit()
	s.mu.Unlock()
	publish(snap, subs)
}

func (s *Store) begin(set map[int64]bool, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set[id] || s.clearing {
		return ErrInFlight
	}
	set[id] = true
	return nil
}

// rowReverter captures itemID as it is now, and returns a func that puts
// it back. It must run before the optimistic change.
func (s *Store) rowReverter(itemID int64) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.items {
		if it.ID == itemID {
			prev, at := it, i
			return func() { s.restoreRowLocked(prev, at) }
		}
	}
	return nil
}

// restoreRowLocked reinstates prev at its old position. Other rows keep
// whatever state they reached in the meantime.
func (s *Store) restoreRowLocked(prev models.CartItemWithProduct, at int) {
	items := make([]models.CartItemWithProduct, 0, len(s.items)+1)
	for _, it := range s.items {
		if it.ID != prev.ID {
			items = append(items, it)
		}
	}
	if at > len(items) {
		at = len(items)
	}
	items = append(items[:at], append([]models.CartItemWithProduct{prev}, items[at:]...)...)
	s.items = items
}

// finish reconciles after a mutation: refresh unconditionally, release the
// in-flight marker and record the notice. When the mutation failed and the
// refresh could not fetch server state either, revert (if any) undoes the
// optimistic change so the local state is the pre-mutation one. A refresh
// failure after a successful mutation leaves the optimistic state in place
// with a NoticeError. Both errors are returned.
func (s *Store) finish(ctx context.Context, release, revert func(), msg string, opErr error) (error, error) {
	refreshErr := s.Refresh(ctx)

	s.mu.Lock()
	release()
	switch {
	case opErr != nil:
		if refreshErr != nil && revert != nil {
			revert()
		}
		s.notice = &Notice{Kind: NoticeReverted, Message: apperr.Message(opErr)}
	case refreshErr != nil:
		s.notice = &Notice{Kind: NoticeError, Message: apperr.Message(refreshErr)}
	default:
		s.notice = &Notice{Kind: NoticeSuccess, Message: msg}
	}
	snap, subs := s.commit()
	s.mu.Unlock()
	publish(snap, subs)

	return opErr, refreshErr
}

func firstErr(opErr, refreshErr error) error {
	if opErr != nil {
		return opErr
	}
	return refreshErr
}

// UpdateQuantity changes an item's quantity optimistically and reconciles.
func (s *Store) UpdateQuantity(ctx context.Context, itemID int64, quantity int) error {
	if err := s.begin(s.inFlight, itemID); err != nil {
		return err
	}
	revert := s.rowReverter(itemID)
	s.UpdateItemOptimistically(itemID, quantity)
	msg, err := s.backend.UpdateCartItemQuantity(ctx, itemID, quantity)
	return firstErr(s.finish(ctx, func() { delete(s.inFlight, itemID) }, revert, msg, err))
}

// Remove drops an item optimistically and reconciles.
func (s *Store) Remove(ctx context.Context, itemID int64) error {
	if err := s.begin(s.inFlight, itemID); err != nil {
		return err
	}
	revert := s.rowReverter(itemID)
	s.RemoveItemOptimistically(itemID)
	msg, err := s.backend.RemoveFromCart(ctx, itemID)
	return firstErr(s.finish(ctx, func() { delete(s.inFlight, itemID) }, revert, msg, err))
}

// Add puts a product in the cart. There is no row to update optimistically
// yet, so only the add button is marked busy until the refresh lands.
func (s *Store) Add(ctx context.Context, productID int64, quantity int) error {
	if err := s.begin(s.adding, productID); err != nil {
		return err
	}
	s.mu.Lock()
	snap, subs := s.commit()
	s.mu.Unlock()
	publish(snap, subs)

	msg, err := s.backend.AddToCart(ctx, productID, quantity)
	return firstErr(s.finish(ctx, func() { delete(s.adding, productID) }, nil, msg, err))
}

// Clear empties the cart optimistically and reconciles.
func (s *Store) Clear(ctx context.Context) error {
	return firstErr(s.clear(ctx))
}

func (s *Store) clear(ctx context.Context) (error, error) {
	s.mu.Lock()
	if s.clearing {
		s.mu.Unlock()
		return ErrInFlight, nil
	}
	s.clearing = true
	prev := s.items
	s.items = []models.CartItemWithProduct{}
	snap, subs := s.commit()
	s.mu.Unlock()
	publish(snap, subs)

	err := s.backend.ClearCart(ctx)
	revert := func() { s.items = prev }
	return s.finish(ctx, func() { s.clearing = false }, revert, "Cart cleared", err)
}

// ClearCart lets the store act as the checkout flow's CartClearer, so the
// views see the cart empty out as the order is placed. Only the clear call
// decides the outcome; a failed refresh afterwards shows up as a
// NoticeError on the snapshot.
func (s *Store) ClearCart(ctx context.Context) error {
	opErr, _ := s.clear(ctx)
	return opErr
}

// Follow refreshes on every invalidation until ctx is done or the channel
// closes. Refresh errors are left for the next invalidation to retry.
func (s *Store) Follow(ctx context.Context, invalidations <-chan events.Invalidation) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-invalidations:
			if !ok {
				return
			}
			_ = s.Refresh(ctx)
		}
	}
}
