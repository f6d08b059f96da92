// Package cartstore keeps the client-side cart in step with the remote cart service
// for whichever user is currently signed in.
package cartstore

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/angelmondragon/bookstore/internal/identity"
	pkgerrors "github.com/angelmondragon/bookstore/pkg/errors"
	"github.com/angelmondragon/bookstore/pkg/logger"
	"github.com/angelmondragon/bookstore/pkg/metrics"
	"github.com/angelmondragon/bookstore/pkg/pricing"
	"github.com/angelmondragon/bookstore/pkg/storefront"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	opFetch  = "fetch"
	opAdd    = "add"
	opUpdate = "update"
)

// Remote is the cart slice of the storefront API.
type Remote interface {
	FetchCart(ctx context.Context, userID uuid.UUID) ([]storefront.CartLine, error)
	AddToCart(ctx context.Context, m storefront.CartMutation) ([]storefront.CartLine, error)
	UpdateCart(ctx context.Context, m storefront.CartMutation) ([]storefront.CartLine, error)
}

// Store is safe for concurrent use. Remote calls run without holding the lock;
// each one carries the binding epoch and a sequence number, and its response is
// applied only if both are still the latest when it arrives.
type Store struct {
	remote         Remote
	logg           *logger.Logger
	metrics        *metrics.CartSyncMetrics
	onAuthRequired func()
	now            func() time.Time

	// notify orders state transitions with their subscriber callbacks.
	notify sync.Mutex

	mu      sync.Mutex
	userID  uuid.UUID
	bound   bool
	epoch   uint64
	seq     uint64
	lines   []Line
	subs    map[int]func(Snapshot)
	nextSub int
}

type Option func(*Store)

func WithLogger(logg *logger.Logger) Option {
	return func(s *Store) {
		if logg != nil {
			s.logg = logg
		}
	}
}

func WithMetrics(m *metrics.CartSyncMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithAuthRequiredHook registers fn to run whenever a signed-out user tries to add to the cart.
func WithAuthRequiredHook(fn func()) Option {
	return func(s *Store) { s.onAuthRequired = fn }
}

func New(remote Remote, opts ...Option) (*Store, error) {
	if remote == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart remote required")
	}
	s := &Store{
		remote: remote,
		logg:   logger.Nop(),
		now:    time.Now,
		lines:  []Line{},
		subs:   map[int]func(Snapshot){},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

type ticket struct {
	op     string
	userID uuid.UUID
	epoch  uint64
	seq    uint64
}

// BindIdentity makes id the owner of the cart. A nil id empties the cart without any
// network call. A new user empties the cart and loads theirs; if that load fails the
// cart stays empty and the error is returned. Binding the already bound user is a no-op.
func (s *Store) BindIdentity(ctx context.Context, id *identity.Identity) error {
	load := s.rebind(id)
	if load == nil {
		return nil
	}
	return load(ctx)
}

// rebind switches the binding synchronously and returns the remote load still to run, if any.
func (s *Store) rebind(id *identity.Identity) func(context.Context) error {
	var t ticket
	changed := s.commit(func() bool {
		if id == nil {
			if !s.bound && len(s.lines) == 0 {
				return false
			}
			s.bound = false
			s.userID = uuid.Nil
			s.resetLocked()
			return true
		}
		if s.bound && s.userID == id.ID {
			return false
		}
		s.bound = true
		s.userID = id.ID
		s.resetLocked()
		t = s.issueLocked(opFetch)
		return true
	})
	if !changed || id == nil {
		return nil
	}
	return func(ctx context.Context) error {
		return s.load(ctx, t)
	}
}

func (s *Store) load(ctx context.Context, t ticket) error {
	ctx = s.logg.WithUserID(ctx, t.userID.String())
	started := s.now()
	remote, err := s.remote.FetchCart(ctx, t.userID)
	s.metrics.ObserveDuration(t.op, s.now().Sub(started))

	if err != nil {
		s.metrics.IncFailure(t.op)
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.load_failed")
		// lines were emptied at bind time, so the cart is already fail-safe empty
		return syncError(t.op, err)
	}
	return s.apply(ctx, t, remote)
}

// AddItem adds delta copies of a book (delta below one counts as one). The server merges
// repeats into the existing line; its full response replaces the local cart.
func (s *Store) AddItem(ctx context.Context, bookID uuid.UUID, delta int) error {
	if delta <= 0 {
		delta = 1
	}
	t, ok := s.issue(opAdd)
	if !ok {
		if s.onAuthRequired != nil {
			s.onAuthRequired()
		}
		return ErrAuthRequired
	}
	return s.mutate(ctx, t, func(ctx context.Context) ([]storefront.CartLine, error) {
		return s.remote.AddToCart(ctx, storefront.CartMutation{UserID: t.userID, BookID: bookID, Quantity: delta})
	})
}

// SetQuantity sends the absolute quantity for a line; zero or less removes it.
// Signed out, it does nothing.
func (s *Store) SetQuantity(ctx context.Context, bookID uuid.UUID, quantity int) error {
	t, ok := s.issue(opUpdate)
	if !ok {
		return nil
	}
	return s.mutate(ctx, t, func(ctx context.Context) ([]storefront.CartLine, error) {
		return s.remote.UpdateCart(ctx, storefront.CartMutation{UserID: t.userID, BookID: bookID, Quantity: quantity})
	})
}

func (s *Store) RemoveItem(ctx context.Context, bookID uuid.UUID) error {
	return s.SetQuantity(ctx, bookID, 0)
}

// ClearLocal empties the cart without touching the remote one and drops any
// response still in flight.
func (s *Store) ClearLocal() {
	s.commit(func() bool {
		s.resetLocked()
		return true
	})
}

func (s *Store) mutate(ctx context.Context, t ticket, call func(context.Context) ([]storefront.CartLine, error)) error {
	ctx = s.logg.WithUserID(ctx, t.userID.String())
	started := s.now()
	remote, err := call(ctx)
	s.metrics.ObserveDuration(t.op, s.now().Sub(started))
	if err != nil {
		s.metrics.IncFailure(t.op)
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"op": t.op, "error": err.Error()}), "cart.mutation_failed")
		return syncError(t.op, err)
	}
	return s.apply(ctx, t, remote)
}

// apply installs a response if its ticket is still the latest one issued in the current epoch.
func (s *Store) apply(ctx context.Context, t ticket, remote []storefront.CartLine) error {
	var reduceErr error
	stale := false
	s.commit(func() bool {
		if t.epoch != s.epoch || t.seq != s.seq {
			stale = true
			return false
		}
		next, err := Reduce(s.lines, remote)
		if err != nil {
			reduceErr = err
			return false
		}
		s.lines = next
		return true
	})

	switch {
	case stale:
		s.metrics.IncStale(t.op)
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{"op": t.op, "epoch": t.epoch, "seq": t.seq}), "cart.stale_response_discarded")
		return nil
	case reduceErr != nil:
		s.metrics.IncFailure(t.op)
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"op": t.op, "error": reduceErr.Error()}), "cart.malformed_response")
		return syncError(t.op, reduceErr)
	}
	return nil
}

func (s *Store) issue(op string) (ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.bound {
		return ticket{}, false
	}
	return s.issueLocked(op), true
}

func (s *Store) issueLocked(op string) ticket {
	s.seq++
	return ticket{op: op, userID: s.userID, epoch: s.epoch, seq: s.seq}
}

// resetLocked empties the cart and starts a new epoch.
func (s *Store) resetLocked() {
	s.epoch++
	s.seq = 0
	s.lines = []Line{}
}

// commit runs mutate under the state lock and, if it reports a change, hands the
// resulting snapshot to subscribers in transition order.
func (s *Store) commit(mutate func() bool) bool {
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	changed := mutate()
	snap := s.snapshotLocked()
	var subs []func(Snapshot)
	if changed {
		for _, key := range slices.Sorted(maps.Keys(s.subs)) {
			subs = append(subs, s.subs[key])
		}
	}
	s.mu.Unlock()

	if changed {
		s.metrics.SetLines(len(snap.Lines))
		for _, fn := range subs {
			fn(snap)
		}
	}
	return changed
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{UserID: s.userID, Bound: s.bound, Lines: cloneLines(s.lines)}
}

// Subscribe registers fn to receive a snapshot after every applied transition.
// fn runs synchronously and must not call mutating Store methods.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Lines returns a copy of the current lines in server order.
func (s *Store) Lines() []Line {
	return s.Snapshot().Lines
}

func (s *Store) LineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return LineCount(s.lines)
}

func (s *Store) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TotalQuantity(s.lines)
}

func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Subtotal(s.lines)
}

func (s *Store) Summary() pricing.Summary {
	return pricing.Summarize(s.Subtotal())
}

// UserID returns the bound user, if any.
func (s *Store) UserID() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.bound
}
