package identity

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	pkgerrors "github.com/angelmondragon/bookstore/pkg/errors"
	"github.com/angelmondragon/bookstore/pkg/logger"
	"github.com/angelmondragon/bookstore/pkg/storefront"
	"go.uber.org/multierr"
)

// Authenticator is the slice of the storefront client the session needs.
type Authenticator interface {
	Login(ctx context.Context, creds storefront.Credentials) (storefront.Profile, error)
	Register(ctx context.Context, reg storefront.Registration) (storefront.Profile, error)
}

// Session is the Provider used by the storefront client.
type Session struct {
	auth  Authenticator
	store Store
	logg  *logger.Logger

	// transition serializes state changes together with their notifications.
	transition sync.Mutex

	mu        sync.RWMutex
	current   *Identity
	listeners map[int]Listener
	nextID    int
}

var _ Provider = (*Session)(nil)

func NewSession(auth Authenticator, store Store, logg *logger.Logger) (*Session, error) {
	if auth == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "authenticator required")
	}
	if store == nil {
		store = NewMemoryStore()
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Session{
		auth:      auth,
		store:     store,
		logg:      logg,
		listeners: map[int]Listener{},
	}, nil
}

func (s *Session) Current() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

func (s *Session) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// SignIn checks the credentials remotely and makes the returned profile current.
func (s *Session) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	profile, err := s.auth.Login(ctx, storefront.Credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	id := FromProfile(profile)
	if err := s.store.Save(ctx, id); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "identity.persist_failed")
	}
	s.set(ctx, id)
	return id, nil
}

// Register creates an account. It does not sign the new user in.
func (s *Session) Register(ctx context.Context, reg storefront.Registration) (*Identity, error) {
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	if reg.Email == "" || reg.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}
	profile, err := s.auth.Register(ctx, reg)
	if err != nil {
		return nil, err
	}
	return FromProfile(profile), nil
}

// SignOut forgets the current identity locally and in the store.
func (s *Session) SignOut(ctx context.Context) error {
	err := s.store.Clear(ctx)
	s.set(ctx, nil)
	return err
}

// Restore loads a previously persisted identity, if any, and makes it current.
func (s *Session) Restore(ctx context.Context) (*Identity, error) {
	id, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if id != nil {
		s.set(ctx, id)
	}
	return id, nil
}

func (s *Session) set(ctx context.Context, id *Identity) {
	s.transition.Lock()
	defer s.transition.Unlock()

	s.mu.Lock()
	if Same(s.current, id) {
		s.current = id
		s.mu.Unlock()
		return
	}
	s.current = id
	listeners := make([]Listener, 0, len(s.listeners))
	for _, key := range slices.Sorted(maps.Keys(s.listeners)) {
		listeners = append(listeners, s.listeners[key])
	}
	s.mu.Unlock()

	var errs error
	for _, fn := range listeners {
		errs = multierr.Append(errs, fn(ctx, id))
	}
	if errs != nil {
		s.logg.Warn(s.logg.WithField(ctx, "errors", multierr.Errors(errs)), "identity.listener_failed")
	}
}
