package cartstore

import (
	"context"
	"sync"

	"github.com/angelmondragon/bookstore/internal/identity"
)

// Watch binds the store to provider: the current identity right away, then every
// change it announces. The binding switch happens inside the notification so
// transitions keep their order; the remote load runs in the background.
// Watching stops when ctx is done or stop is called.
func (s *Store) Watch(ctx context.Context, provider identity.Provider) (stop func()) {
	start := func(id *identity.Identity) {
		if load := s.rebind(id); load != nil {
			go func() { _ = load(ctx) }()
		}
	}

	unsubscribe := provider.Subscribe(func(_ context.Context, id *identity.Identity) error {
		if ctx.Err() != nil {
			return nil
		}
		start(id)
		return nil
	})
	start(provider.Current())

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		unsubscribe()
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
