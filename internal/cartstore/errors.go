package cartstore

import (
	"errors"
	"fmt"

	pkgerrors "github.com/angelmondragon/bookstore/pkg/errors"
	"github.com/angelmondragon/bookstore/pkg/storefront"
)

var (
	// ErrAuthRequired is returned by mutations attempted while signed out.
	ErrAuthRequired = pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to use the cart")
	// ErrRemoteUnavailable covers transport failures and non-success responses.
	ErrRemoteUnavailable = pkgerrors.New(pkgerrors.CodeDependency, "cart service unavailable")
	// ErrMalformedResponse is a success response that is not a valid line sequence.
	// It is also an ErrRemoteUnavailable.
	ErrMalformedResponse = pkgerrors.Wrap(pkgerrors.CodeDependency, ErrRemoteUnavailable, "cart service returned a malformed cart")
)

// SyncError reports a failed remote cart call. errors.Is matches its kind
// (ErrRemoteUnavailable or ErrMalformedResponse) as well as the underlying cause.
type SyncError struct {
	Op   string
	Kind error
	Err  error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("cart %s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *SyncError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func syncError(op string, err error) error {
	kind := ErrRemoteUnavailable
	if errors.Is(err, ErrMalformedResponse) || storefront.IsMalformed(err) {
		kind = ErrMalformedResponse
	}
	return &SyncError{Op: op, Kind: kind, Err: err}
}
