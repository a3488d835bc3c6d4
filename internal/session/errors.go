package session

import (
	"errors"
	"fmt"
)

// ErrPrimaryAccount is wrapped by Run when the server owner's account can't
// be reached. Nothing else can proceed without it.
var ErrPrimaryAccount = errors.New("primary account unavailable")

// TransportError means an account's catalog could not be read. That account
// is skipped and the others continue.
type TransportError struct {
	Account string
	Op      string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("account %q: %s: %v", e.Account, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// PlaylistError means a playlist could not be listed, deleted or created.
// Processing continues with the next section.
type PlaylistError struct {
	Account string
	Title   string
	Op      string
	Err     error
}

func (e *PlaylistError) Error() string {
	return fmt.Sprintf("account %q: %s playlist %q: %v", e.Account, e.Op, e.Title, e.Err)
}

func (e *PlaylistError) Unwrap() error { return e.Err }
