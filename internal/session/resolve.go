// Package session resolves the acting identity of a mutating call.
package session

import (
	"context"
	"fmt"

	"lumio_social/internal/model"
)

// Lookup is the read-only view of the external session registry.
// found is false when the account has no session at all.
type Lookup interface {
	SessionFor(ctx context.Context, account model.ActorID) (s model.Session, found bool, err error)
}

// LookupFunc adapts a plain function to Lookup.
type LookupFunc func(ctx context.Context, account model.ActorID) (model.Session, bool, error)

func (f LookupFunc) SessionFor(ctx context.Context, account model.ActorID) (model.Session, bool, error) {
	return f(ctx, account)
}

// Resolve returns the identity on whose behalf action runs.
//
// Without a claimed account the caller acts for itself. Otherwise the claimed
// account's session must exist, be unexpired at now, permit action and be
// held by caller, checked in that order. A lookup failure is returned wrapped
// and is none of the session errors.
func Resolve(ctx context.Context, lookup Lookup, caller model.ActorID, claimed *model.ActorID, action model.Action, now uint64) (model.ActorID, error) {
	if claimed == nil {
		return caller, nil
	}
	if lookup == nil {
		return model.ActorID{}, model.ErrNoSession
	}

	s, found, err := lookup.SessionFor(ctx, *claimed)
	if err != nil {
		return model.ActorID{}, fmt.Errorf("lookup session: %w", err)
	}
	if !found {
		return model.ActorID{}, model.ErrNoSession
	}
	if s.Expires <= now {
		return model.ActorID{}, model.ErrSessionExpired
	}
	if !s.Allows(action) {
		return model.ActorID{}, model.ErrActionNotPermitted
	}
	if s.Key != caller {
		return model.ActorID{}, model.ErrKeyMismatch
	}
	return *claimed, nil
}
