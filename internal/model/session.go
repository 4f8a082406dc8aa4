package model

import (
	"errors"
	"slices"
)

// Session is a delegated signing session: Key may act on behalf of Account
// until Expires (block timestamp, milliseconds) for the listed actions.
// Sessions are issued elsewhere; this service only reads them.
type Session struct {
	Account        ActorID  `json:"account"`
	Key            ActorID  `json:"key"`
	Expires        uint64   `json:"expires"`
	AllowedActions []Action `json:"allowed_actions"`
}

// Allows reports whether the session grants the given action.
func (s Session) Allows(action Action) bool {
	return slices.Contains(s.AllowedActions, action)
}

// Session resolution errors
var (
	ErrNoSession          = errors.New("no valid session for this account")
	ErrSessionExpired     = errors.New("session expired")
	ErrActionNotPermitted = errors.New("action not allowed by session")
	ErrKeyMismatch        = errors.New("sender not authorized for session")
)

// Error codes for HTTP responses
const (
	CodeNoSession          = "NO_SESSION"
	CodeSessionExpired     = "SESSION_EXPIRED"
	CodeActionNotPermitted = "ACTION_NOT_PERMITTED"
	CodeKeyMismatch        = "KEY_MISMATCH"
)
