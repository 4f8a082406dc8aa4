package model

import (
	"fmt"
)

// Action is a mutating action kind. Sessions grant permission per kind.
type Action uint8

const (
	ActionCreatePost Action = iota + 1
	ActionToggleUpvote
	ActionCreateComment
	ActionToggleCommentUpvote
	ActionUpdateProfile
)

var actionNames = map[Action]string{
	ActionCreatePost:          "CreatePost",
	ActionToggleUpvote:        "ToggleUpvote",
	ActionCreateComment:       "CreateComment",
	ActionToggleCommentUpvote: "ToggleCommentUpvote",
	ActionUpdateProfile:       "UpdateProfile",
}

// AllActions lists every action kind in declaration order.
var AllActions = []Action{
	ActionCreatePost,
	ActionToggleUpvote,
	ActionCreateComment,
	ActionToggleCommentUpvote,
	ActionUpdateProfile,
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

// ParseAction resolves an action by its name, e.g. "ToggleUpvote".
func ParseAction(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", name)
}

func (a Action) MarshalText() ([]byte, error) {
	if _, ok := actionNames[a]; !ok {
		return nil, fmt.Errorf("unknown action %d", uint8(a))
	}
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Invocation is what the host supplies with every action: the authenticated
// caller and the block timestamp in milliseconds. Handlers never read a clock.
type Invocation struct {
	Caller ActorID
	Now    uint64
}
