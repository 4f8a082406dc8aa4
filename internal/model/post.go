package model

import (
	"errors"
)

// Post is a top-level forum entry. CreatedAt is the host's block timestamp in milliseconds.
type Post struct {
	ID           uint64  `json:"id" cbor:"1,keyasint"`
	Author       ActorID `json:"author" cbor:"2,keyasint"`
	Text         string  `json:"text" cbor:"3,keyasint"`
	Image        *string `json:"image,omitempty" cbor:"4,keyasint,omitempty"`
	CreatedAt    uint64  `json:"created_at" cbor:"5,keyasint"`
	Upvotes      uint32  `json:"upvotes" cbor:"6,keyasint"`
	CommentCount uint32  `json:"comment_count" cbor:"7,keyasint"`
}

// PostView is a post enriched for a particular viewer.
type PostView struct {
	Post
	IsUpvoted bool `json:"is_upvoted"`
}

// CreatePostRequest is the payload of the CreatePost action.
type CreatePostRequest struct {
	Text              string   `json:"text" cbor:"text"`
	Image             *string  `json:"image,omitempty" cbor:"image,omitempty"`
	SessionForAccount *ActorID `json:"session_for_account,omitempty" cbor:"session_for_account,omitempty"`
}

// ToggleUpvoteRequest is the payload of the ToggleUpvote and ToggleCommentUpvote actions.
type ToggleUpvoteRequest struct {
	SessionForAccount *ActorID `json:"session_for_account,omitempty" cbor:"session_for_account,omitempty"`
}

// PostCreated is the result of CreatePost.
type PostCreated struct {
	PostID      uint64 `json:"post_id"`
	VibesEarned uint64 `json:"vibes_earned"`
}

// UpvoteToggled is the result of both toggle actions.
type UpvoteToggled struct {
	ID        uint64 `json:"id"`
	Upvotes   uint32 `json:"upvotes"`
	IsUpvoted bool   `json:"is_upvoted"`
}

// Snapshot is the read-only export of all posts, newest first.
type Snapshot struct {
	Posts  []Post `json:"posts"`
	Digest string `json:"digest"`
}

// Post constants
const (
	DefaultMaxPostLength = 280
)

// Post errors
var (
	ErrPostNotFound     = errors.New("post not found")
	ErrEmptyContent     = errors.New("content is empty")
	ErrContentTooLong   = errors.New("content too long")
	ErrIDSpaceExhausted = errors.New("id space exhausted")
)

// Error codes for HTTP responses
const (
	CodeEmptyContent     = "EMPTY_CONTENT"
	CodeContentTooLong   = "CONTENT_TOO_LONG"
	CodePostNotFound     = "POST_NOT_FOUND"
	CodeIDSpaceExhausted = "ID_SPACE_EXHAUSTED"
)
