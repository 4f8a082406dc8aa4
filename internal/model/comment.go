package model

import (
	"errors"
)

// Comment represents a comment on a post. ParentID is nil for top-level comments.
type Comment struct {
	ID         uint64  `json:"id"`
	PostID     uint64  `json:"post_id"`
	ParentID   *uint64 `json:"parent_id,omitempty"`
	Author     ActorID `json:"author"`
	Text       string  `json:"text"`
	Image      *string `json:"image,omitempty"`
	CreatedAt  uint64  `json:"created_at"`
	Upvotes    uint32  `json:"upvotes"`
	ReplyCount uint32  `json:"reply_count"`
}

// CommentView is a comment enriched for a particular viewer.
type CommentView struct {
	Comment
	IsUpvoted bool `json:"is_upvoted"`
}

// CreateCommentRequest is the payload of the CreateComment action.
type CreateCommentRequest struct {
	ParentID          *uint64  `json:"parent_id,omitempty" cbor:"parent_id,omitempty"`
	Text              string   `json:"text" cbor:"text"`
	Image             *string  `json:"image,omitempty" cbor:"image,omitempty"`
	SessionForAccount *ActorID `json:"session_for_account,omitempty" cbor:"session_for_account,omitempty"`
}

// CommentCreated is the result of CreateComment.
type CommentCreated struct {
	CommentID uint64 `json:"comment_id"`
}

// Comment constraints
const (
	DefaultMaxCommentLength = 500
)

// Comment errors
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrParentNotFound  = errors.New("parent comment not found")
)

// Error codes for HTTP responses
const (
	CodeCommentNotFound = "COMMENT_NOT_FOUND"
	CodeParentNotFound  = "PARENT_NOT_FOUND"
)
