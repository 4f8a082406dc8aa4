package queue

import (
	"encoding/json"
	"fmt"

	"lumio_social/internal/model"
)

// Event types for the forum stream
const (
	EventPostCreated          = "post_created"
	EventUpvoteToggled        = "upvote_toggled"
	EventCommentCreated       = "comment_created"
	EventCommentUpvoteToggled = "comment_upvote_toggled"
	EventProfileUpdated       = "profile_updated"
)

// Stream names
const (
	StreamForum = "stream:forum"
)

// Consumer group name for ranking workers
const (
	ConsumerGroupRanking = "ranking_workers"
)

// ForumEvent is published after every successful action. Timestamp is the
// action's block time in milliseconds, not the publish time.
type ForumEvent struct {
	Type      string        `json:"type"`
	Timestamp uint64        `json:"timestamp"`
	Actor     model.ActorID `json:"actor"`

	PostID    uint64  `json:"post_id,omitempty"`
	CommentID uint64  `json:"comment_id,omitempty"`
	ParentID  *uint64 `json:"parent_id,omitempty"`

	// Upvotes is the new count after a toggle
	Upvotes   uint32 `json:"upvotes,omitempty"`
	IsUpvoted bool   `json:"is_upvoted,omitempty"`

	// Vibes is the reward credited by a new post
	Vibes uint64 `json:"vibes,omitempty"`
}

func NewPostCreatedEvent(now uint64, author model.ActorID, res model.PostCreated) ForumEvent {
	return ForumEvent{
		Type:      EventPostCreated,
		Timestamp: now,
		Actor:     author,
		PostID:    res.PostID,
		Vibes:     res.VibesEarned,
	}
}

func NewUpvoteToggledEvent(now uint64, voter model.ActorID, res model.UpvoteToggled) ForumEvent {
	return ForumEvent{
		Type:      EventUpvoteToggled,
		Timestamp: now,
		Actor:     voter,
		PostID:    res.ID,
		Upvotes:   res.Upvotes,
		IsUpvoted: res.IsUpvoted,
	}
}

func NewCommentCreatedEvent(now uint64, author model.ActorID, postID uint64, parentID *uint64, res model.CommentCreated) ForumEvent {
	return ForumEvent{
		Type:      EventCommentCreated,
		Timestamp: now,
		Actor:     author,
		PostID:    postID,
		CommentID: res.CommentID,
		ParentID:  parentID,
	}
}

func NewCommentUpvoteToggledEvent(now uint64, voter model.ActorID, res model.UpvoteToggled) ForumEvent {
	return ForumEvent{
		Type:      EventCommentUpvoteToggled,
		Timestamp: now,
		Actor:     voter,
		CommentID: res.ID,
		Upvotes:   res.Upvotes,
		IsUpvoted: res.IsUpvoted,
	}
}

func NewProfileUpdatedEvent(now uint64, wallet model.ActorID) ForumEvent {
	return ForumEvent{
		Type:      EventProfileUpdated,
		Timestamp: now,
		Actor:     wallet,
	}
}

// ToMap converts the event to XADD field-value pairs. The full event is
// JSON in the "data" field; "type" is duplicated for XRANGE inspection.
func (e ForumEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseForumEvent parses a ForumEvent from Redis stream message values.
func ParseForumEvent(values map[string]interface{}) (ForumEvent, error) {
	data, ok := values["data"].(string)
	if !ok {
		return ForumEvent{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event ForumEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ForumEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
