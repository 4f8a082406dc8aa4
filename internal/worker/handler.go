package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"lumio_social/internal/cache"
	"lumio_social/internal/queue"
)

// Handler applies forum events to the ranking cache.
type Handler struct {
	ranking cache.RankingCache
}

// NewHandler creates a new event handler.
func NewHandler(ranking cache.RankingCache) *Handler {
	return &Handler{ranking: ranking}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.ForumEvent) error {
	startTime := time.Now()
	var err error

	switch event.Type {
	case queue.EventPostCreated:
		err = h.handlePostCreated(ctx, event)
	case queue.EventUpvoteToggled:
		err = h.ranking.AdjustPost(ctx, event.PostID, toggleDelta(event))
	case queue.EventCommentUpvoteToggled:
		err = h.ranking.AdjustComment(ctx, event.CommentID, toggleDelta(event))
	case queue.EventCommentCreated, queue.EventProfileUpdated:
		// nothing ranked
		log.Printf("[Worker] %s: actor=%s post=%d comment=%d", event.Type, event.Actor, event.PostID, event.CommentID)
		return nil
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}

	if err != nil {
		log.Printf("[Worker] HandleEvent FAILED: type=%s duration=%v err=%v",
			event.Type, time.Since(startTime), err)
		return err
	}

	log.Printf("[Worker] HandleEvent OK: type=%s duration=%v", event.Type, time.Since(startTime))
	return nil
}

// handlePostCreated registers the post on the leaderboard and credits its author.
func (h *Handler) handlePostCreated(ctx context.Context, event queue.ForumEvent) error {
	log.Printf("[Worker] PostCreated: post=%d author=%s vibes=%d", event.PostID, event.Actor, event.Vibes)

	if err := h.ranking.RecordPost(ctx, event.PostID, event.Actor, event.Vibes); err != nil {
		return fmt.Errorf("record post: %w", err)
	}
	return nil
}

// toggleDelta turns a toggle result into a score increment.
func toggleDelta(event queue.ForumEvent) int64 {
	if event.IsUpvoted {
		return 1
	}
	return -1
}
