package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message is one stream entry. Err is set when the entry could not be decoded
// into a ForumEvent; such entries are still returned so they can be acked.
type Message struct {
	ID    string
	Event ForumEvent
	Err   error
}

// Consumer reads one stream as a member of one consumer group.
type Consumer interface {
	// EnsureGroup creates the group (and the stream) if missing.
	EnsureGroup(ctx context.Context) error

	// Fetch returns up to count never-delivered entries, blocking up to block.
	// A timeout yields no messages and no error.
	Fetch(ctx context.Context, consumer string, count int64, block time.Duration) ([]Message, error)

	// Redeliver returns entries already delivered to consumer but not acked.
	Redeliver(ctx context.Context, consumer string, count int64) ([]Message, error)

	Ack(ctx context.Context, ids ...string) error

	// Pending counts unacked entries across the group.
	Pending(ctx context.Context) (int64, error)
}

// GroupConsumer implements Consumer with XREADGROUP.
type GroupConsumer struct {
	client *redis.Client
	stream string
	group  string
}

func NewConsumer(client *redis.Client, stream, group string) *GroupConsumer {
	return &GroupConsumer{client: client, stream: stream, group: group}
}

// EnsureGroup starts new groups at "0" so an empty ranking cache is rebuilt
// from whatever the stream still holds.
func (c *GroupConsumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create group %s on %s: %w", c.group, c.stream, err)
	}
	if err == nil {
		log.Printf("[Consumer] Created group=%s stream=%s", c.group, c.stream)
	}
	return nil
}

func (c *GroupConsumer) Fetch(ctx context.Context, consumer string, count int64, block time.Duration) ([]Message, error) {
	return c.readGroup(ctx, consumer, ">", count, block)
}

func (c *GroupConsumer) Redeliver(ctx context.Context, consumer string, count int64) ([]Message, error) {
	// "0" reads this consumer's pending list instead of new entries; a
	// negative block omits BLOCK entirely
	return c.readGroup(ctx, consumer, "0", count, -1)
}

func (c *GroupConsumer) readGroup(ctx context.Context, consumer, start string, count int64, block time.Duration) ([]Message, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: consumer,
		Streams:  []string{c.stream, start},
		Count:    count,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup %s from %s: %w", c.stream, start, err)
	}

	var messages []Message
	for _, s := range streams {
		for _, entry := range s.Messages {
			event, err := ParseForumEvent(entry.Values)
			messages = append(messages, Message{ID: entry.ID, Event: event, Err: err})
		}
	}
	return messages, nil
}

func (c *GroupConsumer) Ack(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := c.client.XAck(ctx, c.stream, c.group, ids...).Err(); err != nil {
		return fmt.Errorf("xack %d ids: %w", len(ids), err)
	}
	return nil
}

func (c *GroupConsumer) Pending(ctx context.Context) (int64, error) {
	info, err := c.client.XPending(ctx, c.stream, c.group).Result()
	if err != nil {
		return 0, fmt.Errorf("xpending: %w", err)
	}
	return info.Count, nil
}
