package worker_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"lumio_social/internal/cache"
	"lumio_social/internal/model"
	"lumio_social/internal/queue"
	"lumio_social/internal/worker"
)

// =============================================================================
// Mock Implementations
// =============================================================================

// MockConsumer hands out a fixed batch once, then reports an empty stream.
type MockConsumer struct {
	mu      sync.Mutex
	pending []queue.Message
	batch   []queue.Message
	acked   []string
	groupFn func(ctx context.Context) error
}

func (m *MockConsumer) EnsureGroup(ctx context.Context) error {
	if m.groupFn != nil {
		return m.groupFn(ctx)
	}
	return nil
}

func (m *MockConsumer) Fetch(ctx context.Context, consumer string, count int64, block time.Duration) ([]queue.Message, error) {
	m.mu.Lock()
	batch := m.batch
	m.batch = nil
	m.mu.Unlock()

	if len(batch) == 0 {
		select {
		case <-ctx.Done():
		case <-time.After(10 * time.Millisecond):
		}
		return nil, nil
	}
	return batch, nil
}

func (m *MockConsumer) Redeliver(ctx context.Context, consumer string, count int64) ([]queue.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch := m.pending
	m.pending = nil
	return batch, nil
}

func (m *MockConsumer) Ack(ctx context.Context, ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, ids...)
	return nil
}

func (m *MockConsumer) Pending(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *MockConsumer) Acked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acked...)
}

// MockRankingCache records calls instead of touching Redis.
type MockRankingCache struct {
	mu          sync.Mutex
	postDeltas  map[uint64]int64
	recordErr   error
	recordCalls int
}

func NewMockRankingCache() *MockRankingCache {
	return &MockRankingCache{postDeltas: make(map[uint64]int64)}
}

func (m *MockRankingCache) RecordPost(ctx context.Context, postID uint64, author model.ActorID, vibes uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordCalls++
	return m.recordErr
}

func (m *MockRankingCache) AdjustPost(ctx context.Context, postID uint64, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postDeltas[postID] += delta
	return nil
}

func (m *MockRankingCache) AdjustComment(ctx context.Context, commentID uint64, delta int64) error {
	return nil
}

func (m *MockRankingCache) TopPosts(ctx context.Context, limit int) ([]cache.RankedPost, error) {
	return nil, nil
}

func (m *MockRankingCache) TopComments(ctx context.Context, limit int) ([]cache.RankedPost, error) {
	return nil, nil
}

func (m *MockRankingCache) TopWallets(ctx context.Context, limit int) ([]cache.RankedWallet, error) {
	return nil, nil
}

// =============================================================================
// Test Helpers
// =============================================================================

func setupTestRedis(t *testing.T) *redis.Client {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}

	// Use DB 1 for testing to avoid conflicts with dev data
	opts.DB = 1

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available, skipping test: %v", err)
	}

	client.FlushDB(ctx)
	return client
}

func cleanupTestRedis(client *redis.Client) {
	ctx := context.Background()
	client.FlushDB(ctx)
	client.Close()
}

func wallet(b byte) model.ActorID {
	var id model.ActorID
	id[0] = b
	return id
}

// =============================================================================
// Unit Tests
// =============================================================================

func TestHandler_UnknownEvent(t *testing.T) {
	h := worker.NewHandler(NewMockRankingCache())

	err := h.HandleEvent(context.Background(), queue.ForumEvent{Type: "post_deleted"})
	if err == nil {
		t.Fatal("expected error for unknown event type")
	}
}

func TestHandler_ToggleDeltas(t *testing.T) {
	ranking := NewMockRankingCache()
	h := worker.NewHandler(ranking)
	ctx := context.Background()

	on := queue.NewUpvoteToggledEvent(1, wallet(1), model.UpvoteToggled{ID: 7, Upvotes: 1, IsUpvoted: true})
	off := queue.NewUpvoteToggledEvent(2, wallet(1), model.UpvoteToggled{ID: 7, Upvotes: 0, IsUpvoted: false})

	// out of order delivery must still net out
	for _, e := range []queue.ForumEvent{off, on, on} {
		if err := h.HandleEvent(ctx, e); err != nil {
			t.Fatalf("HandleEvent: %v", err)
		}
	}
	if ranking.postDeltas[7] != 1 {
		t.Errorf("net delta = %d, want 1", ranking.postDeltas[7])
	}
}

func TestHandler_PostCreatedError(t *testing.T) {
	ranking := NewMockRankingCache()
	ranking.recordErr = errors.New("redis down")
	h := worker.NewHandler(ranking)

	err := h.HandleEvent(context.Background(), queue.NewPostCreatedEvent(1, wallet(1), model.PostCreated{PostID: 0, VibesEarned: 5}))
	if !errors.Is(err, ranking.recordErr) {
		t.Fatalf("expected wrapped cache error, got %v", err)
	}
}

func waitForAcks(consumer *MockConsumer, n int) {
	deadline := time.Now().Add(2 * time.Second)
	for len(consumer.Acked()) < n && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
}

func TestManager_AcksEveryMessage(t *testing.T) {
	// ARRANGE
	ranking := NewMockRankingCache()
	ranking.recordErr = errors.New("fails but still acked")
	consumer := &MockConsumer{batch: []queue.Message{
		{ID: "1-0", Event: queue.NewPostCreatedEvent(1, wallet(1), model.PostCreated{PostID: 0, VibesEarned: 1})},
		{ID: "2-0", Err: errors.New("missing 'data' field")},
		{ID: "3-0", Event: queue.NewUpvoteToggledEvent(2, wallet(2), model.UpvoteToggled{ID: 0, Upvotes: 1, IsUpvoted: true})},
	}}
	m := worker.NewManager(consumer, worker.NewHandler(ranking), worker.ManagerConfig{WorkerCount: 1, BlockTimeout: 10 * time.Millisecond})

	// ACT
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitForAcks(consumer, 3)
	m.Stop()

	// ASSERT
	if got := consumer.Acked(); len(got) != 3 {
		t.Errorf("acked = %v, want all three entries", got)
	}
	if ranking.postDeltas[0] != 1 {
		t.Errorf("post 0 delta = %d, want 1", ranking.postDeltas[0])
	}
}

func TestManager_ReplaysPendingFirst(t *testing.T) {
	ranking := NewMockRankingCache()
	consumer := &MockConsumer{
		pending: []queue.Message{{ID: "1-0", Event: queue.NewUpvoteToggledEvent(1, wallet(1), model.UpvoteToggled{ID: 5, IsUpvoted: true})}},
		batch:   []queue.Message{{ID: "2-0", Event: queue.NewUpvoteToggledEvent(2, wallet(2), model.UpvoteToggled{ID: 5, IsUpvoted: true})}},
	}
	m := worker.NewManager(consumer, worker.NewHandler(ranking), worker.ManagerConfig{WorkerCount: 1, BlockTimeout: 10 * time.Millisecond})

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitForAcks(consumer, 2)
	m.Stop()

	got := consumer.Acked()
	if len(got) != 2 || got[0] != "1-0" || got[1] != "2-0" {
		t.Errorf("acked = %v, want pending entry before new one", got)
	}
	if ranking.postDeltas[5] != 2 {
		t.Errorf("post 5 delta = %d, want 2", ranking.postDeltas[5])
	}
}

func TestManager_StartFailsWithoutGroup(t *testing.T) {
	groupErr := errors.New("no stream")
	consumer := &MockConsumer{groupFn: func(ctx context.Context) error { return groupErr }}
	m := worker.NewManager(consumer, worker.NewHandler(NewMockRankingCache()), worker.DefaultManagerConfig())

	if err := m.Start(context.Background()); !errors.Is(err, groupErr) {
		t.Fatalf("expected group error, got %v", err)
	}
}

// =============================================================================
// Integration Tests
// =============================================================================

// TestRankingFromEvents drives the handler against a real Redis and reads
// the leaderboards back.
func TestRankingFromEvents(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()
	ranking := cache.NewRankingCache(client)
	h := worker.NewHandler(ranking)

	alice, bob := wallet(0xa1), wallet(0xb2)
	events := []queue.ForumEvent{
		queue.NewPostCreatedEvent(1000, alice, model.PostCreated{PostID: 0, VibesEarned: 10}),
		queue.NewPostCreatedEvent(1001, bob, model.PostCreated{PostID: 1, VibesEarned: 40}),
		queue.NewPostCreatedEvent(1002, alice, model.PostCreated{PostID: 2, VibesEarned: 35}),
		queue.NewUpvoteToggledEvent(1003, bob, model.UpvoteToggled{ID: 2, Upvotes: 1, IsUpvoted: true}),
		queue.NewUpvoteToggledEvent(1004, alice, model.UpvoteToggled{ID: 2, Upvotes: 2, IsUpvoted: true}),
		queue.NewUpvoteToggledEvent(1005, alice, model.UpvoteToggled{ID: 1, Upvotes: 1, IsUpvoted: true}),
		queue.NewUpvoteToggledEvent(1006, alice, model.UpvoteToggled{ID: 1, Upvotes: 0, IsUpvoted: false}),
		queue.NewCommentUpvoteToggledEvent(1007, bob, model.UpvoteToggled{ID: 0, Upvotes: 1, IsUpvoted: true}),
		queue.NewProfileUpdatedEvent(1008, alice),
	}
	for _, e := range events {
		if err := h.HandleEvent(ctx, e); err != nil {
			t.Fatalf("HandleEvent(%s): %v", e.Type, err)
		}
	}

	posts, err := ranking.TopPosts(ctx, 10)
	if err != nil {
		t.Fatalf("TopPosts: %v", err)
	}
	if len(posts) != 3 || posts[0].ID != 2 || posts[0].Upvotes != 2 {
		t.Errorf("top posts = %+v, want post 2 first with 2 upvotes", posts)
	}

	wallets, err := ranking.TopWallets(ctx, 10)
	if err != nil {
		t.Fatalf("TopWallets: %v", err)
	}
	if len(wallets) != 2 || wallets[0].Wallet != alice || wallets[0].Vibes != 45 {
		t.Errorf("top wallets = %+v, want alice first with 45", wallets)
	}

	comments, _ := ranking.TopComments(ctx, 1)
	if len(comments) != 1 || comments[0].Upvotes != 1 {
		t.Errorf("top comments = %+v", comments)
	}
}

// TestStreamRoundTrip publishes through Redis Streams and consumes with a group.
func TestStreamRoundTrip(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()
	publisher := queue.NewPublisher(client, 1000)
	consumer := queue.NewConsumer(client, queue.StreamForum, queue.ConsumerGroupRanking)

	if err := consumer.EnsureGroup(ctx); err != nil {
		t.Fatalf("EnsureGroup: %v", err)
	}
	// second call hits BUSYGROUP
	if err := consumer.EnsureGroup(ctx); err != nil {
		t.Fatalf("EnsureGroup again: %v", err)
	}

	parent := uint64(3)
	sent := queue.NewCommentCreatedEvent(2000, wallet(9), 1, &parent, model.CommentCreated{CommentID: 4})
	if _, err := publisher.Publish(ctx, queue.StreamForum, sent); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msgs, err := consumer.Fetch(ctx, "worker-test", 10, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Err != nil {
		t.Fatalf("read %+v, want one decodable message", msgs)
	}
	got := msgs[0].Event
	if got.Type != queue.EventCommentCreated || got.Actor != wallet(9) || got.CommentID != 4 || got.ParentID == nil || *got.ParentID != 3 {
		t.Errorf("event = %+v", got)
	}

	pending, _ := consumer.Pending(ctx)
	if pending != 1 {
		t.Errorf("pending = %d, want 1 before ack", pending)
	}
	redelivered, err := consumer.Redeliver(ctx, "worker-test", 10)
	if err != nil || len(redelivered) != 1 || redelivered[0].ID != msgs[0].ID {
		t.Fatalf("Redeliver = %+v, %v; want the unacked entry", redelivered, err)
	}
	if err := consumer.Ack(ctx, msgs[0].ID); err != nil {
		t.Fatalf("Ack: %v", err)
	}
	pending, _ = consumer.Pending(ctx)
	if pending != 0 {
		t.Errorf("pending = %d, want 0 after ack", pending)
	}
}

// TestStreamUndecodableEntry checks that a foreign entry on the stream is
// surfaced with Err instead of being skipped and left pending.
func TestStreamUndecodableEntry(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	ctx := context.Background()
	consumer := queue.NewConsumer(client, queue.StreamForum, queue.ConsumerGroupRanking)
	if err := consumer.EnsureGroup(ctx); err != nil {
		t.Fatalf("EnsureGroup: %v", err)
	}
	client.XAdd(ctx, &redis.XAddArgs{Stream: queue.StreamForum, Values: map[string]interface{}{"type": "legacy"}})

	msgs, err := consumer.Fetch(ctx, "worker-test", 10, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Err == nil {
		t.Fatalf("msgs = %+v, want one entry carrying a decode error", msgs)
	}
}
