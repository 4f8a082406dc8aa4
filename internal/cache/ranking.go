package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"lumio_social/internal/model"
)

const (
	// TopPostsKey ranks post ids by upvote count
	TopPostsKey = "ranking:posts"

	// TopCommentsKey ranks comment ids by upvote count
	TopCommentsKey = "ranking:comments"

	// TopWalletsKey ranks wallets by vibes earned
	TopWalletsKey = "ranking:vibes"

	// MaxLeaderboardSize bounds a single leaderboard read
	MaxLeaderboardSize = 100
)

// RankedPost is a leaderboard entry for posts or comments.
type RankedPost struct {
	ID      uint64 `json:"id"`
	Upvotes int64  `json:"upvotes"`
}

// RankedWallet is a vibes leaderboard entry.
type RankedWallet struct {
	Wallet model.ActorID `json:"wallet"`
	Vibes  int64         `json:"vibes"`
}

// RankingCache is a read model derived from the forum event stream. All
// writes are increments, so events may be applied in any order.
type RankingCache interface {
	// RecordPost adds the post with a zero score and credits the author's vibes.
	// Uses pipeline: ZADD NX + ZINCRBY
	RecordPost(ctx context.Context, postID uint64, author model.ActorID, vibes uint64) error

	// AdjustPost moves a post's score by delta (+1 or -1 per toggle).
	AdjustPost(ctx context.Context, postID uint64, delta int64) error

	// AdjustComment moves a comment's score by delta.
	AdjustComment(ctx context.Context, commentID uint64, delta int64) error

	// TopPosts returns up to limit posts, most upvoted first.
	TopPosts(ctx context.Context, limit int) ([]RankedPost, error)

	// TopComments returns up to limit comments, most upvoted first.
	TopComments(ctx context.Context, limit int) ([]RankedPost, error)

	// TopWallets returns up to limit wallets, most vibes first.
	TopWallets(ctx context.Context, limit int) ([]RankedWallet, error)
}

type redisRankingCache struct {
	client *redis.Client
}

// NewRankingCache creates a RankingCache backed by Redis sorted sets.
func NewRankingCache(client *redis.Client) RankingCache {
	return &redisRankingCache{client: client}
}

func idMember(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func (c *redisRankingCache) RecordPost(ctx context.Context, postID uint64, author model.ActorID, vibes uint64) error {
	pipe := c.client.Pipeline()
	pipe.ZAddNX(ctx, TopPostsKey, redis.Z{Score: 0, Member: idMember(postID)})
	pipe.ZIncrBy(ctx, TopWalletsKey, float64(vibes), author.String())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record post %d: %w", postID, err)
	}
	return nil
}

func (c *redisRankingCache) AdjustPost(ctx context.Context, postID uint64, delta int64) error {
	if err := c.client.ZIncrBy(ctx, TopPostsKey, float64(delta), idMember(postID)).Err(); err != nil {
		return fmt.Errorf("adjust post %d: %w", postID, err)
	}
	return nil
}

func (c *redisRankingCache) AdjustComment(ctx context.Context, commentID uint64, delta int64) error {
	if err := c.client.ZIncrBy(ctx, TopCommentsKey, float64(delta), idMember(commentID)).Err(); err != nil {
		return fmt.Errorf("adjust comment %d: %w", commentID, err)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > MaxLeaderboardSize {
		return MaxLeaderboardSize
	}
	return limit
}

func (c *redisRankingCache) topIDs(ctx context.Context, key string, limit int) ([]RankedPost, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, key, 0, int64(clampLimit(limit)-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", key, err)
	}

	ranked := make([]RankedPost, 0, len(results))
	for _, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			continue
		}
		ranked = append(ranked, RankedPost{ID: id, Upvotes: int64(z.Score)})
	}
	return ranked, nil
}

func (c *redisRankingCache) TopPosts(ctx context.Context, limit int) ([]RankedPost, error) {
	return c.topIDs(ctx, TopPostsKey, limit)
}

func (c *redisRankingCache) TopComments(ctx context.Context, limit int) ([]RankedPost, error) {
	return c.topIDs(ctx, TopCommentsKey, limit)
}

func (c *redisRankingCache) TopWallets(ctx context.Context, limit int) ([]RankedWallet, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, TopWalletsKey, 0, int64(clampLimit(limit)-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", TopWalletsKey, err)
	}

	ranked := make([]RankedWallet, 0, len(results))
	for _, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		wallet, err := model.ParseActorID(member)
		if err != nil {
			continue
		}
		ranked = append(ranked, RankedWallet{Wallet: wallet, Vibes: int64(z.Score)})
	}
	return ranked, nil
}
