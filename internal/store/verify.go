package store

import (
	"fmt"

	"lumio_social/internal/model"
)

// Verify checks the store's cross-collection consistency and returns the
// first violation found. It is meant for tests and debug endpoints.
func (s *Store) Verify() error {
	// ids are unique, ascending and below the allocator
	for i, p := range s.posts {
		if s.postIndex[p.ID] != i {
			return fmt.Errorf("post %d: index mismatch", p.ID)
		}
		if i > 0 && p.ID <= s.posts[i-1].ID {
			return fmt.Errorf("post %d: ids not ascending", p.ID)
		}
	}
	for i, c := range s.comments {
		if s.commentIndex[c.ID] != i {
			return fmt.Errorf("comment %d: index mismatch", c.ID)
		}
		if i > 0 && c.ID <= s.comments[i-1].ID {
			return fmt.Errorf("comment %d: ids not ascending", c.ID)
		}
	}

	postVotes := make(map[uint64]uint32)
	for _, k := range sortedVoters(s.postVotes) {
		if !s.HasPost(k.id) {
			return fmt.Errorf("post vote by %s references missing post %d", k.voter, k.id)
		}
		postVotes[k.id]++
	}
	commentVotes := make(map[uint64]uint32)
	for _, k := range sortedVoters(s.commentVotes) {
		if !s.HasComment(k.id) {
			return fmt.Errorf("comment vote by %s references missing comment %d", k.voter, k.id)
		}
		commentVotes[k.id]++
	}

	topLevel := make(map[uint64]uint32)
	replies := make(map[uint64]uint32)
	for _, c := range s.comments {
		if !s.HasPost(c.PostID) {
			return fmt.Errorf("comment %d references missing post %d", c.ID, c.PostID)
		}
		if c.ParentID == nil {
			topLevel[c.PostID]++
			continue
		}
		if !s.HasComment(*c.ParentID) {
			return fmt.Errorf("comment %d references missing parent %d", c.ID, *c.ParentID)
		}
		replies[*c.ParentID]++
	}

	authored := make(map[model.ActorID]uint64)
	for _, p := range s.posts {
		if p.Upvotes != postVotes[p.ID] {
			return fmt.Errorf("post %d: upvotes %d, vote set has %d", p.ID, p.Upvotes, postVotes[p.ID])
		}
		if p.CommentCount != topLevel[p.ID] {
			return fmt.Errorf("post %d: comment_count %d, found %d top-level comments", p.ID, p.CommentCount, topLevel[p.ID])
		}
		authored[p.Author]++
	}
	for _, c := range s.comments {
		if c.Upvotes != commentVotes[c.ID] {
			return fmt.Errorf("comment %d: upvotes %d, vote set has %d", c.ID, c.Upvotes, commentVotes[c.ID])
		}
		if c.ReplyCount != replies[c.ID] {
			return fmt.Errorf("comment %d: reply_count %d, found %d replies", c.ID, c.ReplyCount, replies[c.ID])
		}
	}

	for wallet, n := range authored {
		p, ok := s.profiles[wallet]
		if !ok {
			return fmt.Errorf("author %s has no profile", wallet)
		}
		if p.TotalPosts != n {
			return fmt.Errorf("profile %s: total_posts %d, authored %d", wallet, p.TotalPosts, n)
		}
	}
	for wallet, p := range s.profiles {
		if p.Wallet != wallet {
			return fmt.Errorf("profile keyed by %s carries wallet %s", wallet, p.Wallet)
		}
		if authored[wallet] == 0 && p.TotalPosts != 0 {
			return fmt.Errorf("profile %s: total_posts %d, authored 0", wallet, p.TotalPosts)
		}
		if p.TotalVibesEarned != s.balances[wallet] {
			return fmt.Errorf("profile %s: total_vibes_earned %d, balance %d", wallet, p.TotalVibesEarned, s.balances[wallet])
		}
	}
	for wallet, bal := range s.balances {
		if _, ok := s.profiles[wallet]; !ok && bal != 0 {
			return fmt.Errorf("balance %d for %s without profile", bal, wallet)
		}
	}
	return nil
}
