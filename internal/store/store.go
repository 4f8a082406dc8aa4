// Package store owns the forum's canonical entity collections.
//
// The store is not safe for concurrent use. The host serializes every call,
// so each mutation runs to completion before the next begins.
package store

import (
	"math"
	"slices"

	"github.com/samber/lo"

	"lumio_social/internal/model"
)

// voteKey is one (item, voter) membership entry.
type voteKey struct {
	id    uint64
	voter model.ActorID
}

// Store holds posts, comments, profiles, vibes balances and the two vote sets.
type Store struct {
	nextPostID    uint64
	nextCommentID uint64

	posts        []model.Post
	postIndex    map[uint64]int
	comments     []model.Comment
	commentIndex map[uint64]int

	profiles map[model.ActorID]*model.Profile
	balances map[model.ActorID]uint64

	postVotes    map[voteKey]struct{}
	commentVotes map[voteKey]struct{}
}

// New returns an empty store whose first post and comment ids are 0.
func New() *Store {
	return &Store{
		postIndex:    make(map[uint64]int),
		commentIndex: make(map[uint64]int),
		profiles:     make(map[model.ActorID]*model.Profile),
		balances:     make(map[model.ActorID]uint64),
		postVotes:    make(map[voteKey]struct{}),
		commentVotes: make(map[voteKey]struct{}),
	}
}

// =============================================================================
// Identifier allocation
// =============================================================================

// NextPostID reports the id the next post will receive without consuming it.
// It fails once the counter has saturated and the maximum id is already taken.
func (s *Store) NextPostID() (uint64, error) {
	if _, taken := s.postIndex[s.nextPostID]; taken {
		return 0, model.ErrIDSpaceExhausted
	}
	return s.nextPostID, nil
}

// NextCommentID is NextPostID for comments.
func (s *Store) NextCommentID() (uint64, error) {
	if _, taken := s.commentIndex[s.nextCommentID]; taken {
		return 0, model.ErrIDSpaceExhausted
	}
	return s.nextCommentID, nil
}

func saturatingInc64(v uint64) uint64 {
	if v == math.MaxUint64 {
		return v
	}
	return v + 1
}

func saturatingInc32(v uint32) uint32 {
	if v == math.MaxUint32 {
		return v
	}
	return v + 1
}

func floorDec32(v uint32) uint32 {
	if v == 0 {
		return 0
	}
	return v - 1
}

// =============================================================================
// Posts
// =============================================================================

// InsertPost appends a post with zeroed counters and returns it.
func (s *Store) InsertPost(author model.ActorID, text string, image *string, now uint64) (model.Post, error) {
	id, err := s.NextPostID()
	if err != nil {
		return model.Post{}, err
	}

	post := model.Post{
		ID:        id,
		Author:    author,
		Text:      text,
		Image:     cloneString(image),
		CreatedAt: now,
	}
	s.postIndex[id] = len(s.posts)
	s.posts = append(s.posts, post)
	s.nextPostID = saturatingInc64(id)
	return post, nil
}

// HasPost reports whether a post with the given id exists.
func (s *Store) HasPost(id uint64) bool {
	_, ok := s.postIndex[id]
	return ok
}

// Post returns a copy of the post with the given id.
func (s *Store) Post(id uint64) (model.Post, bool) {
	i, ok := s.postIndex[id]
	if !ok {
		return model.Post{}, false
	}
	return clonePost(s.posts[i]), true
}

// Posts returns all posts, most recently created first.
func (s *Store) Posts() []model.Post {
	out := lo.Map(s.posts, func(p model.Post, _ int) model.Post { return clonePost(p) })
	return lo.Reverse(out)
}

// TogglePostVote flips voter's membership in the post's vote set and adjusts
// the counter to match. It returns the new count and whether voter now upvotes.
func (s *Store) TogglePostVote(postID uint64, voter model.ActorID) (uint32, bool, error) {
	i, ok := s.postIndex[postID]
	if !ok {
		return 0, false, model.ErrPostNotFound
	}
	post := &s.posts[i]
	key := voteKey{id: postID, voter: voter}

	if _, voted := s.postVotes[key]; voted {
		delete(s.postVotes, key)
		post.Upvotes = floorDec32(post.Upvotes)
		return post.Upvotes, false, nil
	}

	s.postVotes[key] = struct{}{}
	post.Upvotes = saturatingInc32(post.Upvotes)
	return post.Upvotes, true, nil
}

// HasPostVote reports whether voter currently upvotes the post.
func (s *Store) HasPostVote(postID uint64, voter model.ActorID) bool {
	_, ok := s.postVotes[voteKey{id: postID, voter: voter}]
	return ok
}

// =============================================================================
// Comments
// =============================================================================

// InsertComment appends a comment and bumps the counter of whatever it hangs
// off: the parent's reply count, or the post's comment count when top-level.
// Nothing is mutated when the post or parent does not exist.
func (s *Store) InsertComment(postID uint64, parentID *uint64, author model.ActorID, text string, image *string, now uint64) (model.Comment, error) {
	pi, ok := s.postIndex[postID]
	if !ok {
		return model.Comment{}, model.ErrPostNotFound
	}
	parentIdx := -1
	if parentID != nil {
		ci, ok := s.commentIndex[*parentID]
		if !ok {
			return model.Comment{}, model.ErrParentNotFound
		}
		parentIdx = ci
	}
	id, err := s.NextCommentID()
	if err != nil {
		return model.Comment{}, err
	}

	if parentIdx >= 0 {
		s.comments[parentIdx].ReplyCount = saturatingInc32(s.comments[parentIdx].ReplyCount)
	} else {
		s.posts[pi].CommentCount = saturatingInc32(s.posts[pi].CommentCount)
	}

	comment := model.Comment{
		ID:        id,
		PostID:    postID,
		ParentID:  cloneID(parentID),
		Author:    author,
		Text:      text,
		Image:     cloneString(image),
		CreatedAt: now,
	}
	s.commentIndex[id] = len(s.comments)
	s.comments = append(s.comments, comment)
	s.nextCommentID = saturatingInc64(id)
	return cloneComment(comment), nil
}

// HasComment reports whether a comment with the given id exists.
func (s *Store) HasComment(id uint64) bool {
	_, ok := s.commentIndex[id]
	return ok
}

// Comment returns a copy of the comment with the given id.
func (s *Store) Comment(id uint64) (model.Comment, bool) {
	i, ok := s.commentIndex[id]
	if !ok {
		return model.Comment{}, false
	}
	return cloneComment(s.comments[i]), true
}

// Comments returns every comment in insertion order.
func (s *Store) Comments() []model.Comment {
	return lo.Map(s.comments, func(c model.Comment, _ int) model.Comment { return cloneComment(c) })
}

// CommentsForPost returns the post's comments, replies included, in insertion order.
func (s *Store) CommentsForPost(postID uint64) []model.Comment {
	matched := lo.Filter(s.comments, func(c model.Comment, _ int) bool { return c.PostID == postID })
	return lo.Map(matched, func(c model.Comment, _ int) model.Comment { return cloneComment(c) })
}

// ToggleCommentVote is TogglePostVote over the comment vote set.
func (s *Store) ToggleCommentVote(commentID uint64, voter model.ActorID) (uint32, bool, error) {
	i, ok := s.commentIndex[commentID]
	if !ok {
		return 0, false, model.ErrCommentNotFound
	}
	comment := &s.comments[i]
	key := voteKey{id: commentID, voter: voter}

	if _, voted := s.commentVotes[key]; voted {
		delete(s.commentVotes, key)
		comment.Upvotes = floorDec32(comment.Upvotes)
		return comment.Upvotes, false, nil
	}

	s.commentVotes[key] = struct{}{}
	comment.Upvotes = saturatingInc32(comment.Upvotes)
	return comment.Upvotes, true, nil
}

// HasCommentVote reports whether voter currently upvotes the comment.
func (s *Store) HasCommentVote(commentID uint64, voter model.ActorID) bool {
	_, ok := s.commentVotes[voteKey{id: commentID, voter: voter}]
	return ok
}

// =============================================================================
// Profiles and balances
// =============================================================================

// UpsertProfile returns the wallet's profile, creating an empty one stamped
// with now on first touch. The returned pointer aliases store state.
func (s *Store) UpsertProfile(wallet model.ActorID, now uint64) *model.Profile {
	if p, ok := s.profiles[wallet]; ok {
		return p
	}
	p := &model.Profile{Wallet: wallet, CreatedAt: now}
	s.profiles[wallet] = p
	return p
}

// CreditPost records a new post by wallet: the profile's post and vibes
// totals and the vibes balance all move together.
func (s *Store) CreditPost(wallet model.ActorID, vibes uint64, now uint64) {
	p := s.UpsertProfile(wallet, now)
	p.TotalPosts = saturatingInc64(p.TotalPosts)
	p.TotalVibesEarned = saturatingAdd64(p.TotalVibesEarned, vibes)
	s.balances[wallet] = saturatingAdd64(s.balances[wallet], vibes)
}

// Profile returns a copy of the wallet's profile.
func (s *Store) Profile(wallet model.ActorID) (model.Profile, bool) {
	p, ok := s.profiles[wallet]
	if !ok {
		return model.Profile{}, false
	}
	return cloneProfile(*p), true
}

// Balance returns the wallet's vibes, 0 if it has never earned any.
func (s *Store) Balance(wallet model.ActorID) uint64 {
	return s.balances[wallet]
}

func saturatingAdd64(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// =============================================================================
// Copy helpers
// =============================================================================

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneID(id *uint64) *uint64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func clonePost(p model.Post) model.Post {
	p.Image = cloneString(p.Image)
	return p
}

func cloneComment(c model.Comment) model.Comment {
	c.ParentID = cloneID(c.ParentID)
	c.Image = cloneString(c.Image)
	return c
}

func cloneProfile(p model.Profile) model.Profile {
	p.Username = cloneString(p.Username)
	p.SocialHandle = cloneString(p.SocialHandle)
	p.Description = cloneString(p.Description)
	p.Avatar = cloneString(p.Avatar)
	return p
}

// sortedVoters is used by Verify to produce stable error messages.
func sortedVoters(m map[voteKey]struct{}) []voteKey {
	keys := lo.Keys(m)
	slices.SortFunc(keys, func(a, b voteKey) int {
		if a.id != b.id {
			if a.id < b.id {
				return -1
			}
			return 1
		}
		return slices.Compare(a.voter[:], b.voter[:])
	})
	return keys
}
