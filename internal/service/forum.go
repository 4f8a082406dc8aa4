package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"lumio_social/internal/model"
	"lumio_social/internal/reward"
	"lumio_social/internal/session"
	"lumio_social/internal/store"
)

// Limits bounds user-supplied text. Lengths are in bytes.
type Limits struct {
	MaxPostLength         int
	MaxCommentLength      int
	MaxUsernameLength     int
	MaxSocialHandleLength int
	MaxDescriptionLength  int
}

// DefaultLimits returns the forum's standard content limits.
func DefaultLimits() Limits {
	return Limits{
		MaxPostLength:         model.DefaultMaxPostLength,
		MaxCommentLength:      model.DefaultMaxCommentLength,
		MaxUsernameLength:     model.DefaultMaxUsernameLength,
		MaxSocialHandleLength: model.DefaultMaxSocialHandleLength,
		MaxDescriptionLength:  model.DefaultMaxDescriptionLength,
	}
}

// ForumService runs the forum's actions and queries against a store.
//
// Every action validates content, then checks that the targets exist, then
// resolves the acting identity, and only then mutates. A returned error means
// the store was not touched. ForumService is not safe for concurrent use.
type ForumService struct {
	store    *store.Store
	sessions session.Lookup
	limits   Limits
	reward   reward.Func
}

func NewForumService(st *store.Store, sessions session.Lookup, limits Limits, rewardFn reward.Func) *ForumService {
	if rewardFn == nil {
		rewardFn = reward.FromTimestamp
	}
	return &ForumService{
		store:    st,
		sessions: sessions,
		limits:   limits,
		reward:   rewardFn,
	}
}

// validateContent trims text and checks it against max.
// Text may be empty when an image is attached.
func validateContent(text string, image *string, max int) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" && image == nil {
		return "", model.ErrEmptyContent
	}
	if len(trimmed) > max {
		return "", model.ErrContentTooLong
	}
	return trimmed, nil
}

func (s *ForumService) resolve(ctx context.Context, inv model.Invocation, claimed *model.ActorID, action model.Action) (model.ActorID, error) {
	actor, err := session.Resolve(ctx, s.sessions, inv.Caller, claimed, action, inv.Now)
	if err != nil {
		return model.ActorID{}, fmt.Errorf("resolve %s: %w", action, err)
	}
	return actor, nil
}

// =============================================================================
// Actions
// =============================================================================

// CreatePost publishes a post and credits the author with a vibes reward.
func (s *ForumService) CreatePost(ctx context.Context, inv model.Invocation, req model.CreatePostRequest) (model.PostCreated, error) {
	text, err := validateContent(req.Text, req.Image, s.limits.MaxPostLength)
	if err != nil {
		return model.PostCreated{}, err
	}

	author, err := s.resolve(ctx, inv, req.SessionForAccount, model.ActionCreatePost)
	if err != nil {
		return model.PostCreated{}, err
	}

	if _, err := s.store.NextPostID(); err != nil {
		return model.PostCreated{}, err
	}

	vibes := s.reward(inv.Now)
	s.store.CreditPost(author, vibes, inv.Now)

	post, err := s.store.InsertPost(author, text, req.Image, inv.Now)
	if err != nil {
		// unreachable: allocation was checked above
		return model.PostCreated{}, fmt.Errorf("insert post: %w", err)
	}

	return model.PostCreated{PostID: post.ID, VibesEarned: vibes}, nil
}

// ToggleUpvote adds the acting identity's upvote to the post, or removes it.
func (s *ForumService) ToggleUpvote(ctx context.Context, inv model.Invocation, postID uint64, req model.ToggleUpvoteRequest) (model.UpvoteToggled, error) {
	if !s.store.HasPost(postID) {
		return model.UpvoteToggled{}, model.ErrPostNotFound
	}

	voter, err := s.resolve(ctx, inv, req.SessionForAccount, model.ActionToggleUpvote)
	if err != nil {
		return model.UpvoteToggled{}, err
	}

	upvotes, isUpvoted, err := s.store.TogglePostVote(postID, voter)
	if err != nil {
		return model.UpvoteToggled{}, err
	}
	return model.UpvoteToggled{ID: postID, Upvotes: upvotes, IsUpvoted: isUpvoted}, nil
}

// CreateComment adds a top-level comment, or a reply when ParentID is set.
// Comments earn no vibes.
func (s *ForumService) CreateComment(ctx context.Context, inv model.Invocation, postID uint64, req model.CreateCommentRequest) (model.CommentCreated, error) {
	text, err := validateContent(req.Text, req.Image, s.limits.MaxCommentLength)
	if err != nil {
		return model.CommentCreated{}, err
	}

	if !s.store.HasPost(postID) {
		return model.CommentCreated{}, model.ErrPostNotFound
	}
	if req.ParentID != nil && !s.store.HasComment(*req.ParentID) {
		return model.CommentCreated{}, model.ErrParentNotFound
	}

	author, err := s.resolve(ctx, inv, req.SessionForAccount, model.ActionCreateComment)
	if err != nil {
		return model.CommentCreated{}, err
	}

	comment, err := s.store.InsertComment(postID, req.ParentID, author, text, req.Image, inv.Now)
	if err != nil {
		return model.CommentCreated{}, err
	}
	return model.CommentCreated{CommentID: comment.ID}, nil
}

// ToggleCommentUpvote is ToggleUpvote for comments.
func (s *ForumService) ToggleCommentUpvote(ctx context.Context, inv model.Invocation, commentID uint64, req model.ToggleUpvoteRequest) (model.UpvoteToggled, error) {
	if !s.store.HasComment(commentID) {
		return model.UpvoteToggled{}, model.ErrCommentNotFound
	}

	voter, err := s.resolve(ctx, inv, req.SessionForAccount, model.ActionToggleCommentUpvote)
	if err != nil {
		return model.UpvoteToggled{}, err
	}

	upvotes, isUpvoted, err := s.store.ToggleCommentVote(commentID, voter)
	if err != nil {
		return model.UpvoteToggled{}, err
	}
	return model.UpvoteToggled{ID: commentID, Upvotes: upvotes, IsUpvoted: isUpvoted}, nil
}

// UpdateProfile overwrites the provided profile fields, creating the profile
// if needed. Omitted fields keep their value.
func (s *ForumService) UpdateProfile(ctx context.Context, inv model.Invocation, req model.UpdateProfileRequest) (model.Profile, error) {
	if err := s.validateProfile(req); err != nil {
		return model.Profile{}, err
	}

	wallet, err := s.resolve(ctx, inv, req.SessionForAccount, model.ActionUpdateProfile)
	if err != nil {
		return model.Profile{}, err
	}

	p := s.store.UpsertProfile(wallet, inv.Now)
	if req.Username != nil {
		p.Username = lo.ToPtr(*req.Username)
	}
	if req.SocialHandle != nil {
		p.SocialHandle = lo.ToPtr(*req.SocialHandle)
	}
	if req.Description != nil {
		p.Description = lo.ToPtr(*req.Description)
	}
	if req.Avatar != nil {
		p.Avatar = lo.ToPtr(*req.Avatar)
	}

	updated, _ := s.store.Profile(wallet)
	return updated, nil
}

func (s *ForumService) validateProfile(req model.UpdateProfileRequest) error {
	if req.Username != nil && len(*req.Username) > s.limits.MaxUsernameLength {
		return fmt.Errorf("username: %w", model.ErrProfileFieldTooLong)
	}
	if req.SocialHandle != nil {
		if len(*req.SocialHandle) > s.limits.MaxSocialHandleLength {
			return fmt.Errorf("social_handle: %w", model.ErrProfileFieldTooLong)
		}
		if !isHandle(*req.SocialHandle) {
			return model.ErrInvalidSocialHandle
		}
	}
	if req.Description != nil && len(*req.Description) > s.limits.MaxDescriptionLength {
		return fmt.Errorf("description: %w", model.ErrProfileFieldTooLong)
	}
	return nil
}

// isHandle reports whether h consists only of ASCII letters, digits and underscores.
func isHandle(h string) bool {
	for _, r := range h {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}

// =============================================================================
// Queries
// =============================================================================

// AllPosts returns every post, newest first. When viewer is set each view
// carries the viewer's vote state.
func (s *ForumService) AllPosts(viewer *model.ActorID) []model.PostView {
	return lo.Map(s.store.Posts(), func(p model.Post, _ int) model.PostView {
		return model.PostView{Post: p, IsUpvoted: viewer != nil && s.store.HasPostVote(p.ID, *viewer)}
	})
}

// Posts returns every post, newest first.
func (s *ForumService) Posts() []model.Post {
	return s.store.Posts()
}

// CommentsForPost returns the post's comments in insertion order. An unknown
// post has no comments.
func (s *ForumService) CommentsForPost(postID uint64, viewer *model.ActorID) []model.CommentView {
	return s.commentViews(s.store.CommentsForPost(postID), viewer)
}

// AllComments returns every comment in insertion order.
func (s *ForumService) AllComments(viewer *model.ActorID) []model.CommentView {
	return s.commentViews(s.store.Comments(), viewer)
}

func (s *ForumService) commentViews(comments []model.Comment, viewer *model.ActorID) []model.CommentView {
	return lo.Map(comments, func(c model.Comment, _ int) model.CommentView {
		return model.CommentView{Comment: c, IsUpvoted: viewer != nil && s.store.HasCommentVote(c.ID, *viewer)}
	})
}

// Profile returns the wallet's profile or ErrProfileNotFound.
func (s *ForumService) Profile(wallet model.ActorID) (model.Profile, error) {
	p, ok := s.store.Profile(wallet)
	if !ok {
		return model.Profile{}, model.ErrProfileNotFound
	}
	return p, nil
}

// Balance returns the wallet's vibes; wallets that never earned have 0.
func (s *ForumService) Balance(wallet model.ActorID) model.BalanceResponse {
	return model.BalanceResponse{Wallet: wallet, Vibes: s.store.Balance(wallet)}
}

func (s *ForumService) HasUpvoted(postID uint64, wallet model.ActorID) bool {
	return s.store.HasPostVote(postID, wallet)
}

func (s *ForumService) HasUpvotedComment(commentID uint64, wallet model.ActorID) bool {
	return s.store.HasCommentVote(commentID, wallet)
}

// Verify reports the first consistency violation in the underlying store.
func (s *ForumService) Verify() error {
	return s.store.Verify()
}
