// Package host dispatches forum actions one at a time, stamps each with the
// block time and relays outcomes to the event stream.
package host

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"lumio_social/internal/model"
	"lumio_social/internal/queue"
	"lumio_social/internal/service"
)

// snapshotEncMode is Core Deterministic CBOR, so equal post lists always
// hash to the same digest.
var snapshotEncMode cbor.EncMode

func init() {
	opts := cbor.CoreDetEncOptions()
	opts.TextMarshaler = cbor.TextMarshalerTextString
	var err error
	snapshotEncMode, err = opts.EncMode()
	if err != nil {
		panic("host: CBOR encoder initialization failed: " + err.Error())
	}
}

// publishTimeout bounds the best-effort event publish after an action.
const publishTimeout = 2 * time.Second

// Runtime serializes every call into the forum service. Each action gets a
// single timestamp from the clock; the service never reads time itself.
type Runtime struct {
	mu        sync.Mutex
	forum     *service.ForumService
	clock     Clock
	publisher queue.Publisher
}

func NewRuntime(forum *service.ForumService, clock Clock, publisher queue.Publisher) *Runtime {
	if clock == nil {
		clock = &SystemClock{}
	}
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	return &Runtime{
		forum:     forum,
		clock:     clock,
		publisher: publisher,
	}
}

// actingAs is the identity a successful action ran as: the claimed account
// when a session was used, the caller otherwise.
func actingAs(caller model.ActorID, claimed *model.ActorID) model.ActorID {
	if claimed != nil {
		return *claimed
	}
	return caller
}

// apply runs fn under the lock with a fresh invocation and records metrics.
func (r *Runtime) apply(action model.Action, caller model.ActorID, fn func(inv model.Invocation) error) (model.Invocation, error) {
	start := time.Now()

	r.mu.Lock()
	inv := model.Invocation{Caller: caller, Now: r.clock.NowMillis()}
	err := fn(inv)
	r.mu.Unlock()

	actionsTotal.WithLabelValues(action.String(), outcomeLabel(err)).Inc()
	actionLatency.WithLabelValues(action.String()).Observe(time.Since(start).Seconds())
	return inv, err
}

// publish sends the event without holding the lock. Failures are logged and
// counted; the action has already been applied.
func (r *Runtime) publish(ctx context.Context, event queue.ForumEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if _, err := r.publisher.Publish(ctx, queue.StreamForum, event); err != nil {
		publishFailures.Inc()
		log.Printf("[Runtime] Failed to publish %s event: actor=%s err=%v", event.Type, event.Actor, err)
	}
}

// =============================================================================
// Actions
// =============================================================================

func (r *Runtime) CreatePost(ctx context.Context, caller model.ActorID, req model.CreatePostRequest) (model.PostCreated, error) {
	var res model.PostCreated
	inv, err := r.apply(model.ActionCreatePost, caller, func(inv model.Invocation) error {
		var err error
		res, err = r.forum.CreatePost(ctx, inv, req)
		return err
	})
	if err != nil {
		return model.PostCreated{}, err
	}

	r.publish(ctx, queue.NewPostCreatedEvent(inv.Now, actingAs(caller, req.SessionForAccount), res))
	return res, nil
}

func (r *Runtime) ToggleUpvote(ctx context.Context, caller model.ActorID, postID uint64, req model.ToggleUpvoteRequest) (model.UpvoteToggled, error) {
	var res model.UpvoteToggled
	inv, err := r.apply(model.ActionToggleUpvote, caller, func(inv model.Invocation) error {
		var err error
		res, err = r.forum.ToggleUpvote(ctx, inv, postID, req)
		return err
	})
	if err != nil {
		return model.UpvoteToggled{}, err
	}

	r.publish(ctx, queue.NewUpvoteToggledEvent(inv.Now, actingAs(caller, req.SessionForAccount), res))
	return res, nil
}

func (r *Runtime) CreateComment(ctx context.Context, caller model.ActorID, postID uint64, req model.CreateCommentRequest) (model.CommentCreated, error) {
	var res model.CommentCreated
	inv, err := r.apply(model.ActionCreateComment, caller, func(inv model.Invocation) error {
		var err error
		res, err = r.forum.CreateComment(ctx, inv, postID, req)
		return err
	})
	if err != nil {
		return model.CommentCreated{}, err
	}

	r.publish(ctx, queue.NewCommentCreatedEvent(inv.Now, actingAs(caller, req.SessionForAccount), postID, req.ParentID, res))
	return res, nil
}

func (r *Runtime) ToggleCommentUpvote(ctx context.Context, caller model.ActorID, commentID uint64, req model.ToggleUpvoteRequest) (model.UpvoteToggled, error) {
	var res model.UpvoteToggled
	inv, err := r.apply(model.ActionToggleCommentUpvote, caller, func(inv model.Invocation) error {
		var err error
		res, err = r.forum.ToggleCommentUpvote(ctx, inv, commentID, req)
		return err
	})
	if err != nil {
		return model.UpvoteToggled{}, err
	}

	r.publish(ctx, queue.NewCommentUpvoteToggledEvent(inv.Now, actingAs(caller, req.SessionForAccount), res))
	return res, nil
}

func (r *Runtime) UpdateProfile(ctx context.Context, caller model.ActorID, req model.UpdateProfileRequest) (model.Profile, error) {
	var res model.Profile
	inv, err := r.apply(model.ActionUpdateProfile, caller, func(inv model.Invocation) error {
		var err error
		res, err = r.forum.UpdateProfile(ctx, inv, req)
		return err
	})
	if err != nil {
		return model.Profile{}, err
	}

	r.publish(ctx, queue.NewProfileUpdatedEvent(inv.Now, res.Wallet))
	return res, nil
}

// =============================================================================
// Queries
// =============================================================================

func (r *Runtime) AllPosts(viewer *model.ActorID) []model.PostView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forum.AllPosts(viewer)
}

func (r *Runtime) CommentsForPost(postID uint64, viewer *model.ActorID) []model.CommentView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forum.CommentsForPost(postID, viewer)
}

func (r *Runtime) AllComments(viewer *model.ActorID) []model.CommentView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forum.AllComments(viewer)
}

func (r *Runtime) Profile(wallet model.ActorID) (model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forum.Profile(wallet)
}

func (r *Runtime) Balance(wallet model.ActorID) model.BalanceResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forum.Balance(wallet)
}

// Snapshot exports every post, newest first, with a digest clients can use
// as an ETag.
func (r *Runtime) Snapshot() (model.Snapshot, error) {
	r.mu.Lock()
	posts := r.forum.Posts()
	r.mu.Unlock()

	digest, err := SnapshotDigest(posts)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{Posts: posts, Digest: digest}, nil
}

// Verify checks store consistency under the lock.
func (r *Runtime) Verify() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.forum.Verify()
}

// SnapshotDigest is the hex blake2b-256 of the deterministic CBOR encoding of posts.
func SnapshotDigest(posts []model.Post) (string, error) {
	if posts == nil {
		posts = []model.Post{}
	}
	data, err := snapshotEncMode.Marshal(posts)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
