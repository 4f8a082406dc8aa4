package handler

import (
	"net/http"

	"lumio_social/internal/host"
	"lumio_social/internal/httputil"
	"lumio_social/internal/model"
	"lumio_social/internal/transport/http/middleware"
)

type CommentHandler struct {
	runtime *host.Runtime
}

func NewCommentHandler(runtime *host.Runtime) *CommentHandler {
	return &CommentHandler{
		runtime: runtime,
	}
}

// Create handles POST /posts/{id}/comments
// A parent_id in the body makes the comment a reply.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetWalletFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	var req model.CreateCommentRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	res, err := h.runtime.CreateComment(r.Context(), caller, postID, req)
	if err != nil {
		writeActionError(w, "create comment", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, res)
}

// ListForPost handles GET /posts/{id}/comments
// Comments come in creation order; an unknown post has none.
func (h *CommentHandler) ListForPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return
	}

	comments := h.runtime.CommentsForPost(postID, viewerFromRequest(r))
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"comments": comments,
	})
}

// ListAll handles GET /comments
func (h *CommentHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"comments": h.runtime.AllComments(viewerFromRequest(r)),
	})
}

// ToggleUpvote handles POST /comments/{id}/upvote
func (h *CommentHandler) ToggleUpvote(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetWalletFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	commentID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid comment ID")
		return
	}

	var req model.ToggleUpvoteRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	res, err := h.runtime.ToggleCommentUpvote(r.Context(), caller, commentID, req)
	if err != nil {
		writeActionError(w, "toggle comment upvote", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, res)
}
