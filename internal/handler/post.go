package handler

import (
	"log"
	"net/http"

	"lumio_social/internal/host"
	"lumio_social/internal/httputil"
	"lumio_social/internal/model"
	"lumio_social/internal/transport/http/middleware"
)

type PostHandler struct {
	runtime *host.Runtime
}

func NewPostHandler(runtime *host.Runtime) *PostHandler {
	return &PostHandler{
		runtime: runtime,
	}
}

// viewerFromRequest returns the optionally authenticated wallet.
func viewerFromRequest(r *http.Request) *model.ActorID {
	if wallet, ok := middleware.GetWalletFromContext(r.Context()); ok {
		return &wallet
	}
	return nil
}

// List handles GET /posts
// Anonymous callers get the snapshot export with its digest as ETag; signed-in
// callers additionally get is_upvoted per post.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	if viewer := viewerFromRequest(r); viewer != nil {
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"posts": h.runtime.AllPosts(viewer),
		})
		return
	}

	snapshot, err := h.runtime.Snapshot()
	if err != nil {
		log.Printf("[ERROR] List posts handler: %v", err)
		httputil.WriteInternalError(w, "Failed to list posts")
		return
	}

	etag := `"` + snapshot.Digest + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snapshot)
}

// Create handles POST /posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetWalletFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreatePostRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	res, err := h.runtime.CreatePost(r.Context(), caller, req)
	if err != nil {
		writeActionError(w, "create post", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, res)
}

// ToggleUpvote handles POST /posts/{id}/upvote
func (h *PostHandler) ToggleUpvote(w http.ResponseWriter, r *http.Request) {
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

	var req model.ToggleUpvoteRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	res, err := h.runtime.ToggleUpvote(r.Context(), caller, postID, req)
	if err != nil {
		writeActionError(w, "toggle upvote", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, res)
}
