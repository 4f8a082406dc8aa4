package handler

import (
	"log"
	"net/http"
	"strconv"

	"lumio_social/internal/cache"
	"lumio_social/internal/httputil"
)

const defaultLeaderboardLimit = 20

// LeaderboardHandler reads the ranking cache the workers maintain. Rankings
// trail the forum state by however far the workers are behind.
type LeaderboardHandler struct {
	ranking cache.RankingCache
}

func NewLeaderboardHandler(ranking cache.RankingCache) *LeaderboardHandler {
	return &LeaderboardHandler{ranking: ranking}
}

func parseLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return defaultLeaderboardLimit
	}
	return min(limit, cache.MaxLeaderboardSize)
}

// TopPosts handles GET /leaderboard/posts
func (h *LeaderboardHandler) TopPosts(w http.ResponseWriter, r *http.Request) {
	if h.ranking == nil {
		httputil.WriteServiceUnavailable(w, "Rankings are not available")
		return
	}

	posts, err := h.ranking.TopPosts(r.Context(), parseLimit(r))
	if err != nil {
		log.Printf("[ERROR] TopPosts handler: %v", err)
		httputil.WriteInternalError(w, "Failed to load rankings")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"posts": posts,
	})
}

// TopComments handles GET /leaderboard/comments
func (h *LeaderboardHandler) TopComments(w http.ResponseWriter, r *http.Request) {
	if h.ranking == nil {
		httputil.WriteServiceUnavailable(w, "Rankings are not available")
		return
	}

	comments, err := h.ranking.TopComments(r.Context(), parseLimit(r))
	if err != nil {
		log.Printf("[ERROR] TopComments handler: %v", err)
		httputil.WriteInternalError(w, "Failed to load rankings")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"comments": comments,
	})
}

// TopWallets handles GET /leaderboard/vibes
func (h *LeaderboardHandler) TopWallets(w http.ResponseWriter, r *http.Request) {
	if h.ranking == nil {
		httputil.WriteServiceUnavailable(w, "Rankings are not available")
		return
	}

	wallets, err := h.ranking.TopWallets(r.Context(), parseLimit(r))
	if err != nil {
		log.Printf("[ERROR] TopWallets handler: %v", err)
		httputil.WriteInternalError(w, "Failed to load rankings")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"wallets": wallets,
	})
}
