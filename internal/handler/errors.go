package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lumio_social/internal/httputil"
	"lumio_social/internal/model"
)

// writeActionError maps an action failure to the error envelope. Validation
// is 400, missing targets 404, session refusals 403, exhaustion 409.
func writeActionError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, model.ErrEmptyContent):
		httputil.WriteBadRequestWithCode(w, model.CodeEmptyContent, "Text or image is required")
	case errors.Is(err, model.ErrContentTooLong):
		httputil.WriteBadRequestWithCode(w, model.CodeContentTooLong, "Text is too long")
	case errors.Is(err, model.ErrProfileFieldTooLong):
		httputil.WriteBadRequestWithCode(w, model.CodeProfileFieldTooLong, err.Error())
	case errors.Is(err, model.ErrInvalidSocialHandle):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidSocialHandle, err.Error())

	case errors.Is(err, model.ErrPostNotFound):
		httputil.WriteNotFoundWithCode(w, model.CodePostNotFound, "Post not found")
	case errors.Is(err, model.ErrCommentNotFound):
		httputil.WriteNotFoundWithCode(w, model.CodeCommentNotFound, "Comment not found")
	case errors.Is(err, model.ErrParentNotFound):
		httputil.WriteNotFoundWithCode(w, model.CodeParentNotFound, "Parent comment not found")

	case errors.Is(err, model.ErrNoSession):
		httputil.WriteForbiddenWithCode(w, model.CodeNoSession, "No valid session for this account")
	case errors.Is(err, model.ErrSessionExpired):
		httputil.WriteForbiddenWithCode(w, model.CodeSessionExpired, "Session expired")
	case errors.Is(err, model.ErrActionNotPermitted):
		httputil.WriteForbiddenWithCode(w, model.CodeActionNotPermitted, "Action not allowed by session")
	case errors.Is(err, model.ErrKeyMismatch):
		httputil.WriteForbiddenWithCode(w, model.CodeKeyMismatch, "Sender not authorized for session")

	case errors.Is(err, model.ErrIDSpaceExhausted):
		httputil.WriteError(w, http.StatusConflict, model.CodeIDSpaceExhausted, "No identifiers left")

	default:
		log.Printf("[ERROR] %s handler: %v", op, err)
		httputil.WriteInternalError(w, "Failed to "+op)
	}
}

// parseIDParam reads a uint64 chi URL parameter.
func parseIDParam(r *http.Request, name string) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	return id, err == nil
}
