package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"lumio_social/internal/httputil"
	"lumio_social/internal/model"
	"lumio_social/internal/service"
	"lumio_social/internal/transport/http/middleware"
)

// MediaHandler serves image uploads. mediaService is nil when object storage
// is not configured.
type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

func writeMediaError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, model.ErrFileTooLarge):
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "File is too large")
	case errors.Is(err, model.ErrInvalidImageType):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
	default:
		log.Printf("[ERROR] %s handler: %v", op, err)
		httputil.WriteInternalError(w, "Failed to "+op)
	}
}

// PresignImage returns a presigned PUT URL for a post or comment image
// POST /media/images/presign
func (h *MediaHandler) PresignImage(w http.ResponseWriter, r *http.Request) {
	if h.mediaService == nil {
		httputil.WriteServiceUnavailable(w, "Media storage is not configured")
		return
	}
	wallet, ok := middleware.GetWalletFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.PresignImageRequest
	if err := httputil.DecodeBody(r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	res, err := h.mediaService.PresignImageUpload(r.Context(), wallet, req)
	if err != nil {
		writeMediaError(w, "presign image", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, res)
}

// UploadAvatar stores a resized avatar. The returned URL goes into
// PUT /me/profile as the avatar field.
// POST /media/avatar
func (h *MediaHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if h.mediaService == nil {
		httputil.WriteServiceUnavailable(w, "Media storage is not configured")
		return
	}
	wallet, ok := middleware.GetWalletFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	maxFormSize := int64(model.MaxAvatarSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Avatar exceeds 5MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		httputil.WriteBadRequest(w, "Avatar file is required")
		return
	}
	defer file.Close()

	upload, err := h.mediaService.UploadAvatar(r.Context(), wallet, file, header)
	if err != nil {
		writeMediaError(w, "upload avatar", err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, upload)
}
