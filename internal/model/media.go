package model

import "errors"

const (
	MaxAvatarSizeBytes = 5 * 1024 * 1024 // 5MB
	MaxImageSizeBytes  = 10 * 1024 * 1024
	AvatarWidth        = 200
	AvatarHeight       = 200
	AvatarFolder       = "avatars"
	ImageFolder        = "images"
	AvatarExt          = ".jpg"
	AvatarCacheControl = "public, max-age=31536000" // 1 year
	PresignExpirySecs  = 900
)

// Supported image content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
)

var allowedImageTypes = map[string]string{
	ContentTypeJPEG: ".jpg",
	ContentTypePNG:  ".png",
	ContentTypeGIF:  ".gif",
	ContentTypeWebP: ".webp",
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
)

// Domain errors for media operations
var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
	ErrMediaDisabled    = errors.New("media storage not configured")
)

// UploadResult represents the uploaded object location.
// URL is what clients store as an image or avatar reference.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// PresignImageRequest requests a presigned URL for uploading a post or comment image.
type PresignImageRequest struct {
	ContentType string `json:"content_type" cbor:"content_type"`
	FileSize    int64  `json:"file_size" cbor:"file_size"` // Optional but recommended for validation
}

// PresignImageResponse returns upload details for direct-to-R2 uploads.
// Client uploads bytes to UploadURL, then passes PublicURL as the image reference.
type PresignImageResponse struct {
	UploadURL  string `json:"upload_url"`
	PublicURL  string `json:"public_url"`
	Key        string `json:"key"`
	ExpiresInS int    `json:"expires_in"`
}

// IsAllowedImageType reports if the provided content type is supported
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// ImageExt returns the object key extension for a supported content type.
func ImageExt(contentType string) string {
	return allowedImageTypes[contentType]
}
