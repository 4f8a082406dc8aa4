package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	domain "lumio_social/internal/model"
)

// ObjectStore is the bucket the media service writes to.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType, cacheControl string) error
	PresignPut(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (string, error)
	URL(key string) string
}

// MediaService hands out upload targets for post and comment images and
// stores avatars. Objects are keyed under the uploading wallet; the public
// URLs it returns are what clients pass as image or avatar references.
type MediaService struct {
	store ObjectStore
}

func NewMediaService(store ObjectStore) *MediaService {
	return &MediaService{store: store}
}

func objectKey(folder string, wallet domain.ActorID, ext string) string {
	return folder + "/" + wallet.String() + "/" + uuid.NewString() + ext
}

// PresignImageUpload returns a short-lived PUT URL for an image. The upload
// goes straight to the bucket.
func (s *MediaService) PresignImageUpload(ctx context.Context, wallet domain.ActorID, req domain.PresignImageRequest) (*domain.PresignImageResponse, error) {
	if !domain.IsAllowedImageType(req.ContentType) {
		return nil, domain.ErrInvalidImageType
	}
	if req.FileSize < 0 || req.FileSize > domain.MaxImageSizeBytes {
		return nil, domain.ErrFileTooLarge
	}

	key := objectKey(domain.ImageFolder, wallet, domain.ImageExt(req.ContentType))
	url, err := s.store.PresignPut(ctx, key, req.ContentType, req.FileSize, domain.PresignExpirySecs*time.Second)
	if err != nil {
		return nil, err
	}

	return &domain.PresignImageResponse{
		UploadURL:  url,
		PublicURL:  s.store.URL(key),
		Key:        key,
		ExpiresInS: domain.PresignExpirySecs,
	}, nil
}

// UploadAvatar crops the upload to a square JPEG and stores it.
func (s *MediaService) UploadAvatar(ctx context.Context, wallet domain.ActorID, file multipart.File, header *multipart.FileHeader) (*domain.UploadResult, error) {
	data, err := readImage(file, header.Size, domain.MaxAvatarSizeBytes)
	if err != nil {
		return nil, err
	}

	jpegBytes, err := resizeToJPEG(data, domain.AvatarWidth, domain.AvatarHeight, 85)
	if err != nil {
		return nil, err
	}

	key := objectKey(domain.AvatarFolder, wallet, domain.AvatarExt)
	if err := s.store.Put(ctx, key, jpegBytes, domain.ContentTypeJPEG, domain.AvatarCacheControl); err != nil {
		return nil, fmt.Errorf("store avatar: %w", err)
	}
	return &domain.UploadResult{URL: s.store.URL(key), Key: key}, nil
}

// readImage reads at most maxSize bytes and checks the content is a supported
// image. The type is sniffed from the bytes; the client's header is ignored.
func readImage(file io.Reader, declaredSize, maxSize int64) ([]byte, error) {
	if declaredSize > maxSize {
		return nil, domain.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, domain.ErrFileTooLarge
	}
	if !domain.IsAllowedImageType(http.DetectContentType(data)) {
		return nil, domain.ErrInvalidImageType
	}
	return data, nil
}

// resizeToJPEG center-crops to width x height and encodes as JPEG.
func resizeToJPEG(data []byte, width, height, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	var buf bytes.Buffer
	thumb := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
