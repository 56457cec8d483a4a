package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"

	"bookmarket/internal/config"
	"bookmarket/internal/models"
	"bookmarket/internal/storage"

	xdraw "golang.org/x/image/draw"
)

const (
	DefaultImageMaxUploadSizeMB = 10
	MasterMaxSize               = 2048
	JPEGQuality                 = 85
)

const unsupportedImageMessage = "Image file is not supported. Please upload a jpg, jpeg, or png file."

// ImageInput is an uploaded image as received from the client.
type ImageInput struct {
	Filename    string
	ContentType string
	Content     []byte
}

// PreparedImage is a checked image ready for grading and storage.
type PreparedImage struct {
	Filename    string
	ContentType string
	Ext         string
	Content     []byte
}

// ImageService checks uploaded images and writes them to object storage.
type ImageService struct {
	store              storage.ObjectStore
	maxUploadSizeBytes int64
}

func NewImageService(store storage.ObjectStore, cfg *config.Config) *ImageService {
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB
	if cfg != nil && cfg.ImageMaxUploadSizeMB > 0 {
		maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
	}
	return &ImageService{
		store:              store,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Prepare accepts JPEG and PNG content only and scales anything larger than
// MasterMaxSize down to fit.
func (s *ImageService) Prepare(in ImageInput) (*PreparedImage, error) {
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	contentType, ext, ok := supportedImageType(http.DetectContentType(in.Content))
	if !ok {
		return nil, models.NewUnsupportedMediaTypeError(unsupportedImageMessage)
	}

	decoded, _, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewUnsupportedMediaTypeError(unsupportedImageMessage)
	}

	out := &PreparedImage{Filename: in.Filename, ContentType: contentType, Ext: ext, Content: in.Content}
	if out.Filename == "" {
		out.Filename = "image." + ext
	}

	b := decoded.Bounds()
	if b.Dx() <= MasterMaxSize && b.Dy() <= MasterMaxSize {
		return out, nil
	}
	resized, err := encode(resizeToFit(decoded, MasterMaxSize, MasterMaxSize), ext)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	out.Content = resized
	return out, nil
}

// UploadListingImage replaces the stored image of a listing and returns its public URL.
func (s *ImageService) UploadListingImage(ctx context.Context, postID string, img *PreparedImage) (string, error) {
	if err := s.store.DeletePrefix(ctx, storage.PostImagePrefix(postID)); err != nil {
		return "", models.NewInternalError(err)
	}
	return s.put(ctx, storage.PostImageKey(postID, img.Ext), img)
}

// UploadAvatar replaces every stored avatar of a user and returns the new public URL.
func (s *ImageService) UploadAvatar(ctx context.Context, userID string, img *PreparedImage) (string, error) {
	if err := s.store.DeletePrefix(ctx, storage.UserImagePrefix(userID)); err != nil {
		return "", models.NewInternalError(err)
	}
	return s.put(ctx, storage.UserImageKey(userID, img.Ext), img)
}

// DeleteListingImage removes the stored image objects of a listing.
func (s *ImageService) DeleteListingImage(ctx context.Context, postID string) error {
	return s.store.DeletePrefix(ctx, storage.PostImagePrefix(postID))
}

func (s *ImageService) put(ctx context.Context, key string, img *PreparedImage) (string, error) {
	if err := s.store.Put(ctx, key, bytes.NewReader(img.Content), int64(len(img.Content)), img.ContentType); err != nil {
		return "", models.NewInternalError(err)
	}
	return s.store.PublicURL(key), nil
}

func supportedImageType(detected string) (contentType, ext string, ok bool) {
	switch detected {
	case "image/jpeg":
		return detected, "jpg", true
	case "image/png":
		return detected, "png", true
	default:
		return "", "", false
	}
}

func encode(img image.Image, ext string) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	var err error
	if ext == "png" {
		err = png.Encode(buf, img)
	} else {
		err = jpeg.Encode(buf, img, &jpeg.Options{Quality: JPEGQuality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxWidth && h <= maxHeight) {
		return src
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
