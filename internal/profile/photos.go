package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/banjito/ampcalibration/internal/local"
	"github.com/banjito/ampcalibration/internal/provider"
	"github.com/banjito/ampcalibration/internal/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PhotoBucket is the storage bucket profile photos are kept in.
	PhotoBucket = "profile-photo"

	// MaxPhotoSize is the largest profile photo accepted, in bytes.
	MaxPhotoSize = 5 << 20

	photoMaxAge = time.Hour
)

var (
	// ErrPhotoTooLarge indicates a photo exceeds MaxPhotoSize.
	ErrPhotoTooLarge = errors.New("File size must be less than 5MB")

	// ErrNotImage indicates a photo is not an image.
	ErrNotImage = errors.New("File must be an image")
)

// Bucket is the storage a Photos keeps photos in.
type Bucket interface {
	Upload(ctx context.Context, path string, r io.Reader, opts provider.UploadOptions) error
	List(ctx context.Context, prefix string) ([]provider.FileObject, error)
	Remove(ctx context.Context, paths ...string) error
	PublicURL(path string) string
}

// File is an uploaded file.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// NewPhotos creates a new Photos instance. The extension of each user's photo
// is cached in storage to avoid listing bucket.
func NewPhotos(logger *zap.Logger, bucket Bucket, storage local.Storage) *Photos {
	return &Photos{
		logger:  logger,
		bucket:  bucket,
		storage: storage,
		now:     time.Now,
	}
}

// Photos manages profile photos. A user's photo is stored at the root of the
// bucket as "<user-id>.<ext>".
type Photos struct {
	logger  *zap.Logger
	bucket  Bucket
	storage local.Storage
	now     func() time.Time
}

// URL retrieves the URL of the user's photo. The second return value is false
// if the user has no photo.
func (p Photos) URL(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	ext, ok, err := p.storage.GetItem(ctx, extKey(userID))
	if err != nil {
		return "", false, fmt.Errorf("photo url; error: %w", err)
	}
	if ok && ext != "" {
		return p.url(photoPath(userID, ext)), true, nil
	}

	objects, err := p.bucket.List(ctx, "")
	if err != nil {
		return "", false, fmt.Errorf("photo url; error: %w", err)
	}
	for _, obj := range objects {
		if !isPhotoOf(userID, obj.Name) {
			continue
		}

		ext := strings.TrimPrefix(path.Ext(obj.Name), ".")
		if err := p.storage.SetItem(ctx, extKey(userID), ext); err != nil {
			p.logger.Warn("cache photo extension", zap.Error(err))
		}
		return p.url(obj.Name), true, nil
	}
	return "", false, nil
}

// Upload stores file as the user's photo, replacing any existing photo with
// the same extension, and returns its URL.
func (p Photos) Upload(ctx context.Context, userID uuid.UUID, file File) (string, error) {
	if file.Size > MaxPhotoSize {
		return "", ErrPhotoTooLarge
	}
	if !validator.IsImage(file.ContentType) {
		return "", ErrNotImage
	}

	ext := extension(file)
	name := photoPath(userID, ext)
	if err := p.bucket.Upload(ctx, name, io.LimitReader(file.Body, MaxPhotoSize+1), provider.UploadOptions{
		ContentType: file.ContentType,
		MaxAge:      photoMaxAge,
		Upsert:      true,
	}); err != nil {
		return "", fmt.Errorf("upload photo; error: %w", err)
	}

	if err := p.storage.SetItem(ctx, extKey(userID), ext); err != nil {
		p.logger.Warn("cache photo extension", zap.Error(err))
	}
	return p.url(name), nil
}

// Remove deletes every photo of the user.
func (p Photos) Remove(ctx context.Context, userID uuid.UUID) error {
	var paths []string
	seen := make(map[string]struct{})
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		paths = append(paths, name)
	}

	ext, ok, err := p.storage.GetItem(ctx, extKey(userID))
	if err != nil {
		return fmt.Errorf("remove photo; error: %w", err)
	}
	if ok && ext != "" {
		add(photoPath(userID, ext))
	}

	objects, listErr := p.bucket.List(ctx, "")
	if listErr != nil {
		p.logger.Warn("list photos", zap.Error(listErr))
	}
	for _, obj := range objects {
		if isPhotoOf(userID, obj.Name) {
			add(obj.Name)
		}
	}

	if len(paths) == 0 {
		// with no cached path a failed list leaves the photos unknown
		if listErr != nil {
			return fmt.Errorf("remove photo; error: %w", listErr)
		}
		return nil
	}
	if err := p.bucket.Remove(ctx, paths...); err != nil {
		return fmt.Errorf("remove photo; error: %w", err)
	}
	if err := p.storage.RemoveItem(ctx, extKey(userID)); err != nil {
		p.logger.Warn("forget photo extension", zap.Error(err))
	}
	return nil
}

// url is the public URL of name with a cache buster appended, so a replaced
// photo is not served stale.
func (p Photos) url(name string) string {
	return fmt.Sprintf("%s?t=%d", p.bucket.PublicURL(name), p.now().UnixMilli())
}

// --- helpers ---

func extKey(userID uuid.UUID) string {
	return fmt.Sprintf("profilePhotoExt_%s", userID)
}

func photoPath(userID uuid.UUID, ext string) string {
	return fmt.Sprintf("%s.%s", userID, ext)
}

func isPhotoOf(userID uuid.UUID, name string) bool {
	return strings.HasPrefix(name, userID.String()+".")
}

// extension is the extension of file's name, or the subtype of its content
// type if the name has none.
func extension(file File) string {
	if ext := strings.TrimPrefix(path.Ext(file.Name), "."); ext != "" {
		return strings.ToLower(ext)
	}
	subtype := file.ContentType[strings.Index(file.ContentType, "/")+1:]
	if i := strings.IndexAny(subtype, "+;"); i >= 0 {
		subtype = subtype[:i]
	}
	return strings.ToLower(strings.TrimSpace(subtype))
}
