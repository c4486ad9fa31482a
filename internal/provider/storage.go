package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Storage is the provider's object storage, accessed with the browser's
// credentials.
type Storage struct {
	browser Browser
}

func (b Browser) Storage() Storage {
	return Storage{browser: b}
}

// From selects a bucket.
func (s Storage) From(bucket string) Bucket {
	return Bucket{browser: s.browser, name: bucket}
}

type Bucket struct {
	browser Browser
	name    string
}

// UploadOptions configures an upload.
type UploadOptions struct {
	ContentType string

	// MaxAge is the cache lifetime public readers are told to apply.
	MaxAge time.Duration

	// Upsert overwrites an existing object at the same path.
	Upsert bool
}

// FileObject is an entry of a bucket listing.
type FileObject struct {
	Name      string                 `json:"name"`
	ID        string                 `json:"id"`
	UpdatedAt string                 `json:"updated_at"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// Upload stores the contents of r at path.
func (b Bucket) Upload(ctx context.Context, path string, r io.Reader, opts UploadOptions) error {
	bearer, err := b.browser.bearer(ctx)
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("x-upsert", strconv.FormatBool(opts.Upsert))
	if opts.ContentType != "" {
		header.Set("Content-Type", opts.ContentType)
	} else {
		header.Set("Content-Type", "application/octet-stream")
	}
	if opts.MaxAge > 0 {
		header.Set("Cache-Control", fmt.Sprintf("max-age=%d", int(opts.MaxAge.Seconds())))
	}

	if err := b.browser.client.do(ctx, request{
		method: http.MethodPost,
		path:   fmt.Sprintf("/storage/v1/object/%s/%s", url.PathEscape(b.name), escapePath(path)),
		header: header,
		bearer: bearer,
		body:   r,
	}, nil); err != nil {
		return fmt.Errorf("upload; bucket: %s, path: %s, error: %w", b.name, path, err)
	}
	return nil
}

// listLimit is the page size the dashboard lists buckets with. Folders
// holding more objects are not paged through.
const listLimit = 100

// List lists the objects directly under prefix, sorted by name. An empty
// prefix lists the bucket root.
func (b Bucket) List(ctx context.Context, prefix string) ([]FileObject, error) {
	bearer, err := b.browser.bearer(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"prefix": prefix,
		"limit":  listLimit,
		"offset": 0,
		"sortBy": map[string]string{"column": "name", "order": "asc"},
	}

	var objects []FileObject
	if err := b.browser.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/storage/v1/object/list/" + url.PathEscape(b.name),
		bearer: bearer,
		body:   body,
	}, &objects); err != nil {
		return nil, fmt.Errorf("list; bucket: %s, prefix: %s, error: %w", b.name, prefix, err)
	}
	return objects, nil
}

// Remove deletes the objects at the passed paths. Paths that do not exist
// are ignored by the provider.
func (b Bucket) Remove(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}

	bearer, err := b.browser.bearer(ctx)
	if err != nil {
		return err
	}

	if err := b.browser.client.do(ctx, request{
		method: http.MethodDelete,
		path:   "/storage/v1/object/" + url.PathEscape(b.name),
		bearer: bearer,
		body:   map[string][]string{"prefixes": paths},
	}, nil); err != nil {
		return fmt.Errorf("remove; bucket: %s, error: %w", b.name, err)
	}
	return nil
}

// PublicURL is the URL the object at path is publicly served from. The
// object is not required to exist.
func (b Bucket) PublicURL(path string) string {
	return fmt.Sprintf(
		"%s/storage/v1/object/public/%s/%s",
		b.browser.client.url,
		url.PathEscape(b.name),
		escapePath(path),
	)
}
