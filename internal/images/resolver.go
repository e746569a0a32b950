package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lehigh-university-libraries/bggsearch/internal/cache"
	"github.com/lehigh-university-libraries/bggsearch/internal/gallery"
	"github.com/lehigh-university-libraries/bggsearch/internal/models"
)

// ErrDownload wraps any failure while streaming an icon to disk
var ErrDownload = errors.New("icon download failed")

// GalleryLister lists the gallery images of a catalog object
type GalleryLister interface {
	ListImages(ctx context.Context, objectID int) ([]models.GalleryImage, error)
}

// Resolver maps a game's representative image to a local icon file,
// memoizing the mapping in a durable cache store.
type Resolver struct {
	gallery    GalleryLister
	store      cache.Store
	iconDir    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithIconDir stores icons in dir instead of the OS temp directory
func WithIconDir(dir string) Option {
	return func(r *Resolver) {
		if dir != "" {
			r.iconDir = dir
		}
	}
}

// WithHTTPClient overrides the client used for icon downloads
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// WithLogger sets the resolver logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a resolver backed by the given gallery and store
func NewResolver(lister GalleryLister, store cache.Store, opts ...Option) *Resolver {
	r := &Resolver{
		gallery:    lister,
		store:      store,
		iconDir:    os.TempDir(),
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IconPath returns where the icon for repImageID is written
func (r *Resolver) IconPath(repImageID int) string {
	return filepath.Join(r.iconDir, fmt.Sprintf("%d.png", repImageID))
}

// Resolve returns the local icon path for a game, or "" when the gallery has
// no image matching repImageID. A cached path is returned without any network
// call as long as the file is still readable; otherwise the entry is dropped
// and the icon fetched again.
func (r *Resolver) Resolve(ctx context.Context, objectID, repImageID int) (string, error) {
	key := strconv.Itoa(repImageID)

	cached, found, err := r.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to read icon cache: %w", err)
	}
	if found {
		if readable(cached) {
			r.logger.Debug("Icon cache hit", "rep_image_id", repImageID, "path", cached)
			return cached, nil
		}
		r.logger.Debug("Dropping stale icon cache entry", "rep_image_id", repImageID, "path", cached)
		if err := r.store.Delete(ctx, key); err != nil && !errors.Is(err, cache.ErrNotFound) {
			r.logger.Warn("Failed to delete stale icon cache entry", "rep_image_id", repImageID, "error", err)
		}
	}

	images, err := r.gallery.ListImages(ctx, objectID)
	if err != nil {
		return "", err
	}

	image, ok := gallery.Find(images, repImageID)
	if !ok {
		r.logger.Debug("No gallery image matches representative image", "object_id", objectID, "rep_image_id", repImageID, "gallery_size", len(images))
		return "", nil
	}

	iconPath := r.IconPath(repImageID)
	if err := r.download(ctx, image.ImageURL, iconPath); err != nil {
		return "", err
	}

	if err := r.store.Set(ctx, key, iconPath); err != nil {
		return "", fmt.Errorf("failed to record icon in cache: %w", err)
	}

	r.logger.Debug("Downloaded icon", "object_id", objectID, "rep_image_id", repImageID, "path", iconPath)
	return iconPath, nil
}

// download streams url into outputPath, replacing any existing file once the
// body has been fully written
func (r *Resolver) download(ctx context.Context, url, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %w", ErrDownload, err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to fetch image: %w", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: image URL returned status %d", ErrDownload, resp.StatusCode)
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create icon directory: %w", ErrDownload, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(outputPath)+".*.part")
	if err != nil {
		return fmt.Errorf("%w: failed to create icon file: %w", ErrDownload, err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Chmod(0644)

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to save image: %w", ErrDownload, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to close icon file: %w", ErrDownload, err)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to move icon file: %w", ErrDownload, err)
	}

	return nil
}

// readable reports whether path can currently be opened for reading
func readable(path string) bool {
	if path == "" {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
