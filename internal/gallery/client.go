package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/bggsearch/internal/models"
	"github.com/tidwall/gjson"
)

// DefaultBaseURL is the Geekdo image API origin
const DefaultBaseURL = "https://api.geekdo.com"

// ShowCount is the maximum number of gallery images requested per game
const ShowCount = 99

var (
	// ErrUnexpectedStatus is returned when the image API answers with a non-200 status
	ErrUnexpectedStatus = errors.New("unexpected image api status")
	// ErrMalformedResponse is returned when the gallery document cannot be decoded
	ErrMalformedResponse = errors.New("malformed gallery response")
)

// Client fetches image gallery listings for catalog objects
type Client struct {
	BaseURL    string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient creates a gallery client. An empty baseURL falls back to DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		BaseURL:    baseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListURL returns the gallery endpoint for a catalog object: hot crop100 game images.
func (c *Client) ListURL(objectID int) string {
	return fmt.Sprintf("%s/api/images?galleries%%5B%%5D=game&nosession=1&objectid=%d&objecttype=thing&showcount=%d&size=crop100&sort=hot",
		c.BaseURL, objectID, ShowCount)
}

// ListImages fetches the gallery of objectID. A response without an images
// field yields an empty list.
func (c *Client) ListImages(ctx context.Context, objectID int) ([]models.GalleryImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ListURL(objectID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gallery request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch gallery for object %d: %w", objectID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: image api returned status %d: %s", ErrUnexpectedStatus, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gallery response: %w", err)
	}

	return ParseGallery(body)
}

// ParseGallery decodes the images array of a gallery document
func ParseGallery(body []byte) ([]models.GalleryImage, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedResponse)
	}

	images := gjson.GetBytes(body, "images")
	if !images.Exists() || images.Type == gjson.Null {
		return []models.GalleryImage{}, nil
	}
	if !images.IsArray() {
		return nil, fmt.Errorf("%w: images is not an array", ErrMalformedResponse)
	}

	list := make([]models.GalleryImage, 0, len(images.Array()))
	images.ForEach(func(_, image gjson.Result) bool {
		list = append(list, models.GalleryImage{
			ImageID:  image.Get("imageid").String(),
			ImageURL: image.Get("imageurl").String(),
		})
		return true
	})

	return list, nil
}

// Find returns the first image whose id equals repImageID
func Find(images []models.GalleryImage, repImageID int) (models.GalleryImage, bool) {
	want := strconv.Itoa(repImageID)
	for _, image := range images {
		if image.ImageID == want {
			return image, true
		}
	}
	return models.GalleryImage{}, false
}
