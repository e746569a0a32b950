package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/bggsearch/internal/models"
	"github.com/tidwall/gjson"
)

// ShowCount is the number of candidates requested from the catalog search
const ShowCount = 7

// DefaultBaseURL is the public BoardGameGeek origin
const DefaultBaseURL = "https://www.boardgamegeek.com"

var (
	// ErrUnexpectedStatus is returned when the catalog answers with a non-200 status
	ErrUnexpectedStatus = errors.New("unexpected catalog status")
	// ErrMalformedResponse is returned when the search document cannot be decoded
	ErrMalformedResponse = errors.New("malformed catalog response")
)

// Client represents a BoardGameGeek catalog search client
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

// NewClient creates a new catalog client. An empty baseURL falls back to DefaultBaseURL.
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

// Search runs a keyword search and returns at most ShowCount candidates
func (c *Client) Search(ctx context.Context, query string) ([]models.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SearchJSONURL(query), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: catalog returned status %d: %s", ErrUnexpectedStatus, resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	return ParseSearchResponse(body)
}

// ParseSearchResponse decodes the items of a search document.
// Ids may arrive as JSON numbers or numeric strings.
func ParseSearchResponse(body []byte) ([]models.Candidate, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedResponse)
	}

	items := gjson.GetBytes(body, "items")
	if !items.IsArray() {
		return nil, fmt.Errorf("%w: missing items array", ErrMalformedResponse)
	}

	candidates := make([]models.Candidate, 0, ShowCount)
	items.ForEach(func(_, item gjson.Result) bool {
		candidates = append(candidates, models.Candidate{
			CatalogID:     int(item.Get("objectid").Int()),
			Name:          item.Get("name").String(),
			YearPublished: int(item.Get("yearpublished").Int()),
			RepImageID:    int(item.Get("rep_imageid").Int()),
			Href:          item.Get("href").String(),
		})
		return len(candidates) < ShowCount
	})

	return candidates, nil
}
