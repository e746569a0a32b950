package results

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/dustin/go-humanize/english"
	"github.com/lehigh-university-libraries/bggsearch/internal/models"
	"golang.org/x/sync/errgroup"
)

// FallbackSubtitle labels the trailing website search item
const FallbackSubtitle = "Search boardgamegeek.com"

// Searcher runs catalog searches and builds catalog URLs
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.Candidate, error)
	GameURL(href string) string
	SearchHTMLURL(query string) string
}

// IconResolver maps a candidate to a local icon path ("" when none)
type IconResolver interface {
	Resolve(ctx context.Context, objectID, repImageID int) (string, error)
}

// Assembler turns a query into launcher result items
type Assembler struct {
	searcher        Searcher
	icons           IconResolver
	isolateFailures bool
	logger          *slog.Logger
}

// Option configures an Assembler
type Option func(*Assembler)

// WithIsolatedFailures renders a candidate without an icon when its
// resolution fails, instead of failing the whole search
func WithIsolatedFailures(enabled bool) Option {
	return func(a *Assembler) {
		a.isolateFailures = enabled
	}
}

// WithLogger sets the assembler logger
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func NewAssembler(searcher Searcher, icons IconResolver, opts ...Option) *Assembler {
	a := &Assembler{
		searcher: searcher,
		icons:    icons,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble searches the catalog, resolves every candidate's icon concurrently
// and returns one item per candidate, in catalog order, followed by a website
// search item. Unless failures are isolated, a resolution error fails the
// whole batch once every resolution has finished; a failing candidate never
// cancels the others, so their icons still land in the cache.
func (a *Assembler) Assemble(ctx context.Context, query string) ([]models.ResultItem, error) {
	candidates, err := a.searcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	items := make([]models.ResultItem, len(candidates), len(candidates)+1)
	var g errgroup.Group
	for i, candidate := range candidates {
		g.Go(func() error {
			iconPath, err := a.icons.Resolve(ctx, candidate.CatalogID, candidate.RepImageID)
			if err != nil {
				if !a.isolateFailures {
					return err
				}
				a.logger.Warn("Failed to resolve icon", "object_id", candidate.CatalogID, "rep_image_id", candidate.RepImageID, "error", err)
				iconPath = ""
			}
			items[i] = a.candidateItem(candidate, iconPath)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.logger.Debug("Assembled results", "query", query, "candidates", english.Plural(len(candidates), "game", "games"))

	return append(items, a.fallbackItem(query)), nil
}

func (a *Assembler) candidateItem(c models.Candidate, iconPath string) models.ResultItem {
	item := models.ResultItem{
		Arg:      a.searcher.GameURL(c.Href),
		Subtitle: strconv.Itoa(c.YearPublished),
		Title:    c.Name,
	}
	if iconPath != "" {
		item.Icon = &models.Icon{Path: iconPath}
	}
	return item
}

func (a *Assembler) fallbackItem(query string) models.ResultItem {
	return models.ResultItem{
		Arg:      a.searcher.SearchHTMLURL(query),
		Subtitle: FallbackSubtitle,
		Title:    "Search on bgg: " + query,
	}
}

