package models

import "time"

// Candidate represents one board game returned by the catalog search
type Candidate struct {
	CatalogID     int    `json:"objectid"`
	Name          string `json:"name"`
	YearPublished int    `json:"yearpublished"`
	RepImageID    int    `json:"rep_imageid"` // representative image among the game's gallery
	Href          string `json:"href"`        // detail path, e.g. /boardgame/174430/gloomhaven
}

// GalleryImage represents one entry of the image gallery listing
type GalleryImage struct {
	ImageID  string `json:"imageid"`
	ImageURL string `json:"imageurl"`
}

// CacheEntry maps a representative image id to a downloaded icon on disk
type CacheEntry struct {
	Key      string    `json:"key" yaml:"key"`
	Path     string    `json:"path" yaml:"path"`
	CachedAt time.Time `json:"cached_at" yaml:"cached_at"`
}

// Icon points the launcher at a local image file
type Icon struct {
	Path string `json:"path" yaml:"path"`
}

// ResultItem is a single row rendered by the launcher
type ResultItem struct {
	Arg      string `json:"arg" yaml:"arg"`
	Icon     *Icon  `json:"icon,omitempty" yaml:"icon,omitempty"`
	Subtitle string `json:"subtitle" yaml:"subtitle"`
	Title    string `json:"title" yaml:"title"`
}

// Envelope is the script filter document the launcher reads from stdout
type Envelope struct {
	Items []ResultItem `json:"items" yaml:"items"`
}
