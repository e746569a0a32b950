package catalog

import (
	"fmt"
	"net/url"
	"strings"
)

// uriComponentFixes undoes the differences between url.QueryEscape and
// JavaScript's encodeURIComponent, which the site's own search links use.
var uriComponentFixes = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent escapes s for use as a single query value
func EncodeURIComponent(s string) string {
	return uriComponentFixes.Replace(url.QueryEscape(s))
}

// GameURL returns the absolute URL of a game detail path
func (c *Client) GameURL(href string) string {
	return c.BaseURL + href
}

// SearchJSONURL returns the JSON search endpoint for query
func (c *Client) SearchJSONURL(query string) string {
	return fmt.Sprintf("%s/search/boardgame?q=%s&showcount=%d", c.BaseURL, EncodeURIComponent(query), ShowCount)
}

// SearchHTMLURL returns the website search page for query
func (c *Client) SearchHTMLURL(query string) string {
	return fmt.Sprintf("%s/geeksearch.php?action=search&objecttype=boardgame&q=%s", c.BaseURL, EncodeURIComponent(query))
}
