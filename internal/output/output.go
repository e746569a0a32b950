// Package output renders result items and cache entries for the launcher and
// for interactive terminals.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/h2non/filetype"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/lehigh-university-libraries/bggsearch/internal/models"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatAuto  = "auto"
	FormatJSON  = "json"
	FormatTable = "table"
	FormatYAML  = "yaml"
)

// ResolveFormat turns "auto" into table for terminals and JSON otherwise
func ResolveFormat(format string, w io.Writer) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case FormatJSON, FormatTable, FormatYAML:
		return format, nil
	case "", FormatAuto:
		if isTerminal(w) {
			return FormatTable, nil
		}
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// WriteItems writes result items in the given format
func WriteItems(w io.Writer, format string, items []models.ResultItem) error {
	switch format {
	case FormatTable:
		_, err := fmt.Fprintln(w, RenderItems(items))
		return err
	case FormatJSON:
		return WriteJSON(w, models.Envelope{Items: items})
	case FormatYAML:
		return writeYAML(w, models.Envelope{Items: items})
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteJSON encodes v as the launcher expects it
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// RenderItems renders result items as a terminal table
func RenderItems(items []models.ResultItem) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Title", "Year", "Icon", "URL"})
	for _, item := range items {
		icon := ""
		if item.Icon != nil {
			icon = item.Icon.Path
		}
		tw.AppendRow(table.Row{item.Title, item.Subtitle, icon, item.Arg})
	}
	return tw.Render()
}

// WriteEntries writes cache entries in the given format
func WriteEntries(w io.Writer, format string, entries []models.CacheEntry) error {
	switch format {
	case FormatTable:
		_, err := fmt.Fprintln(w, RenderEntries(entries))
		return err
	case FormatJSON:
		return WriteJSON(w, entries)
	case FormatYAML:
		return writeYAML(w, entries)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

// RenderEntries renders cache entries with the state of each icon file
func RenderEntries(entries []models.CacheEntry) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Image ID", "Path", "Type", "Size", "Cached"})
	for _, entry := range entries {
		kind, size := describeFile(entry.Path)
		tw.AppendRow(table.Row{entry.Key, entry.Path, kind, size, cachedAge(entry.CachedAt)})
	}
	tw.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d entries", len(entries))})
	return tw.Render()
}

// describeFile reports the sniffed type and size of an icon, or "missing"
func describeFile(path string) (string, string) {
	info, err := os.Stat(path)
	if err != nil {
		return "missing", "-"
	}
	kind := "unknown"
	if match, err := filetype.MatchFile(path); err == nil && match != filetype.Unknown {
		kind = match.MIME.Value
	}
	return kind, humanize.Bytes(uint64(info.Size()))
}

func cachedAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}
