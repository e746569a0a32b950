package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/bggsearch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteItemsJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	items := []models.ResultItem{
		{Arg: "https://www.boardgamegeek.com/boardgame/174430/gloomhaven", Icon: &models.Icon{Path: "/tmp/2437871.png"}, Subtitle: "2017", Title: "Gloomhaven"},
		{Arg: "https://www.boardgamegeek.com/geeksearch.php?action=search&objecttype=boardgame&q=Gloomhaven", Subtitle: "Search boardgamegeek.com", Title: "Search on bgg: Gloomhaven"},
	}

	require.NoError(t, WriteItems(&buf, FormatJSON, items))

	var decoded map[string][]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded["items"], 2)
	assert.Equal(t, map[string]any{"path": "/tmp/2437871.png"}, decoded["items"][0]["icon"])
	_, hasIcon := decoded["items"][1]["icon"]
	assert.False(t, hasIcon)
	assert.Contains(t, buf.String(), "action=search&objecttype=boardgame")
}

func TestResolveFormat(t *testing.T) {
	var buf bytes.Buffer

	got, err := ResolveFormat("auto", &buf)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, got)

	got, err = ResolveFormat("TABLE", &buf)
	require.NoError(t, err)
	assert.Equal(t, FormatTable, got)

	_, err = ResolveFormat("xml", &buf)
	assert.Error(t, err)
}

func TestRenderItems(t *testing.T) {
	out := RenderItems([]models.ResultItem{{Title: "Gloomhaven", Subtitle: "2017", Arg: "https://example.com"}})
	assert.Contains(t, out, "Gloomhaven")
	assert.Contains(t, out, "2017")
}

func TestRenderEntriesDescribesFiles(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "1.png")
	require.NoError(t, os.WriteFile(png, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}, 0o644))

	out := RenderEntries([]models.CacheEntry{
		{Key: "1", Path: png},
		{Key: "2", Path: filepath.Join(dir, "gone.png")},
	})
	assert.Contains(t, out, "image/png")
	assert.Contains(t, out, "missing")
	assert.Contains(t, strings.ToLower(out), "2 entries")
}

func TestWriteEntriesYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEntries(&buf, FormatYAML, []models.CacheEntry{{Key: "972618", Path: "/tmp/972618.png"}}))
	assert.Contains(t, buf.String(), "key: \"972618\"")
	assert.Contains(t, buf.String(), "path: /tmp/972618.png")
}

func TestWriteItemsYAMLOmitsMissingIcon(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteItems(&buf, FormatYAML, []models.ResultItem{{Arg: "https://example.com", Title: "Search on bgg: x"}}))
	assert.Contains(t, buf.String(), "Search on bgg: x")
	assert.NotContains(t, buf.String(), "icon")
}
