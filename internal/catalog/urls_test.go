package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeURIComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Gloomhaven", want: "Gloomhaven"},
		{in: "Ticket to Ride", want: "Ticket%20to%20Ride"},
		{in: "7 Wonders: Duel", want: "7%20Wonders%3A%20Duel"},
		{in: "Carcassonne (2000)", want: "Carcassonne%20(2000)"},
		{in: "a+b&c", want: "a%2Bb%26c"},
		{in: "Kingdomino!*'", want: "Kingdomino!*'"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeURIComponent(tt.in))
		})
	}
}

func TestURLBuilders(t *testing.T) {
	c := NewClient("")

	assert.Equal(t, "https://www.boardgamegeek.com/boardgame/174430/gloomhaven", c.GameURL("/boardgame/174430/gloomhaven"))
	assert.Equal(t, "https://www.boardgamegeek.com/search/boardgame?q=Gloomhaven&showcount=7", c.SearchJSONURL("Gloomhaven"))
	assert.Equal(t, "https://www.boardgamegeek.com/geeksearch.php?action=search&objecttype=boardgame&q=Gloomhaven", c.SearchHTMLURL("Gloomhaven"))
}

func TestNewClientTrimsBaseURL(t *testing.T) {
	c := NewClient(" https://bgg.example.com/ ")
	assert.Equal(t, "https://bgg.example.com", c.BaseURL)
}
