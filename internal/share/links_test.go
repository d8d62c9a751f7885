package share

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var content = Content{
	URL:   "https://ace.sastra.ac.in/user/abc/badge/xyz",
	Title: `Alice earned "Speaker" badge!`,
	Text:  "Check out my badge & more",
}

func TestLinks_AllPlatforms(t *testing.T) {
	links := NewBuilder("ACE | SASTRA").Links(content)

	require.Len(t, links, 4)
	for i, p := range Platforms {
		assert.Equal(t, p, links[i].Platform)
	}
}

func TestLink_WhatsApp(t *testing.T) {
	link := NewBuilder("ACE | SASTRA").Link(PlatformWhatsApp, content)

	u, err := url.Parse(link.URL)
	require.NoError(t, err)
	assert.Equal(t, "api.whatsapp.com", u.Host)
	assert.Equal(t, content.Text+" "+content.URL, u.Query().Get("text"))
}

func TestLink_Twitter(t *testing.T) {
	link := NewBuilder("ACE | SASTRA").Link(PlatformTwitter, content)

	u, err := url.Parse(link.URL)
	require.NoError(t, err)
	assert.Equal(t, "/intent/tweet", u.Path)
	assert.Equal(t, content.URL, u.Query().Get("url"))
	assert.Equal(t, content.Text, u.Query().Get("text"))
}

func TestLink_LinkedIn(t *testing.T) {
	link := NewBuilder("ACE | SASTRA").Link(PlatformLinkedIn, content)

	u, err := url.Parse(link.URL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "/shareArticle", u.Path)
	assert.Equal(t, content.URL, q.Get("url"))
	assert.Equal(t, content.Title, q.Get("title"))
	assert.Equal(t, content.Text, q.Get("summary"))
	assert.Equal(t, "ACE | SASTRA", q.Get("source"))
}

func TestLink_GenericAndUnknown(t *testing.T) {
	b := NewBuilder("ACE | SASTRA")

	generic := b.Link(PlatformGeneric, content)
	assert.Equal(t, content.URL, generic.URL)
	assert.Equal(t, content.Title, generic.Title)

	unknown := b.Link(Platform("myspace"), content)
	assert.Equal(t, PlatformGeneric, unknown.Platform)
	assert.Equal(t, content.URL, unknown.URL)
}

func TestLink_SkipsEmptyValues(t *testing.T) {
	link := NewBuilder("").Link(PlatformLinkedIn, Content{URL: "https://example.com"})

	u, err := url.Parse(link.URL)
	require.NoError(t, err)
	_, hasSource := u.Query()["source"]
	assert.False(t, hasSource)

	wa := NewBuilder("").Link(PlatformWhatsApp, Content{URL: "https://example.com"})
	u, err = url.Parse(wa.URL)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", u.Query().Get("text"))
}
