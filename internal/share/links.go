// Package share builds outbound share links for third-party targets.
package share

import (
	"net/url"
	"strings"
)

// Platform identifies a share target.
type Platform string

// Supported platforms, in display order.
const (
	PlatformWhatsApp Platform = "whatsapp"
	PlatformTwitter  Platform = "twitter"
	PlatformLinkedIn Platform = "linkedin"
	PlatformGeneric  Platform = "generic"
)

// Platforms lists every supported target.
var Platforms = []Platform{PlatformWhatsApp, PlatformTwitter, PlatformLinkedIn, PlatformGeneric}

// Content is the thing being shared.
type Content struct {
	URL   string
	Title string
	Text  string
}

// Link is a ready-to-open share URL. For the generic target the URL is the
// shared page itself; the client hands it to the native share sheet.
type Link struct {
	Platform Platform `json:"platform"`
	URL      string   `json:"url"`
	Title    string   `json:"title,omitempty"`
	Text     string   `json:"text,omitempty"`
}

// Builder builds share links. Source is the site label sent to LinkedIn.
type Builder struct {
	source string
}

// NewBuilder creates a share link builder.
func NewBuilder(source string) *Builder {
	return &Builder{source: source}
}

// Links returns a link for every platform.
func (b *Builder) Links(c Content) []Link {
	links := make([]Link, 0, len(Platforms))
	for _, p := range Platforms {
		links = append(links, b.Link(p, c))
	}
	return links
}

// Link returns the share link for one platform. Unknown platforms fall back
// to the generic link.
func (b *Builder) Link(p Platform, c Content) Link {
	switch p {
	case PlatformWhatsApp:
		return Link{Platform: p, URL: "https://api.whatsapp.com/send?" + query(
			"text", joinNonEmpty(" ", c.Text, c.URL),
		)}
	case PlatformTwitter:
		return Link{Platform: p, URL: "https://twitter.com/intent/tweet?" + query(
			"url", c.URL,
			"text", c.Text,
		)}
	case PlatformLinkedIn:
		return Link{Platform: p, URL: "https://www.linkedin.com/shareArticle?" + query(
			"mini", "true",
			"url", c.URL,
			"title", c.Title,
			"summary", c.Text,
			"source", b.source,
		)}
	default:
		return Link{Platform: PlatformGeneric, URL: c.URL, Title: c.Title, Text: c.Text}
	}
}

// query encodes key/value pairs in the given order, skipping empty values.
func query(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		parts = append(parts, url.QueryEscape(pairs[i])+"="+url.QueryEscape(pairs[i+1]))
	}
	return strings.Join(parts, "&")
}

func joinNonEmpty(sep string, values ...string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, sep)
}

// Meta is the page metadata sent alongside shareable pages.
type Meta struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	CanonicalURL string `json:"canonical_url"`
}
