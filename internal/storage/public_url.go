// Package storage derives public URLs for objects in the asset buckets.
package storage

import (
	"net/url"
	"strings"

	"github.com/acesastra/ace-portal/internal/config"
)

const publicObjectPath = "/storage/v1/object/public/"

// URLBuilder builds public object URLs.
type URLBuilder struct {
	baseURL     string
	badgeBucket string
	eventBucket string
}

// NewURLBuilder creates a URL builder from the storage configuration.
func NewURLBuilder(cfg *config.StorageConfig) *URLBuilder {
	return &URLBuilder{
		baseURL:     strings.TrimRight(cfg.PublicBaseURL, "/"),
		badgeBucket: cfg.BadgeBucket,
		eventBucket: cfg.EventBucket,
	}
}

// PublicURL returns <base>/storage/v1/object/public/<bucket>/<key>, or ""
// when the key is empty.
func (b *URLBuilder) PublicURL(bucket, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" || bucket == "" {
		return ""
	}

	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return b.baseURL + publicObjectPath + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}

// BadgeIcon returns the public URL of a badge icon.
func (b *URLBuilder) BadgeIcon(key string) string {
	return b.PublicURL(b.badgeBucket, key)
}

// EventImage returns the public URL of an event image, or "" when unset.
func (b *URLBuilder) EventImage(key *string) string {
	if key == nil {
		return ""
	}
	return b.PublicURL(b.eventBucket, *key)
}
