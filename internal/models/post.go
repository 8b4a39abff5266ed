package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a blog-style article composed of ordered content blocks
// (text and image blocks; image URLs point at blob storage).
type Post struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title    string `gorm:"type:varchar(255);not null" json:"title"`
	Subtitle string `gorm:"type:varchar(512)" json:"subtitle"`
	Locale   string `gorm:"type:varchar(5);not null;uniqueIndex:idx_posts_slug_locale" json:"locale"`
	Slug     string `gorm:"type:varchar(255);not null;uniqueIndex:idx_posts_slug_locale" json:"slug"`

	// RelatedSlug pairs translations of the same story across locales.
	RelatedSlug *string `gorm:"type:varchar(255);index" json:"related_slug,omitempty"`

	Blocks       json.RawMessage `gorm:"type:jsonb" json:"blocks"`
	ThumbnailSrc *string         `gorm:"type:varchar(1024)" json:"thumbnail_src,omitempty"`
	ThumbnailAlt *string         `gorm:"type:varchar(512)" json:"thumbnail_alt,omitempty"`
	PublishedAt  time.Time       `json:"published_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
