package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"photofolio_api/internal/models"
)

// PostService manages blog posts. Image content lives in blob storage; posts
// only carry the URLs inside their block payloads.
type PostService struct {
	db *gorm.DB
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db}
}

// PostInput is the create/update payload.
type PostInput struct {
	Title        string          `json:"title"`
	Subtitle     string          `json:"subtitle"`
	Locale       string          `json:"locale"`
	Blocks       json.RawMessage `json:"blocks"`
	PublishedAt  string          `json:"published_at"`
	ThumbnailSrc *string         `json:"thumbnail_src"`
	ThumbnailAlt *string         `json:"thumbnail_alt"`
	RelatedSlug  *string         `json:"related_slug"`
}

// FindAll lists posts, newest first, optionally filtered by locale.
func (s *PostService) FindAll(ctx context.Context, locale string) ([]models.Post, error) {
	query := s.db.WithContext(ctx).Order("published_at DESC")
	if locale != "" {
		query = query.Where("locale = ?", locale)
	}
	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostService) FindBySlug(ctx context.Context, slug, locale string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).First(&post, "slug = ? AND locale = ?", slug, locale).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// FindByRelatedSlug resolves the translation of a story: the post in the
// requested locale whose related slug points at the given one.
func (s *PostService) FindByRelatedSlug(ctx context.Context, relatedSlug, locale string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).First(&post, "related_slug = ? AND locale = ?", relatedSlug, locale).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (s *PostService) Create(ctx context.Context, input PostInput) (*models.Post, error) {
	if input.Title == "" || input.Subtitle == "" || input.Locale == "" || len(input.Blocks) == 0 {
		return nil, NewValidationError("title, subtitle, locale and blocks are required")
	}
	if !json.Valid(input.Blocks) {
		return nil, NewValidationError("blocks must be valid JSON")
	}

	slug, err := s.uniqueSlug(ctx, Slugify(input.Title), input.Locale)
	if err != nil {
		return nil, err
	}

	publishedAt := time.Now()
	if input.PublishedAt != "" {
		if t := parseTimestamp(input.PublishedAt); t != nil {
			publishedAt = *t
		}
	}

	post := models.Post{
		Title:        input.Title,
		Subtitle:     input.Subtitle,
		Locale:       input.Locale,
		Slug:         slug,
		Blocks:       input.Blocks,
		PublishedAt:  publishedAt,
		ThumbnailSrc: input.ThumbnailSrc,
		ThumbnailAlt: input.ThumbnailAlt,
		RelatedSlug:  input.RelatedSlug,
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *PostService) Update(ctx context.Context, id string, input PostInput) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if input.Title != "" && input.Title != post.Title {
		slug, err := s.uniqueSlug(ctx, Slugify(input.Title), post.Locale)
		if err != nil {
			return nil, err
		}
		post.Title = input.Title
		post.Slug = slug
	}
	if input.Subtitle != "" {
		post.Subtitle = input.Subtitle
	}
	if len(input.Blocks) > 0 {
		if !json.Valid(input.Blocks) {
			return nil, NewValidationError("blocks must be valid JSON")
		}
		post.Blocks = input.Blocks
	}
	if input.PublishedAt != "" {
		if t := parseTimestamp(input.PublishedAt); t != nil {
			post.PublishedAt = *t
		}
	}
	if input.ThumbnailSrc != nil {
		post.ThumbnailSrc = input.ThumbnailSrc
	}
	if input.ThumbnailAlt != nil {
		post.ThumbnailAlt = input.ThumbnailAlt
	}
	if input.RelatedSlug != nil {
		post.RelatedSlug = input.RelatedSlug
	}

	if err := s.db.WithContext(ctx).Save(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *PostService) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

var slugStripPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a title and collapses everything non-alphanumeric into
// single hyphens.
func Slugify(title string) string {
	slug := slugStripPattern.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}

// uniqueSlug appends a numeric suffix until the slug is unused in the locale.
func (s *PostService) uniqueSlug(ctx context.Context, base, locale string) (string, error) {
	if base == "" {
		base = "post"
	}
	slug := base
	for i := 2; ; i++ {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Post{}).
			Where("slug = ? AND locale = ?", slug, locale).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
