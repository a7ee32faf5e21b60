package domain

import (
	"context"
	"time"
)

const (
	TESTIMONIAL_STATUS_PENDING  = "pending"
	TESTIMONIAL_STATUS_APPROVED = "approved"
	TESTIMONIAL_STATUS_REJECTED = "rejected"
)

const DEFAULT_RATING = 5

type Testimonial struct {
	ID         int        `json:"id"`
	ProjectID  int        `json:"pid"`
	Name       string     `json:"name"`
	Email      *string    `json:"email,omitempty"`
	Company    *string    `json:"company,omitempty"`
	Role       *string    `json:"role,omitempty"`
	Content    string     `json:"content"`
	Rating     int        `json:"rating"`
	Status     string     `json:"status"`
	IsFeatured bool       `json:"is_featured"`
	AvatarURL  *string    `json:"avatar_url,omitempty"`
	CreateTime *time.Time `json:"create_time"`
}

// FeedItem is the public projection of an approved testimonial served to
// embedding pages. No email, no status.
type FeedItem struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Company    *string    `json:"company,omitempty"`
	Role       *string    `json:"role,omitempty"`
	Content    string     `json:"content"`
	Rating     int        `json:"rating"`
	AvatarURL  *string    `json:"avatar_url,omitempty"`
	IsFeatured bool       `json:"is_featured"`
	CreateTime *time.Time `json:"create_time"`
}

type TestimonialRepository interface {
	// GetByIDForUser joins through the owning project so a testimonial
	// belonging to another user is indistinguishable from a missing one.
	// Also returns the owning project's slug for cache invalidation.
	GetByIDForUser(ctx context.Context, id int, uid int) (*Testimonial, string, error)
	GetByProjectID(ctx context.Context, pid int) ([]Testimonial, error)
	// GetApprovedByProjectID returns approved testimonials ordered
	// featured-first then newest-first.
	GetApprovedByProjectID(ctx context.Context, pid int) ([]FeedItem, error)
	CountByProjectID(ctx context.Context, pid int) (int, error)
	Insert(ctx context.Context, t *Testimonial) error
	UpdateStatus(ctx context.Context, t *Testimonial, status string) error
	SetFeatured(ctx context.Context, t *Testimonial, featured bool) error
	Delete(ctx context.Context, t *Testimonial) error
}

// FeedCache holds the serialized approved feed per project slug. Moderation
// actions invalidate it so embeds pick up changes without a redeploy.
type FeedCache interface {
	GetBySlug(ctx context.Context, slug string) (string, error)
	Update(ctx context.Context, slug string, data string) error
	Invalidate(ctx context.Context, slug string) error
}
