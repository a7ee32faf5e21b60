package domain

import (
	"context"
	"time"
)

type Project struct {
	ID               int        `json:"id"`
	UserID           int        `json:"uid"`
	Name             string     `json:"name"`
	Slug             string     `json:"slug"`
	Website          *string    `json:"website,omitempty"`
	TestimonialCount int        `json:"testimonial_count"`
	CreateTime       *time.Time `json:"create_time"`
}

type ProjectRepository interface {
	// GetByIDForUser returns the project only when it is owned by uid.
	// Absent and not-owned are both pgx.ErrNoRows.
	GetByIDForUser(ctx context.Context, id int, uid int) (*Project, error)
	GetBySlug(ctx context.Context, slug string) (*Project, error)
	// GetBySlugWithOwner also loads the owner's plan and the current
	// testimonial count, for the submission quota check.
	GetBySlugWithOwner(ctx context.Context, slug string) (*Project, string, error)
	GetProjectsByUserID(ctx context.Context, uid int) ([]Project, error)
	CountByUserID(ctx context.Context, uid int) (int, error)
	Insert(ctx context.Context, project *Project) error
	Delete(ctx context.Context, project *Project) error
}
