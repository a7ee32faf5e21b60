package domain

import (
	"context"
	"time"
)

const (
	PLAN_FREE = "free"
	PLAN_PRO  = "pro"
)

const (
	// Free plan limits. Checked at mutation time, not retroactively.
	FREE_PLAN_MAX_PROJECTS     = 1
	FREE_PLAN_MAX_TESTIMONIALS = 5
)

type User struct {
	ID         int        `json:"id"`
	VisitorID  string     `json:"visitor_id"`
	Email      string     `json:"email"`
	Name       *string    `json:"name,omitempty"`
	Plan       string     `json:"plan"`
	CreateTime *time.Time `json:"create_time"`
}

type UserRepository interface {
	GetByID(ctx context.Context, id int) (*User, error)
	GetByVisitorID(ctx context.Context, visitorID string) (*User, error)
	// GetOrCreate inserts a row for user.VisitorID if none exists and
	// returns the stored row either way. Idempotent.
	GetOrCreate(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, user *User) error
}
