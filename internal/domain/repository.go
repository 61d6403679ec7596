package domain

import (
	"context"
	"time"
)

// UserRepository defines access methods for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// ThumbnailRepository persists thumbnails. Every read and delete is scoped to
// the owning user as part of the query predicate.
type ThumbnailRepository interface {
	Create(ctx context.Context, thumb *Thumbnail) (*Thumbnail, error)
	AttachResult(ctx context.Context, id, imageURL, imageKey string) (*Thumbnail, error)
	ListByOwner(ctx context.Context, userID string) ([]Thumbnail, error)
	GetByIDForOwner(ctx context.Context, id, userID string) (*Thumbnail, error)
	DeleteByIDForOwner(ctx context.Context, id, userID string) (*Thumbnail, error)
	MarkFailed(ctx context.Context, id, reason string) error
	FailStale(ctx context.Context, createdBefore time.Time, reason string) (int64, error)
}
