package domain

import (
	"context"
	"time"
)

// User is the external identity this service references. Credentials,
// sessions, and registration live upstream; only the fields needed for
// authorship and feed enrichment are stored here.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// UserSummary is the read-side creator view attached to feed posts.
type UserSummary struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UserRepository interface {
	Create(ctx context.Context, username, email string) (*User, error)
	GetByID(ctx context.Context, userID int64) (*User, error)
}
