package domain

import (
	"context"
	"time"
)

// Post is a piece of content with a denormalized vote score. Points is owned
// by the vote ledger: the authoring flow writes title and body only, and the
// score changes exclusively through VoteLedger.CastVote.
type Post struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	Points    int64     `db:"points" json:"points"`
	CreatorID int64     `db:"creator_id" json:"creatorId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Creator is populated on feed reads; nil elsewhere.
	Creator *UserSummary `json:"creator,omitempty"`
}

type PostRepository interface {
	Create(ctx context.Context, creatorID int64, title, body string, createdAt time.Time) (*Post, error)
	GetByID(ctx context.Context, postID int64) (*Post, error)
	Update(ctx context.Context, postID int64, title, body *string) (*Post, error)
	Delete(ctx context.Context, postID int64) error
	ListFeed(ctx context.Context, limit int, cursor *FeedCursor) (*FeedPage, error)
}
