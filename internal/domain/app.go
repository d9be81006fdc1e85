package domain

import "context"

// AppService is the use-case surface consumed by the transport layer.
type AppService interface {
	CastVote(ctx context.Context, userID, postID int64, value VoteValue) (*VoteResult, error)
	ListFeed(ctx context.Context, limit int, cursor *FeedCursor) (*FeedPage, error)
	GetPost(ctx context.Context, postID int64) (*Post, error)
	CreatePost(ctx context.Context, creatorID int64, title, body string) (*Post, error)
	UpdatePost(ctx context.Context, postID int64, title, body *string) (*Post, error)
	DeletePost(ctx context.Context, postID int64) error
}
