package server

import (
	"context"
	"fmt"
	"testing"

	"github.com/labstack/echo/v4"

	"updoot/internal/config"
	"updoot/internal/domain"
)

// --- Mock application service ---

type mockAppService struct {
	castVoteFn   func(ctx context.Context, userID, postID int64, value domain.VoteValue) (*domain.VoteResult, error)
	listFeedFn   func(ctx context.Context, limit int, cursor *domain.FeedCursor) (*domain.FeedPage, error)
	getPostFn    func(ctx context.Context, postID int64) (*domain.Post, error)
	createPostFn func(ctx context.Context, creatorID int64, title, body string) (*domain.Post, error)
	updatePostFn func(ctx context.Context, postID int64, title, body *string) (*domain.Post, error)
	deletePostFn func(ctx context.Context, postID int64) error
}

func (m *mockAppService) CastVote(ctx context.Context, userID, postID int64, value domain.VoteValue) (*domain.VoteResult, error) {
	if m.castVoteFn != nil {
		return m.castVoteFn(ctx, userID, postID, value)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAppService) ListFeed(ctx context.Context, limit int, cursor *domain.FeedCursor) (*domain.FeedPage, error) {
	if m.listFeedFn != nil {
		return m.listFeedFn(ctx, limit, cursor)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAppService) GetPost(ctx context.Context, postID int64) (*domain.Post, error) {
	if m.getPostFn != nil {
		return m.getPostFn(ctx, postID)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAppService) CreatePost(ctx context.Context, creatorID int64, title, body string) (*domain.Post, error) {
	if m.createPostFn != nil {
		return m.createPostFn(ctx, creatorID, title, body)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAppService) UpdatePost(ctx context.Context, postID int64, title, body *string) (*domain.Post, error) {
	if m.updatePostFn != nil {
		return m.updatePostFn(ctx, postID, title, body)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockAppService) DeletePost(ctx context.Context, postID int64) error {
	if m.deletePostFn != nil {
		return m.deletePostFn(ctx, postID)
	}
	return fmt.Errorf("not implemented")
}

func newTestServer(t *testing.T, app domain.AppService) *Server {
	t.Helper()

	e := echo.New()
	return &Server{
		echo:   e,
		config: &config.Config{Port: "8080"},
		app:    app,
	}
}

// callHandler wraps a handler with error middleware, matching production behavior
func callHandler(handler echo.HandlerFunc, c echo.Context) error {
	return ErrorHandlingMiddleware()(handler)(c)
}
