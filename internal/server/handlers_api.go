package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"updoot/internal/domain"
	apperrors "updoot/internal/platform/errors"
)

const defaultFeedLimit = 20

type voteRequest struct {
	Value int16 `json:"value"`
}

type voteResponse struct {
	Applied bool  `json:"applied"`
	Points  int64 `json:"points"`
}

func (s *Server) handleCastVote(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := c.Get("userID").(int64)
	if !ok {
		return apperrors.InternalError("invalid user ID in context", nil)
	}

	postID, err := parseID(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid post id").WithField("id", c.Param("id"))
	}

	var req voteRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	result, err := s.app.CastVote(ctx, userID, postID, domain.VoteValue(req.Value))
	if err != nil {
		return mapVoteError(err, postID)
	}

	if err := c.JSON(http.StatusOK, voteResponse{Applied: result.Applied, Points: result.Points}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func mapVoteError(err error, postID int64) error {
	switch {
	case errors.Is(err, domain.ErrInvalidVote):
		return apperrors.ValidationError("vote value must be -1 or +1")
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, domain.ErrUserNotFound):
		return apperrors.UnauthenticatedError("no resolved voter identity")
	case errors.Is(err, domain.ErrPostNotFound):
		return apperrors.NotFoundError("post not found").WithField("post_id", postID)
	case errors.Is(err, domain.ErrRateLimited):
		return apperrors.RateLimitedError("vote rate limit exceeded")
	case errors.Is(err, domain.ErrVoteConflict):
		return apperrors.ConflictError("vote lost a concurrent update race, retry").
			WithField("post_id", postID)
	default:
		return apperrors.InternalError("failed to cast vote", err).WithField("post_id", postID)
	}
}

func (s *Server) handleFeed(c echo.Context) error {
	ctx := c.Request().Context()

	limit := defaultFeedLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.ValidationError("invalid limit").WithField("limit", raw)
		}
		limit = parsed
	}

	cursor, err := parseCursor(c.QueryParam("cursor"), c.QueryParam("cursor_id"))
	if err != nil {
		return err
	}

	page, err := s.app.ListFeed(ctx, limit, cursor)
	if errors.Is(err, domain.ErrInvalidLimit) {
		return apperrors.ValidationError("limit must be positive").WithField("limit", limit)
	}
	if err != nil {
		return apperrors.InternalError("failed to list feed", err)
	}

	if err := c.JSON(http.StatusOK, page); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

// parseCursor builds the keyset boundary from query parameters. The cursor
// is the created_at of the last seen post (RFC 3339), optionally paired with
// that post's id as tie-break.
func parseCursor(rawCursor, rawID string) (*domain.FeedCursor, error) {
	if rawCursor == "" {
		return nil, nil
	}

	createdAt, err := time.Parse(time.RFC3339Nano, rawCursor)
	if err != nil {
		return nil, apperrors.ValidationError("invalid cursor timestamp").WithField("cursor", rawCursor)
	}

	cursor := &domain.FeedCursor{CreatedAt: createdAt}
	if rawID != "" {
		id, err := parseID(rawID)
		if err != nil {
			return nil, apperrors.ValidationError("invalid cursor id").WithField("cursor_id", rawID)
		}
		cursor.ID = id
	}
	return cursor, nil
}

func (s *Server) handleGetPost(c echo.Context) error {
	ctx := c.Request().Context()

	postID, err := parseID(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid post id").WithField("id", c.Param("id"))
	}

	post, err := s.app.GetPost(ctx, postID)
	if errors.Is(err, domain.ErrPostNotFound) {
		return apperrors.NotFoundError("post not found").WithField("post_id", postID)
	}
	if err != nil {
		return apperrors.InternalError("failed to get post", err).WithField("post_id", postID)
	}

	if err := c.JSON(http.StatusOK, post); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

type createPostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *Server) handleCreatePost(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := c.Get("userID").(int64)
	if !ok {
		return apperrors.InternalError("invalid user ID in context", nil)
	}

	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	post, err := s.app.CreatePost(ctx, userID, req.Title, req.Body)
	switch {
	case errors.Is(err, domain.ErrEmptyTitle):
		return apperrors.ValidationError("title must not be empty")
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrUnauthenticated):
		return apperrors.UnauthenticatedError("no resolved user identity")
	case err != nil:
		return apperrors.InternalError("failed to create post", err)
	}

	if err := c.JSON(http.StatusCreated, post); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

type updatePostRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

func (s *Server) handleUpdatePost(c echo.Context) error {
	ctx := c.Request().Context()

	postID, err := parseID(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid post id").WithField("id", c.Param("id"))
	}

	var req updatePostRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	post, err := s.app.UpdatePost(ctx, postID, req.Title, req.Body)
	switch {
	case errors.Is(err, domain.ErrEmptyTitle):
		return apperrors.ValidationError("title must not be empty")
	case errors.Is(err, domain.ErrPostNotFound):
		return apperrors.NotFoundError("post not found").WithField("post_id", postID)
	case err != nil:
		return apperrors.InternalError("failed to update post", err).WithField("post_id", postID)
	}

	if err := c.JSON(http.StatusOK, post); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleDeletePost(c echo.Context) error {
	ctx := c.Request().Context()

	postID, err := parseID(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid post id").WithField("id", c.Param("id"))
	}

	err = s.app.DeletePost(ctx, postID)
	if errors.Is(err, domain.ErrPostNotFound) {
		return apperrors.NotFoundError("post not found").WithField("post_id", postID)
	}
	if err != nil {
		return apperrors.InternalError("failed to delete post", err).WithField("post_id", postID)
	}

	return c.NoContent(http.StatusNoContent)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
