// Package app is the application layer: the only component that references
// multiple domain components. It orchestrates all use cases.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"updoot/internal/domain"
	"updoot/internal/metrics"
	"updoot/internal/platform/retry"
)

// RateLimiter bounds how fast a single user may cast votes.
type RateLimiter interface {
	Allow(ctx context.Context, userID int64) (bool, error)
}

// Service implements domain.AppService.
type Service struct {
	posts   domain.PostRepository
	votes   domain.VoteLedger
	limiter RateLimiter // nil disables rate limiting
	clock   clockwork.Clock

	retryAttempts int
	retryBackoff  time.Duration

	voteMetrics *metrics.VoteMetrics
	feedMetrics *metrics.FeedMetrics

	// feedGroup collapses concurrent identical first-page reads; later
	// pages carry distinct cursors and rarely coincide.
	feedGroup singleflight.Group
}

// NewService creates the application layer service.
// limiter may be nil if rate limiting is not configured.
func NewService(
	posts domain.PostRepository,
	votes domain.VoteLedger,
	limiter RateLimiter,
	clock clockwork.Clock,
	retryAttempts int,
	retryBackoff time.Duration,
	voteMetrics *metrics.VoteMetrics,
	feedMetrics *metrics.FeedMetrics,
) *Service {
	return &Service{
		posts:         posts,
		votes:         votes,
		limiter:       limiter,
		clock:         clock,
		retryAttempts: retryAttempts,
		retryBackoff:  retryBackoff,
		voteMetrics:   voteMetrics,
		feedMetrics:   feedMetrics,
	}
}

// CastVote validates, rate-limits, and runs the vote transaction with a
// bounded retry budget for serialization conflicts. Validation failures are
// rejected before any persistence access.
func (s *Service) CastVote(ctx context.Context, userID, postID int64, value domain.VoteValue) (*domain.VoteResult, error) {
	if !value.Valid() {
		return nil, domain.ErrInvalidVote
	}
	if userID <= 0 {
		return nil, domain.ErrUnauthenticated
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, userID)
		if err != nil {
			// Fail open: a broken limiter must not block voting.
			slog.Warn("Vote rate limiter unavailable", "user_id", userID, "error", err)
		} else if !allowed {
			s.voteMetrics.VotesProcessed.WithLabelValues("rate_limited").Inc()
			return nil, domain.ErrRateLimited
		}
	}

	timer := prometheus.NewTimer(s.voteMetrics.CastDuration)
	defer timer.ObserveDuration()

	policy := retry.Policy{
		MaxAttempts:    s.retryAttempts,
		InitialBackoff: s.retryBackoff,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			s.voteMetrics.ConflictRetries.Inc()
			slog.Warn("Retrying vote after conflict",
				"user_id", userID, "post_id", postID, "attempt", attempt, "backoff", backoff)
		},
	}
	classify := func(err error) retry.Action {
		if errors.Is(err, domain.ErrVoteConflict) {
			return retry.Retry
		}
		return retry.Stop
	}

	result, err := retry.Do(ctx, policy, classify, func() (*domain.VoteResult, error) {
		return s.votes.CastVote(ctx, userID, postID, value)
	})
	if err != nil {
		s.voteMetrics.VotesProcessed.WithLabelValues("error").Inc()
		return nil, err
	}

	s.voteMetrics.VotesProcessed.WithLabelValues("ok").Inc()
	s.voteMetrics.VotesByOutcome.WithLabelValues(voteOutcome(result)).Inc()
	return result, nil
}

func voteOutcome(result *domain.VoteResult) string {
	switch {
	case !result.Applied:
		return "noop"
	case result.Delta == 2 || result.Delta == -2:
		return "flipped"
	default:
		return "created"
	}
}

// ListFeed serves one feed page, clamping the requested limit to
// domain.MaxFeedPageSize.
func (s *Service) ListFeed(ctx context.Context, limit int, cursor *domain.FeedCursor) (*domain.FeedPage, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidLimit
	}
	if limit > domain.MaxFeedPageSize {
		limit = domain.MaxFeedPageSize
	}

	s.feedMetrics.RequestsTotal.Inc()
	timer := prometheus.NewTimer(s.feedMetrics.QueryDuration)
	defer timer.ObserveDuration()

	var (
		page *domain.FeedPage
		err  error
	)
	if cursor == nil {
		// The flight is shared between collapsed callers, so it must not
		// die with whichever request happened to start it.
		flightCtx := context.WithoutCancel(ctx)
		var v any
		v, err, _ = s.feedGroup.Do(fmt.Sprintf("first:%d", limit), func() (any, error) {
			return s.posts.ListFeed(flightCtx, limit, nil)
		})
		if err == nil {
			page = v.(*domain.FeedPage)
		}
	} else {
		page, err = s.posts.ListFeed(ctx, limit, cursor)
	}
	if err != nil {
		return nil, err
	}

	s.feedMetrics.PageSize.Observe(float64(len(page.Posts)))
	return page, nil
}

func (s *Service) GetPost(ctx context.Context, postID int64) (*domain.Post, error) {
	return s.posts.GetByID(ctx, postID)
}

func (s *Service) CreatePost(ctx context.Context, creatorID int64, title, body string) (*domain.Post, error) {
	if creatorID <= 0 {
		return nil, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(title) == "" {
		return nil, domain.ErrEmptyTitle
	}
	return s.posts.Create(ctx, creatorID, title, body, s.clock.Now().UTC())
}

func (s *Service) UpdatePost(ctx context.Context, postID int64, title, body *string) (*domain.Post, error) {
	if title != nil && strings.TrimSpace(*title) == "" {
		return nil, domain.ErrEmptyTitle
	}
	return s.posts.Update(ctx, postID, title, body)
}

func (s *Service) DeletePost(ctx context.Context, postID int64) error {
	return s.posts.Delete(ctx, postID)
}
