package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"updoot/internal/domain"
)

// VoteRepo implements domain.VoteLedger backed by PostgreSQL.
//
// CastVote takes a row lock on the post before touching the ledger, so two
// concurrent casts on the same post serialize while casts on different posts
// run in parallel. The lock wait is bounded by lockTimeout; a transaction
// that loses a race (lock timeout, deadlock, serialization failure) surfaces
// as domain.ErrVoteConflict for the caller's retry budget.
type VoteRepo struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

func NewVoteRepo(pool *pgxpool.Pool, lockTimeout time.Duration) *VoteRepo {
	return &VoteRepo{pool: pool, lockTimeout: lockTimeout}
}

func (r *VoteRepo) CastVote(ctx context.Context, userID, postID int64, value domain.VoteValue) (*domain.VoteResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin vote transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	// lock_timeout is LOCAL to this transaction; SET LOCAL takes no bind
	// parameters, so the duration is formatted into the statement.
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
		return nil, fmt.Errorf("failed to set lock timeout: %w", err)
	}

	// Lock the aggregate row for the duration of the transaction.
	var points int64
	err = tx.QueryRow(ctx, `SELECT points FROM posts WHERE id = $1 FOR UPDATE`, postID).Scan(&points)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, classifyVoteError("failed to lock post row", err)
	}

	var current int16
	err = tx.QueryRow(ctx,
		`SELECT value FROM votes WHERE post_id = $1 AND user_id = $2`,
		postID, userID,
	).Scan(&current)

	var delta int64
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// First vote by this user on this post.
		delta = int64(value)
		_, err = tx.Exec(ctx,
			`INSERT INTO votes (post_id, user_id, value) VALUES ($1, $2, $3)`,
			postID, userID, int16(value),
		)
		if err != nil {
			return nil, classifyVoteError("failed to insert vote", err)
		}

	case err != nil:
		return nil, classifyVoteError("failed to read existing vote", err)

	case domain.VoteValue(current) == value:
		// Repeat identical vote: succeed without writing anything.
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit vote transaction: %w", err)
		}
		return &domain.VoteResult{Applied: false, Delta: 0, Points: points}, nil

	default:
		// Opposing vote flips the ledger row; the swing is twice the unit.
		delta = 2 * int64(value)
		_, err = tx.Exec(ctx,
			`UPDATE votes SET value = $3, updated_at = now() WHERE post_id = $1 AND user_id = $2`,
			postID, userID, int16(value),
		)
		if err != nil {
			return nil, classifyVoteError("failed to flip vote", err)
		}
	}

	newPoints, err := applyDelta(ctx, tx, postID, delta)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, classifyVoteError("failed to commit vote transaction", err)
	}

	return &domain.VoteResult{Applied: true, Delta: delta, Points: newPoints}, nil
}

// applyDelta applies a relative increment to the post's score inside tx.
// The increment is expressed against the stored value, never against a
// previously read total.
func applyDelta(ctx context.Context, tx pgx.Tx, postID, delta int64) (int64, error) {
	var points int64
	err := tx.QueryRow(ctx,
		`UPDATE posts SET points = points + $2, updated_at = now() WHERE id = $1 RETURNING points`,
		postID, delta,
	).Scan(&points)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrPostNotFound
	}
	if err != nil {
		return 0, classifyVoteError("failed to apply score delta", err)
	}
	return points, nil
}

func (r *VoteRepo) GetVote(ctx context.Context, userID, postID int64) (*domain.Vote, error) {
	var vote domain.Vote
	var value int16
	err := r.pool.QueryRow(ctx,
		`SELECT post_id, user_id, value, created_at, updated_at
		 FROM votes WHERE post_id = $1 AND user_id = $2`,
		postID, userID,
	).Scan(&vote.PostID, &vote.UserID, &value, &vote.CreatedAt, &vote.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	vote.Value = domain.VoteValue(value)
	return &vote, nil
}

// Postgres error codes treated as transient vote conflicts.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// classifyVoteError maps transient serialization failures to
// domain.ErrVoteConflict and foreign key violations on user_id to
// domain.ErrUserNotFound; everything else stays a storage failure.
func classifyVoteError(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return fmt.Errorf("%w: %s: %v", domain.ErrVoteConflict, msg, err)
		case pgForeignKeyViolation:
			if pgErr.ConstraintName == "votes_user_id_fkey" {
				return domain.ErrUserNotFound
			}
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
