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

const pgForeignKeyViolation = "23503"

// postColumns must match the Scan order in scanPost.
const postColumns = `p.id, p.title, p.body, p.points, p.creator_id, p.created_at, p.updated_at,
	u.id, u.username, u.email, u.created_at, u.updated_at`

// PostRepo implements domain.PostRepository backed by PostgreSQL. Reads join
// the creator for the feed's summary view; writes never touch points, which
// belongs to the vote ledger.
type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func scanPost(row pgx.Row) (*domain.Post, error) {
	var post domain.Post
	var creator domain.UserSummary
	err := row.Scan(
		&post.ID, &post.Title, &post.Body, &post.Points, &post.CreatorID,
		&post.CreatedAt, &post.UpdatedAt,
		&creator.ID, &creator.Username, &creator.Email,
		&creator.CreatedAt, &creator.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	post.Creator = &creator
	return &post, nil
}

func (r *PostRepo) Create(ctx context.Context, creatorID int64, title, body string, createdAt time.Time) (*domain.Post, error) {
	var post domain.Post
	err := r.pool.QueryRow(ctx, `
		INSERT INTO posts (title, body, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id, title, body, points, creator_id, created_at, updated_at
	`, title, body, creatorID, createdAt).Scan(
		&post.ID, &post.Title, &post.Body, &post.Points, &post.CreatorID,
		&post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return &post, nil
}

func (r *PostRepo) GetByID(ctx context.Context, postID int64) (*domain.Post, error) {
	post, err := scanPost(r.pool.QueryRow(ctx, `
		SELECT `+postColumns+`
		FROM posts p
		JOIN users u ON u.id = p.creator_id
		WHERE p.id = $1
	`, postID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// Update changes title and/or body; nil fields are left untouched. A call
// with nothing to change degrades to a read so updated_at stays honest.
func (r *PostRepo) Update(ctx context.Context, postID int64, title, body *string) (*domain.Post, error) {
	if title == nil && body == nil {
		return r.GetByID(ctx, postID)
	}

	post, err := scanPost(r.pool.QueryRow(ctx, `
		UPDATE posts p
		SET title = COALESCE($2::text, title), body = COALESCE($3::text, body), updated_at = now()
		FROM users u
		WHERE p.id = $1 AND u.id = p.creator_id
		RETURNING `+postColumns+`
	`, postID, title, body))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return post, nil
}

func (r *PostRepo) Delete(ctx context.Context, postID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

// ListFeed serves one reverse-chronological page bounded by the keyset
// cursor. It fetches limit+1 rows to decide HasMore without a second query.
// The caller is responsible for clamping limit.
func (r *PostRepo) ListFeed(ctx context.Context, limit int, cursor *domain.FeedCursor) (*domain.FeedPage, error) {
	if limit < 1 {
		return nil, domain.ErrInvalidLimit
	}
	fetchLimit := limit + 1

	var (
		rows pgx.Rows
		err  error
	)
	baseQuery := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.creator_id
		%s
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT %s`

	switch {
	case cursor == nil:
		rows, err = r.pool.Query(ctx, fmt.Sprintf(baseQuery, "", "$1"), fetchLimit)
	case cursor.ID > 0:
		rows, err = r.pool.Query(ctx,
			fmt.Sprintf(baseQuery, "WHERE (p.created_at, p.id) < ($1, $2)", "$3"),
			cursor.CreatedAt, cursor.ID, fetchLimit)
	default:
		// Timestamp-only cursor for callers that do not hold a tie-break id.
		rows, err = r.pool.Query(ctx,
			fmt.Sprintf(baseQuery, "WHERE p.created_at < $1", "$2"),
			cursor.CreatedAt, fetchLimit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query feed: %w", err)
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0, fetchLimit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read feed rows: %w", err)
	}

	page := &domain.FeedPage{Posts: posts}
	if len(posts) > limit {
		page.Posts = posts[:limit]
		page.HasMore = true
		last := page.Posts[limit-1]
		page.NextCursor = &domain.FeedCursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return page, nil
}
