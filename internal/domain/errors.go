package domain

import "errors"

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidVote     = errors.New("vote value must be -1 or +1")
	ErrEmptyTitle      = errors.New("post title must not be empty")
	ErrInvalidLimit    = errors.New("page limit must be positive")
	ErrUnauthenticated = errors.New("no authenticated user")
	ErrVoteConflict    = errors.New("concurrent vote transaction conflict")
	ErrRateLimited     = errors.New("vote rate limit exceeded")
)
