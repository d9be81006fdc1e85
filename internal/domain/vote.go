package domain

import (
	"context"
	"time"
)

// VoteValue is the signed weight of a single vote. There is no zero state:
// "no vote" is the absence of a ledger row.
type VoteValue int16

const (
	Upvote   VoteValue = 1
	Downvote VoteValue = -1
)

// Valid reports whether v is one of the two representable vote values.
func (v VoteValue) Valid() bool {
	return v == Upvote || v == Downvote
}

// Vote is one ledger row. At most one exists per (PostID, UserID); a later
// opposing vote flips Value in place, a repeat identical vote changes nothing.
type Vote struct {
	PostID    int64     `db:"post_id"`
	UserID    int64     `db:"user_id"`
	Value     VoteValue `db:"value"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// VoteResult describes the outcome of a committed cast.
type VoteResult struct {
	// Applied is false when the vote was a repeat of the existing one and
	// the transaction wrote nothing.
	Applied bool
	// Delta is the change applied to the post score: ±1 on a first vote,
	// ±2 on a flip, 0 on a repeat.
	Delta int64
	// Points is the post's score after the cast.
	Points int64
}

// VoteLedger records votes and keeps the per-post score in sync with them.
// CastVote commits the ledger row and the score change as a single atomic
// unit; implementations must serialize concurrent casts on the same post and
// return ErrVoteConflict for transient serialization failures so callers can
// retry.
type VoteLedger interface {
	CastVote(ctx context.Context, userID, postID int64, value VoteValue) (*VoteResult, error)
	GetVote(ctx context.Context, userID, postID int64) (*Vote, error)
}
