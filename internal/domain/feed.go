package domain

import "time"

// MaxFeedPageSize caps the number of posts returned in one feed page,
// regardless of what the caller asks for.
const MaxFeedPageSize = 50

// FeedCursor is a keyset pagination boundary: the (created_at, id) of the
// last post the caller has seen. ID breaks ties between posts sharing a
// timestamp; a zero ID degrades to a pure timestamp boundary.
type FeedCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        int64     `json:"id,omitempty"`
}

// FeedPage is one reverse-chronological page of posts.
type FeedPage struct {
	Posts   []*Post `json:"posts"`
	HasMore bool    `json:"hasMore"`
	// NextCursor bounds the following page; nil when HasMore is false.
	NextCursor *FeedCursor `json:"nextCursor,omitempty"`
}
