package domain

import "time"

// ItemKind identifies what a RawItem was fetched from.
type ItemKind string

const (
	// KindVideo is a video description item.
	KindVideo ItemKind = "video"
	// KindComment is a top-level comment item.
	KindComment ItemKind = "comment"
)

// RawItem is an unclassified video or comment record fetched from the
// data provider. Immutable once fetched.
type RawItem struct {
	ID          string     `json:"id"`
	Kind        ItemKind   `json:"kind"`
	Text        string     `json:"text"`
	Title       string     `json:"title,omitempty"`
	AuthorRef   string     `json:"author_ref,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Page is one page of items from the data provider.
type Page struct {
	Items         []RawItem `json:"items"`
	NextPageToken string    `json:"next_page_token,omitempty"`
}
