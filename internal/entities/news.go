package entities

import "time"

// NewsItem is a headline; Link is its identity.
type NewsItem struct {
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}
