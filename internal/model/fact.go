package model

import "time"

// Fact is one entry in the content corpus the search router ranks over.
// Facts come from announcements, knowledge uploads, and the async
// chat-import job.
type Fact struct {
	ID          int64
	Title       string
	Category    string
	Subcategory string
	Content     string
	TimeRef     string // free-form time reference, e.g. "friday 7pm"
	Date        *time.Time
	SpaceID     *int64
	Embedding   []float64 // nil when no semantic signal was captured
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ContentResult is one ranked snippet returned by the search router.
type ContentResult struct {
	Fact   Fact
	Score  float64
	Source string // "vector" | "keyword"
}
