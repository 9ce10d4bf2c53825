package domain

import "time"

const ActionLegalResearch = "legal-research"

type SearchEntry struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	UserID    string    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

type TopicCount struct {
	Topic string `json:"topic"`
	Count int64  `json:"count"`
}
