package model

import "time"

// Note is a transcribed or typed voice note. Tags are stored as a JSON
// array in a single text column; OrganizedContent holds the optional
// AI-restructured variant of the transcript.
type Note struct {
	ID               string    `json:"id"`
	UserID           string    `json:"-"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	OrganizedContent *string   `json:"organizedContent,omitempty"`
	Tags             []string  `json:"tags"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
