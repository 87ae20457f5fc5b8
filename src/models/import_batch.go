package models

import "time"

type ImportBatch struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
}

// ImportSummary is a batch with its rows counted by status.
type ImportSummary struct {
	ImportBatch
	Pending int `json:"pending"`
	Added   int `json:"added"`
	Ignored int `json:"ignored"`
}
