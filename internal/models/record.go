package models

import "time"

// Record holds the identity and bookkeeping fields shared by every stored kind.
type Record struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Meta returns the embedded record so generic stores can reach it.
func (r *Record) Meta() *Record {
	return r
}
