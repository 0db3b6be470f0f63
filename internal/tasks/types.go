package tasks

import (
	"time"

	"github.com/google/uuid"
)

// Task is one entry on the board. Position is a dense ordering index
// within the whole list; reordering shifts the positions of the tasks
// between the old and new slot.
type Task struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes"`
	Done      bool      `json:"done"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateParams carries the optional fields of an update request; nil
// means "leave unchanged".
type UpdateParams struct {
	Title *string `json:"title,omitempty"`
	Notes *string `json:"notes,omitempty"`
	Done  *bool   `json:"done,omitempty"`
}

// Filter selects which tasks a list operation returns
type Filter string

const (
	FilterAll  Filter = "all"
	FilterOpen Filter = "open"
	FilterDone Filter = "done"
)

// Valid reports whether f is a known filter
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterOpen, FilterDone:
		return true
	}
	return false
}
