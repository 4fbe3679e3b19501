package item

import (
	"fmt"
	"sort"
	"time"
)

const maxNameLength = 255

// Item represents a single entry of the grocery list
type Item struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	CheckedOff   bool       `json:"checked_off"`
	Position     int        `json:"position"`
	CheckedOffAt *time.Time `json:"checked_off_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// CreateParams contains parameters for creating a new item.
// A nil Position appends the item to the end of the list.
type CreateParams struct {
	Name         string
	CheckedOff   bool
	Position     *int
	CheckedOffAt *time.Time
	CreatedAt    time.Time
}

func (p *CreateParams) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if len(p.Name) > maxNameLength {
		return &ValidationError{Field: "name", Message: "name must be 255 characters or less"}
	}
	if p.Position != nil && *p.Position < 0 {
		return &ValidationError{Field: "position", Message: "position must be non-negative"}
	}
	return nil
}

// ReplaceParams carries the full mutable record of an existing item.
// The store writes CheckedOffAt as given; stamping it is the caller's job.
// A nil Position keeps the item where it is.
type ReplaceParams struct {
	Name         string
	CheckedOff   bool
	Position     *int
	CheckedOffAt *time.Time
}

func (p *ReplaceParams) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Message: "name cannot be empty"}
	}
	if len(p.Name) > maxNameLength {
		return &ValidationError{Field: "name", Message: "name must be 255 characters or less"}
	}
	if p.Position != nil && *p.Position < 0 {
		return &ValidationError{Field: "position", Message: "position must be non-negative"}
	}
	return nil
}

// CheckDense reports whether the positions of items are exactly 0..len(items)-1.
// The returned error names the first gap or duplicate found.
func CheckDense(items []*Item) error {
	positions := make([]int, 0, len(items))
	for _, it := range items {
		positions = append(positions, it.Position)
	}
	sort.Ints(positions)

	for i, pos := range positions {
		if pos == i {
			continue
		}
		if i > 0 && pos == positions[i-1] {
			return fmt.Errorf("duplicate position %d", pos)
		}
		return fmt.Errorf("gap at position %d (found %d)", i, pos)
	}
	return nil
}
