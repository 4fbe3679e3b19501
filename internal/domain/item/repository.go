package item

import (
	"context"
	"time"
)

// Repository defines the interface for item data access.
// Implementations own position consistency: every method that changes
// positions runs in a single transaction and leaves them dense.
type Repository interface {
	// List returns all items ordered by position
	List(ctx context.Context) ([]*Item, error)

	// GetByID returns ErrItemNotFound when the item does not exist
	GetByID(ctx context.Context, id int64) (*Item, error)

	// Create inserts the item at params.Position, shifting later items down
	Create(ctx context.Context, params CreateParams) (*Item, error)

	// Replace overwrites the mutable fields of an existing item
	Replace(ctx context.Context, id int64, params ReplaceParams) error

	// DeleteAndReindex removes an item and closes the gap it leaves
	DeleteAndReindex(ctx context.Context, id int64) error

	// DeleteCheckedBefore removes items checked off before cutoff and compacts positions
	DeleteCheckedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Reindex renumbers positions to 0..N-1 keeping their relative order
	Reindex(ctx context.Context) (int64, error)
}
