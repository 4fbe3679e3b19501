package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"grocery/internal/domain/item"
)

const itemColumns = `id, name, checked_off, position, checked_off_at, created_at`

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *tracedRow
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type ItemRepository struct {
	db *DB

	// afterDelete runs between the delete and the reindex of
	// DeleteAndReindex. Tests use it to fail the transaction midway.
	afterDelete func() error
}

func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) List(ctx context.Context) ([]*item.Item, error) {
	return listItems(ctx, r.db)
}

func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	it, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, item.ErrItemNotFound
	}
	if err != nil {
		return nil, storageError("failed to get item", err)
	}

	return it, nil
}

// Create inserts the item at params.Position (or at the end when nil).
// Items at or after that position move down by one, so an interior insert
// keeps the positions dense.
func (r *ItemRepository) Create(ctx context.Context, params item.CreateParams) (*item.Item, error) {
	var created *item.Item

	err := r.withTx(ctx, func(tx *Tx) error {
		count, err := countItems(ctx, tx)
		if err != nil {
			return err
		}

		position := count
		if params.Position != nil {
			position = *params.Position
		}
		if position < 0 || position > count {
			return &item.ValidationError{
				Field:   "position",
				Message: fmt.Sprintf("position must be between 0 and %d", count),
			}
		}

		if position < count {
			_, err := tx.ExecContext(ctx,
				`UPDATE items SET position = position + 1 WHERE position >= $1`,
				position,
			)
			if err != nil {
				return storageError("failed to make room for item", err)
			}
		}

		createdAt := params.CreatedAt.UTC()
		checkedOffAt := utcPtr(params.CheckedOffAt)

		var id int64
		err = tx.QueryRowContext(ctx, `
			INSERT INTO items (name, checked_off, position, checked_off_at, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, params.Name, params.CheckedOff, position, nullableTime(checkedOffAt), createdAt).Scan(&id)
		if err != nil {
			return storageError("failed to create item", err)
		}

		created = &item.Item{
			ID:           id,
			Name:         params.Name,
			CheckedOff:   params.CheckedOff,
			Position:     position,
			CheckedOffAt: checkedOffAt,
			CreatedAt:    createdAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// Replace overwrites name, checked state, position and checked_off_at.
// created_at is never touched. A nil position keeps the item's current slot,
// read inside the same transaction. A position change moves the items
// between the old and the new slot by one so the list stays dense.
func (r *ItemRepository) Replace(ctx context.Context, id int64, params item.ReplaceParams) error {
	return r.withTx(ctx, func(tx *Tx) error {
		current, err := positionOf(ctx, tx, id)
		if err != nil {
			return err
		}

		target := current
		if params.Position != nil {
			target = *params.Position
		}

		count, err := countItems(ctx, tx)
		if err != nil {
			return err
		}
		if target < 0 || target >= count {
			return &item.ValidationError{
				Field:   "position",
				Message: fmt.Sprintf("position must be between 0 and %d", count-1),
			}
		}

		switch {
		case target > current:
			_, err = tx.ExecContext(ctx,
				`UPDATE items SET position = position - 1 WHERE position > $1 AND position <= $2`,
				current, target,
			)
		case target < current:
			_, err = tx.ExecContext(ctx,
				`UPDATE items SET position = position + 1 WHERE position >= $1 AND position < $2`,
				target, current,
			)
		}
		if err != nil {
			return storageError("failed to move item", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE items
			SET name = $1, checked_off = $2, position = $3, checked_off_at = $4
			WHERE id = $5
		`, params.Name, params.CheckedOff, target, nullableTime(utcPtr(params.CheckedOffAt)), id)
		if err != nil {
			return storageError("failed to update item", err)
		}

		return nil
	})
}

// DeleteAndReindex deletes the item and decrements the position of every
// item after it. Both statements commit together or not at all.
func (r *ItemRepository) DeleteAndReindex(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(tx *Tx) error {
		position, err := positionOf(ctx, tx, id)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id); err != nil {
			return storageError("failed to delete item", err)
		}

		if r.afterDelete != nil {
			if err := r.afterDelete(); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE items SET position = position - 1 WHERE position > $1`,
			position,
		)
		if err != nil {
			return storageError("failed to reindex items", err)
		}

		return nil
	})
}

// DeleteCheckedBefore bulk-deletes items checked off before cutoff and
// compacts the remaining positions in the same transaction.
func (r *ItemRepository) DeleteCheckedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64

	err := r.withTx(ctx, func(tx *Tx) error {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM items WHERE checked_off_at IS NOT NULL AND checked_off_at < $1`,
			cutoff.UTC(),
		)
		if err != nil {
			return storageError("failed to delete expired items", err)
		}

		removed, err = result.RowsAffected()
		if err != nil {
			return storageError("failed to get affected rows", err)
		}
		if removed == 0 {
			return nil
		}

		_, err = compact(ctx, tx)
		return err
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}

// Reindex renumbers all positions to 0..N-1 and returns how many rows moved.
func (r *ItemRepository) Reindex(ctx context.Context) (int64, error) {
	var moved int64

	err := r.withTx(ctx, func(tx *Tx) error {
		var err error
		moved, err = compact(ctx, tx)
		return err
	})
	if err != nil {
		return 0, err
	}

	return moved, nil
}

// withTx runs fn inside a transaction holding the items lock. The
// transaction is rolled back on every path that does not commit.
func (r *ItemRepository) withTx(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if lock := r.db.dialect.lockItems; lock != "" {
		if _, err := tx.ExecContext(ctx, lock); err != nil {
			return storageError("failed to lock items", err)
		}
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return storageError("failed to commit transaction", err)
	}

	return nil
}

// compact assigns consecutive positions in current order, ties broken by id.
func compact(ctx context.Context, tx *Tx) (int64, error) {
	items, err := listItems(ctx, tx)
	if err != nil {
		return 0, err
	}

	var moved int64
	for i, it := range items {
		if it.Position == i {
			continue
		}
		_, err := tx.ExecContext(ctx, `UPDATE items SET position = $1 WHERE id = $2`, i, it.ID)
		if err != nil {
			return moved, storageError("failed to compact positions", err)
		}
		moved++
	}

	return moved, nil
}

func listItems(ctx context.Context, q querier) ([]*item.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY position ASC, id ASC`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, storageError("failed to list items", err)
	}
	defer rows.Close()

	items := make([]*item.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, storageError("failed to scan item", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("error iterating items", err)
	}

	return items, nil
}

func positionOf(ctx context.Context, q querier, id int64) (int, error) {
	var position int
	err := q.QueryRowContext(ctx, `SELECT position FROM items WHERE id = $1`, id).Scan(&position)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, item.ErrItemNotFound
	}
	if err != nil {
		return 0, storageError("failed to read item position", err)
	}
	return position, nil
}

func countItems(ctx context.Context, q querier) (int, error) {
	var count int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return 0, storageError("failed to count items", err)
	}
	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*item.Item, error) {
	var it item.Item
	var checkedOffAt sql.NullTime

	err := s.Scan(&it.ID, &it.Name, &it.CheckedOff, &it.Position, &checkedOffAt, &it.CreatedAt)
	if err != nil {
		return nil, err
	}

	it.CreatedAt = it.CreatedAt.UTC()
	if checkedOffAt.Valid {
		t := checkedOffAt.Time.UTC()
		it.CheckedOffAt = &t
	}

	return &it, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// nullableTime converts an optional timestamp into a plain driver value.
func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
