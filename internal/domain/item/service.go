package item

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	itemMeter      = otel.Meter("grocery/item")
	itemsSwept, _  = itemMeter.Int64Counter("items.swept", metric.WithDescription("Checked-off items removed by the expiry sweep"))
	sweepFailed, _ = itemMeter.Int64Counter("items.sweep.failed", metric.WithDescription("Expiry sweeps that returned an error"))
)

// Service contains the business logic for grocery items
type Service struct {
	repo      Repository
	retention Retention
	now       func() time.Time
}

// NewService creates a new item service
func NewService(repo Repository, retention Retention) *Service {
	return &Service{
		repo:      repo,
		retention: retention,
		now:       time.Now,
	}
}

// List sweeps expired items, then returns the remaining ones in position order.
// A failed sweep fails the whole read.
func (s *Service) List(ctx context.Context) ([]*Item, error) {
	if err := s.Sweep(ctx); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// Get returns a single item or ErrItemNotFound
func (s *Service) Get(ctx context.Context, id int64) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates params and stores a new item. checked_off_at starts out
// null even for an item created checked; only Replace stamps it.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Item, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	params.CreatedAt = s.timestamp()
	params.CheckedOffAt = nil

	return s.repo.Create(ctx, params)
}

// Replace overwrites an existing item. checked_off_at is stamped on the
// unchecked->checked transition, kept while the item stays checked and
// cleared once it is unchecked.
func (s *Service) Replace(ctx context.Context, id int64, params ReplaceParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	switch {
	case !params.CheckedOff:
		params.CheckedOffAt = nil
	case !current.CheckedOff || current.CheckedOffAt == nil:
		now := s.timestamp()
		params.CheckedOffAt = &now
	default:
		params.CheckedOffAt = current.CheckedOffAt
	}

	return s.repo.Replace(ctx, id, params)
}

// Delete removes an item and shifts the items after it up by one
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteAndReindex(ctx, id)
}

// Sweep removes every item checked off before the retention cutoff
func (s *Service) Sweep(ctx context.Context) error {
	_, err := s.SweepExpired(ctx)
	return err
}

// SweepExpired is Sweep that also reports how many items were removed
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	cutoff := s.retention.Cutoff(s.now())

	removed, err := s.repo.DeleteCheckedBefore(ctx, cutoff)
	if err != nil {
		sweepFailed.Add(ctx, 1)
		return 0, fmt.Errorf("failed to sweep expired items: %w", err)
	}

	if removed > 0 {
		itemsSwept.Add(ctx, removed)
		log.Printf("Swept %d items checked off before %s", removed, cutoff.Format(time.RFC3339))
	}
	return removed, nil
}

// Reindex repairs position gaps left by anything outside the service
func (s *Service) Reindex(ctx context.Context) (int64, error) {
	return s.repo.Reindex(ctx)
}

// timestamp returns the current time in the precision the stores keep
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
