// Package capacity computes table availability for booking dates.
package capacity

import (
	"context"
	"time"

	"meepleden/internal/models"

	"github.com/rs/zerolog"
)

const (
	// DefaultDailyTables is the table limit used when no per-date
	// override exists.
	DefaultDailyTables = 4

	// PeoplePerTable converts a party size into whole tables.
	PeoplePerTable = 4
)

// Store provides the persisted state the engine reads. BookedTables
// must only count capacity-consuming statuses (confirmed, checked_in).
type Store interface {
	BookedTables(ctx context.Context, date time.Time) (int, error)
	DayConfig(ctx context.Context, date time.Time) (*models.DayConfig, error)
}

// Engine answers availability queries for calendar dates. It is a
// read-only view; write-time enforcement happens in the database
// transaction that inserts the booking.
type Engine struct {
	store  Store
	logger *zerolog.Logger
}

func NewEngine(store Store, logger *zerolog.Logger) *Engine {
	return &Engine{store: store, logger: logger}
}

// TablesFor returns the number of tables a party occupies, rounded up.
func TablesFor(partySize int) int {
	if partySize <= 0 {
		return 0
	}
	return (partySize + PeoplePerTable - 1) / PeoplePerTable
}

// Availability reports the committed and remaining capacity for a date.
// A failing day-config lookup falls back to the default limit so the
// booking flow degrades to defaults instead of refusing everything.
func (e *Engine) Availability(ctx context.Context, date time.Time) (*models.Availability, error) {
	limit := DefaultDailyTables
	cfg, err := e.store.DayConfig(ctx, date)
	if err != nil {
		e.logger.Warn().Err(err).Str("date", date.Format("2006-01-02")).
			Msg("day config lookup failed, using default limit")
	} else if cfg != nil && cfg.TableLimit > 0 {
		limit = cfg.TableLimit
	}

	booked, err := e.store.BookedTables(ctx, date)
	if err != nil {
		return nil, err
	}

	available := limit - booked
	if available < 0 {
		available = 0
	}

	return &models.Availability{
		Date:      date,
		Limit:     limit,
		Booked:    booked,
		Available: available,
	}, nil
}

// IsDateBookable reports whether the date accepts bookings at all.
// A disabled date blocks everything regardless of remaining capacity.
func (e *Engine) IsDateBookable(ctx context.Context, date time.Time) (bool, error) {
	cfg, err := e.store.DayConfig(ctx, date)
	if err != nil {
		// Fail open, same policy as Availability.
		e.logger.Warn().Err(err).Str("date", date.Format("2006-01-02")).
			Msg("day config lookup failed, treating date as bookable")
		return true, nil
	}
	if cfg != nil && cfg.Disabled {
		return false, nil
	}
	return true, nil
}
