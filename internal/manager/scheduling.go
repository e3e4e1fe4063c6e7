package manager

import (
	"context"
	"database/sql"

	"github.com/conorfennell/knolcard/internal/domain"
	"github.com/conorfennell/knolcard/internal/duration"
	"github.com/conorfennell/knolcard/internal/knol"
	"github.com/conorfennell/knolcard/internal/schedule"
	"github.com/conorfennell/knolcard/internal/storage"
)

// RecalculateDelay sets a new delay on a card, or re-rolls the current one
// when force is set. A nil delay keeps the stored one. The schedule is only
// rewritten (and versioned) when force is set or the delay changes.
func (m *Manager) RecalculateDelay(ctx context.Context, cardID int64, delay *string, force bool) (domain.Projection, error) {
	var requested string
	if delay != nil {
		requested = knol.Normalize(*delay)
		if requested == "" {
			return domain.Projection{}, domain.Validation(domain.CodeEmptyDelay, "delay is blank")
		}
		if _, err := duration.Parse(requested); err != nil {
			return domain.Projection{}, err
		}
	}

	var p domain.Projection
	err := m.run(ctx, "recalculateDelay", cardID, func(ctx context.Context, tx *sql.Tx, now int64) error {
		current, err := loadProjection(ctx, tx, cardID)
		if err != nil {
			return err
		}
		stored := domain.Schedule{
			CardID:             current.CardID,
			UpdatedAt:          current.UpdatedAt,
			Delay:              current.Delay,
			RandomFactor:       current.RandomFactor,
			NextAccessInMillis: current.NextAccessInMillis,
			NextAccessAt:       current.NextAccessAt,
		}

		resolved := stored.Delay
		if delay != nil {
			resolved = requested
		}
		if knol.IsBlank(resolved) {
			return domain.Validation(domain.CodeEmptyDelay, "delay is blank")
		}
		if !schedule.NeedsRecalculation(stored, resolved, force) {
			p = current
			return nil
		}

		next, err := schedule.Recalculate(stored, resolved, now, m.rnd)
		if err != nil {
			return err
		}
		err = storage.ScheduleTable.Update(ctx, tx, now, cardID,
			storage.Assignment{Column: "updatedAt", Value: next.UpdatedAt},
			storage.Assignment{Column: "delay", Value: next.Delay},
			storage.Assignment{Column: "randomFactor", Value: next.RandomFactor},
			storage.Assignment{Column: "nextAccessInMillis", Value: next.NextAccessInMillis},
			storage.Assignment{Column: "nextAccessAt", Value: next.NextAccessAt},
		)
		if err != nil {
			return err
		}
		p, err = loadProjection(ctx, tx, cardID)
		return err
	})
	return p, err
}

// NextCard picks the most overdue card, breaking ties at random. When no card
// is due it reports how long until the earliest one is.
func (m *Manager) NextCard(ctx context.Context) (domain.NextCard, error) {
	var next domain.NextCard
	err := m.run(ctx, "getNextCardToRepeat", 0, func(ctx context.Context, tx *sql.Tx, now int64) error {
		candidates, err := storage.DueCandidates(ctx, tx, now, m.dueScanLimit)
		if err != nil {
			return err
		}

		if chosen, ok := schedule.Pick(candidates, now, m.rnd); ok {
			id, cardType := chosen.Schedule.CardID, chosen.CardType
			next = domain.NextCard{
				CardID:         &id,
				CardType:       &cardType,
				RemainingCount: len(candidates),
				IsCountExact:   len(candidates) < m.dueScanLimit,
			}
			return nil
		}

		next = domain.NextCard{IsCountExact: true}
		at, ok, err := storage.EarliestNextAccess(ctx, tx)
		if err != nil {
			return err
		}
		if ok {
			next.WaitDuration = duration.Format(at - now)
		}
		return nil
	})
	return next, err
}
