package manager

import (
	"context"
	"database/sql"

	"github.com/conorfennell/knolcard/internal/domain"
	"github.com/conorfennell/knolcard/internal/knol"
	"github.com/conorfennell/knolcard/internal/schedule"
	"github.com/conorfennell/knolcard/internal/storage"
)

// CreateCard stores a new card, due immediately, with the given trimmed texts.
func (m *Manager) CreateCard(ctx context.Context, front, back string) (domain.Projection, error) {
	front, back = knol.Normalize(front), knol.Normalize(back)
	if front == "" {
		return domain.Projection{}, domain.Validation(domain.CodeEmptyFrontText, "front text is blank")
	}
	if back == "" {
		return domain.Projection{}, domain.Validation(domain.CodeEmptyBackText, "back text is blank")
	}

	var p domain.Projection
	err := m.run(ctx, "createCard", 0, func(ctx context.Context, tx *sql.Tx, now int64) error {
		id, err := storage.InsertCard(ctx, tx, domain.CardTypeBasic, now)
		if err != nil {
			return err
		}
		if err := storage.InsertSchedule(ctx, tx, schedule.Initial(id, now)); err != nil {
			return err
		}
		if err := storage.InsertContent(ctx, tx, domain.Content{CardID: id, TextFront: front, TextBack: back}); err != nil {
			return err
		}
		p, err = loadProjection(ctx, tx, id)
		return err
	})
	return p, err
}

// UpdateContent replaces the front and/or back text of a card. A nil value
// keeps the stored text. When nothing changes after trimming, no version row
// is written.
func (m *Manager) UpdateContent(ctx context.Context, cardID int64, front, back *string) (domain.Projection, error) {
	if front != nil && knol.IsBlank(*front) {
		return domain.Projection{}, domain.Validation(domain.CodeEmptyFrontText, "front text is blank")
	}
	if back != nil && knol.IsBlank(*back) {
		return domain.Projection{}, domain.Validation(domain.CodeEmptyBackText, "back text is blank")
	}

	var p domain.Projection
	err := m.run(ctx, "updateContent", cardID, func(ctx context.Context, tx *sql.Tx, now int64) error {
		current, err := loadProjection(ctx, tx, cardID)
		if err != nil {
			return err
		}

		newFront := knol.Resolve(current.TextFront, front)
		newBack := knol.Resolve(current.TextBack, back)
		if knol.Equal(newFront, current.TextFront) && knol.Equal(newBack, current.TextBack) {
			p = current
			return nil
		}

		err = storage.ContentTable.Update(ctx, tx, now, cardID,
			storage.Assignment{Column: "textFront", Value: newFront},
			storage.Assignment{Column: "textBack", Value: newBack},
		)
		if err != nil {
			return err
		}
		p, err = loadProjection(ctx, tx, cardID)
		return err
	})
	return p, err
}

// DeleteCard removes a card with its content and schedule, versioning both.
// Validation log rows of the card are kept.
func (m *Manager) DeleteCard(ctx context.Context, cardID int64) (bool, error) {
	err := m.run(ctx, "deleteCard", cardID, func(ctx context.Context, tx *sql.Tx, now int64) error {
		card, err := storage.FindCard(ctx, tx, cardID)
		if err != nil {
			return err
		}
		if card == nil {
			return domain.NotFound("card", cardID)
		}
		if err := storage.ContentTable.Delete(ctx, tx, now, cardID); err != nil {
			return err
		}
		if err := storage.ScheduleTable.Delete(ctx, tx, now, cardID); err != nil {
			return err
		}
		return storage.DeleteCard(ctx, tx, cardID)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
