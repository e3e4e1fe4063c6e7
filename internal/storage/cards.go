package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/conorfennell/knolcard/internal/domain"
)

// InsertCard inserts a new card row and returns its id.
func InsertCard(ctx context.Context, q DBTX, cardType domain.CardType, createdAt int64) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO card (type, createdAt)
		VALUES (?, ?)
	`, cardType, createdAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert card: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for card: %w", err)
	}
	return id, nil
}

// FindCard retrieves a card by id. It returns nil when the card does not exist.
func FindCard(ctx context.Context, q DBTX, id int64) (*domain.Card, error) {
	var c domain.Card
	err := q.QueryRowContext(ctx, `
		SELECT id, type, createdAt
		FROM card WHERE id = ?
	`, id).Scan(&c.ID, &c.Type, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Card not found
		}
		return nil, fmt.Errorf("failed to find card %d: %w", id, err)
	}
	return &c, nil
}

// DeleteCard removes a card row. Its content and schedule must already be gone.
func DeleteCard(ctx context.Context, q DBTX, id int64) error {
	res, err := q.ExecContext(ctx, `
		DELETE FROM card
		WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card %d: %w", id, err)
	}
	return checkOneRow(res, "delete of card")
}

// InsertContent inserts the content row of a card.
func InsertContent(ctx context.Context, q DBTX, c domain.Content) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO content (cardId, textFront, textBack)
		VALUES (?, ?, ?)
	`, c.CardID, c.TextFront, c.TextBack)
	if err != nil {
		return fmt.Errorf("failed to insert content for card %d: %w", c.CardID, err)
	}
	return nil
}

// FindContent retrieves the content of a card. It returns nil when there is none.
func FindContent(ctx context.Context, q DBTX, cardID int64) (*domain.Content, error) {
	var c domain.Content
	err := q.QueryRowContext(ctx, `
		SELECT cardId, textFront, textBack
		FROM content WHERE cardId = ?
	`, cardID).Scan(&c.CardID, &c.TextFront, &c.TextBack)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find content for card %d: %w", cardID, err)
	}
	return &c, nil
}

// InsertSchedule inserts the schedule row of a card.
func InsertSchedule(ctx context.Context, q DBTX, s domain.Schedule) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO schedule (cardId, updatedAt, delay, randomFactor, nextAccessInMillis, nextAccessAt)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.CardID, s.UpdatedAt, s.Delay, s.RandomFactor, s.NextAccessInMillis, s.NextAccessAt)
	if err != nil {
		return fmt.Errorf("failed to insert schedule for card %d: %w", s.CardID, err)
	}
	return nil
}

// FindSchedule retrieves the schedule of a card. It returns nil when there is none.
func FindSchedule(ctx context.Context, q DBTX, cardID int64) (*domain.Schedule, error) {
	var s domain.Schedule
	err := q.QueryRowContext(ctx, `
		SELECT cardId, updatedAt, delay, randomFactor, nextAccessInMillis, nextAccessAt
		FROM schedule WHERE cardId = ?
	`, cardID).Scan(&s.CardID, &s.UpdatedAt, &s.Delay, &s.RandomFactor, &s.NextAccessInMillis, &s.NextAccessAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find schedule for card %d: %w", cardID, err)
	}
	return &s, nil
}

// DueCandidates returns up to limit cards due at now, most overdue first.
func DueCandidates(ctx context.Context, q DBTX, now int64, limit int) ([]domain.Candidate, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT c.type, s.cardId, s.updatedAt, s.delay, s.randomFactor, s.nextAccessInMillis, s.nextAccessAt
		FROM schedule s
		JOIN card c ON c.id = s.cardId
		WHERE s.nextAccessAt <= ?
		ORDER BY (? - s.nextAccessAt) * 1.0 / MAX(s.nextAccessInMillis, 1) DESC
		LIMIT ?
	`, now, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due cards: %w", err)
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		s := &c.Schedule
		if err := rows.Scan(&c.CardType, &s.CardID, &s.UpdatedAt, &s.Delay, &s.RandomFactor, &s.NextAccessInMillis, &s.NextAccessAt); err != nil {
			return nil, fmt.Errorf("failed to scan due card row: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get due cards: %w", err)
	}
	return candidates, nil
}

// EarliestNextAccess returns the smallest nextAccessAt over all schedules.
// ok is false when there are no schedules.
func EarliestNextAccess(ctx context.Context, q DBTX) (at int64, ok bool, err error) {
	var v sql.NullInt64
	if err := q.QueryRowContext(ctx, `SELECT MIN(nextAccessAt) FROM schedule`).Scan(&v); err != nil {
		return 0, false, fmt.Errorf("failed to get earliest next access: %w", err)
	}
	return v.Int64, v.Valid, nil
}

// countCards returns the number of live cards.
func countCards(ctx context.Context, q DBTX) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM card`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return n, nil
}
