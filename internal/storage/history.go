package storage

import (
	"context"
	"fmt"

	"github.com/conorfennell/knolcard/internal/domain"
)

// InsertAttempt appends a validation log row and returns its id.
func InsertAttempt(ctx context.Context, q DBTX, e domain.ValidationLogEntry) (int64, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO validation_log (timestamp, cardId, providedAnswer, matched)
		VALUES (?, ?, ?, ?)
	`, e.Timestamp, e.CardID, e.ProvidedAnswer, e.Matched)
	if err != nil {
		return 0, fmt.Errorf("failed to insert validation log for card %d: %w", e.CardID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for validation log: %w", err)
	}
	return id, nil
}

// Attempts returns up to limit validation log rows of a card, most recent first.
func Attempts(ctx context.Context, q DBTX, cardID int64, limit int) ([]domain.ValidationLogEntry, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, timestamp, cardId, providedAnswer, matched
		FROM validation_log WHERE cardId = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, cardID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get validation log for card %d: %w", cardID, err)
	}
	defer rows.Close()

	var entries []domain.ValidationLogEntry
	for rows.Next() {
		var e domain.ValidationLogEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.CardID, &e.ProvidedAnswer, &e.Matched); err != nil {
			return nil, fmt.Errorf("failed to scan validation log row for card %d: %w", cardID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ContentVersions returns up to limit content snapshots of a card, most recent first.
func ContentVersions(ctx context.Context, q DBTX, cardID int64, limit int) ([]domain.ContentVersion, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT versionId, timestamp, cardId, textFront, textBack
		FROM content_ver WHERE cardId = ?
		ORDER BY timestamp DESC, versionId DESC
		LIMIT ?
	`, cardID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get content versions for card %d: %w", cardID, err)
	}
	defer rows.Close()

	var versions []domain.ContentVersion
	for rows.Next() {
		var v domain.ContentVersion
		if err := rows.Scan(&v.VersionID, &v.Timestamp, &v.CardID, &v.TextFront, &v.TextBack); err != nil {
			return nil, fmt.Errorf("failed to scan content version row for card %d: %w", cardID, err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// ScheduleVersions returns up to limit schedule snapshots of a card, most recent first.
func ScheduleVersions(ctx context.Context, q DBTX, cardID int64, limit int) ([]domain.ScheduleVersion, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT versionId, timestamp, cardId, updatedAt, delay, randomFactor, nextAccessInMillis, nextAccessAt
		FROM schedule_ver WHERE cardId = ?
		ORDER BY timestamp DESC, versionId DESC
		LIMIT ?
	`, cardID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule versions for card %d: %w", cardID, err)
	}
	defer rows.Close()

	var versions []domain.ScheduleVersion
	for rows.Next() {
		var v domain.ScheduleVersion
		s := &v.Schedule
		if err := rows.Scan(&v.VersionID, &v.Timestamp, &s.CardID, &s.UpdatedAt, &s.Delay, &s.RandomFactor, &s.NextAccessInMillis, &s.NextAccessAt); err != nil {
			return nil, fmt.Errorf("failed to scan schedule version row for card %d: %w", cardID, err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
