package manager

import (
	"cmp"
	"context"
	"database/sql"
	"slices"

	"github.com/conorfennell/knolcard/internal/domain"
	"github.com/conorfennell/knolcard/internal/knol"
	"github.com/conorfennell/knolcard/internal/storage"
)

// RecordAttempt checks an answer against the card's back text and logs the
// attempt, matched or not.
func (m *Manager) RecordAttempt(ctx context.Context, cardID int64, providedAnswer string) (domain.AttemptResult, error) {
	answer := knol.Normalize(providedAnswer)
	if answer == "" {
		return domain.AttemptResult{}, domain.Validation(domain.CodeEmptyAnswer, "answer is blank")
	}

	var res domain.AttemptResult
	err := m.run(ctx, "recordAttempt", cardID, func(ctx context.Context, tx *sql.Tx, now int64) error {
		content, err := storage.FindContent(ctx, tx, cardID)
		if err != nil {
			return err
		}
		if content == nil {
			return domain.NotFound("card", cardID)
		}

		res = domain.AttemptResult{
			Matched:        knol.Equal(answer, content.TextBack),
			ExpectedAnswer: content.TextBack,
		}
		_, err = storage.InsertAttempt(ctx, tx, domain.ValidationLogEntry{
			Timestamp:      now,
			CardID:         cardID,
			ProvidedAnswer: answer,
			Matched:        res.Matched,
		})
		return err
	})
	return res, err
}

var kindOrder = map[domain.HistoryKind]int{
	domain.HistoryAttempt:  0,
	domain.HistoryContent:  1,
	domain.HistorySchedule: 2,
}

// History returns the attempts and version rows of a card merged most recent
// first and capped at the history limit. It also works for deleted cards.
func (m *Manager) History(ctx context.Context, cardID int64) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	err := m.run(ctx, "getHistory", cardID, func(ctx context.Context, tx *sql.Tx, _ int64) error {
		attempts, err := storage.Attempts(ctx, tx, cardID, m.historyLimit)
		if err != nil {
			return err
		}
		contents, err := storage.ContentVersions(ctx, tx, cardID, m.historyLimit)
		if err != nil {
			return err
		}
		schedules, err := storage.ScheduleVersions(ctx, tx, cardID, m.historyLimit)
		if err != nil {
			return err
		}

		entries = make([]domain.HistoryEntry, 0, len(attempts)+len(contents)+len(schedules))
		for i := range attempts {
			entries = append(entries, domain.HistoryEntry{Kind: domain.HistoryAttempt, Timestamp: attempts[i].Timestamp, Attempt: &attempts[i]})
		}
		for i := range contents {
			entries = append(entries, domain.HistoryEntry{Kind: domain.HistoryContent, Timestamp: contents[i].Timestamp, Content: &contents[i]})
		}
		for i := range schedules {
			entries = append(entries, domain.HistoryEntry{Kind: domain.HistorySchedule, Timestamp: schedules[i].Timestamp, Schedule: &schedules[i]})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Each source is already most recent first, so a stable sort keeps their
	// internal order for equal timestamps.
	slices.SortStableFunc(entries, func(a, b domain.HistoryEntry) int {
		if c := cmp.Compare(b.Timestamp, a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(kindOrder[a.Kind], kindOrder[b.Kind])
	})
	if len(entries) > m.historyLimit {
		entries = entries[:m.historyLimit]
	}
	return entries, nil
}
