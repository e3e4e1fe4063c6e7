// Package manager exposes the card engine operations. Every operation is
// serialized behind one process-wide lock and runs in a single transaction
// against the current database.
package manager

import (
	"context"
	"database/sql"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/conorfennell/knolcard/internal/domain"
	"github.com/conorfennell/knolcard/internal/schedule"
	"github.com/conorfennell/knolcard/internal/storage"
)

// Clock supplies the wall-clock time. Each operation reads it once.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Options configures a Manager. Zero values select the defaults.
type Options struct {
	Clock        Clock
	Random       schedule.Random
	HistoryLimit int
	DueScanLimit int
}

const (
	DefaultHistoryLimit = 100
	DefaultDueScanLimit = 1000
)

// Manager coordinates the storage and scheduling packages.
type Manager struct {
	mu           sync.Mutex
	db           *storage.DB
	clock        Clock
	rnd          schedule.Random
	historyLimit int
	dueScanLimit int
}

// New creates a Manager over db.
func New(db *storage.DB, opts Options) *Manager {
	m := &Manager{
		db:           db,
		clock:        opts.Clock,
		rnd:          opts.Random,
		historyLimit: opts.HistoryLimit,
		dueScanLimit: opts.DueScanLimit,
	}
	if m.clock == nil {
		m.clock = SystemClock{}
	}
	if m.rnd == nil {
		m.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if m.historyLimit <= 0 {
		m.historyLimit = DefaultHistoryLimit
	}
	if m.dueScanLimit <= 0 {
		m.dueScanLimit = DefaultDueScanLimit
	}
	return m
}

// opFn is the body of an operation, run inside its transaction with the
// operation's single timestamp.
type opFn func(ctx context.Context, tx *sql.Tx, now int64) error

// run takes the global lock, reads the clock once, fetches the current
// connection and runs fn in one transaction. Failures come back as *domain.Error.
func (m *Manager) run(ctx context.Context, op string, cardID int64, fn opFn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now().UnixMilli()
	err := storage.RunInTx(ctx, m.db.Conn(), func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, tx, now)
	})
	if err == nil {
		slog.Debug("operation completed", "op", op, "card_id", cardID)
		return nil
	}

	e := domain.AsError(err)
	switch e.Kind {
	case domain.KindVersioningIntegrity, domain.KindStorage:
		slog.Error("operation failed", "op", op, "card_id", cardID, "code", e.Code, "error", err)
	default:
		slog.Debug("operation rejected", "op", op, "card_id", cardID, "code", e.Code)
	}
	return e
}

// loadProjection reads a card with its content and schedule.
func loadProjection(ctx context.Context, q storage.DBTX, cardID int64) (domain.Projection, error) {
	card, err := storage.FindCard(ctx, q, cardID)
	if err != nil {
		return domain.Projection{}, err
	}
	if card == nil {
		return domain.Projection{}, domain.NotFound("card", cardID)
	}
	content, err := storage.FindContent(ctx, q, cardID)
	if err != nil {
		return domain.Projection{}, err
	}
	if content == nil {
		return domain.Projection{}, domain.NotFound("content of card", cardID)
	}
	sched, err := storage.FindSchedule(ctx, q, cardID)
	if err != nil {
		return domain.Projection{}, err
	}
	if sched == nil {
		return domain.Projection{}, domain.NotFound("schedule of card", cardID)
	}
	return domain.NewProjection(*card, *content, *sched), nil
}

// GetCard returns the projection of a card.
func (m *Manager) GetCard(ctx context.Context, cardID int64) (domain.Projection, error) {
	var p domain.Projection
	err := m.run(ctx, "getCard", cardID, func(ctx context.Context, tx *sql.Tx, _ int64) error {
		var err error
		p, err = loadProjection(ctx, tx, cardID)
		return err
	})
	return p, err
}
