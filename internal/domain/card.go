package domain

// CardType enumerates the kinds of reviewable items. Only Basic exists today.
type CardType int

const (
	CardTypeBasic CardType = 0
)

// InitialDelay is the delay assigned to a freshly created card, making it due immediately.
const InitialDelay = "0s"

// Card is the root identity of a reviewable item.
// It owns exactly one Content and one Schedule row.
type Card struct {
	ID        int64    `json:"id"`
	Type      CardType `json:"type"`
	CreatedAt int64    `json:"createdAt"`
}

// Content holds the trimmed front and back text of a card.
type Content struct {
	CardID    int64  `json:"cardId"`
	TextFront string `json:"textFront"`
	TextBack  string `json:"textBack"`
}

// Schedule is the review schedule of a card.
// NextAccessAt always equals UpdatedAt + NextAccessInMillis.
type Schedule struct {
	CardID             int64   `json:"cardId"`
	UpdatedAt          int64   `json:"updatedAt"`
	Delay              string  `json:"delay"`
	RandomFactor       float64 `json:"randomFactor"`
	NextAccessInMillis int64   `json:"nextAccessInMillis"`
	NextAccessAt       int64   `json:"nextAccessAt"`
}

// ValidationLogEntry records a single review attempt.
// Entries are never removed, not even when their card is deleted.
type ValidationLogEntry struct {
	ID             int64  `json:"id"`
	Timestamp      int64  `json:"timestamp"`
	CardID         int64  `json:"cardId"`
	ProvidedAnswer string `json:"providedAnswer"`
	Matched        bool   `json:"matched"`
}

// ContentVersion is an immutable snapshot of a Content row taken before an update or delete.
type ContentVersion struct {
	VersionID int64 `json:"versionId"`
	Timestamp int64 `json:"timestamp"`
	Content
}

// ScheduleVersion is an immutable snapshot of a Schedule row taken before an update or delete.
type ScheduleVersion struct {
	VersionID int64 `json:"versionId"`
	Timestamp int64 `json:"timestamp"`
	Schedule
}

// Projection is the full view of a card: identity, content and schedule.
type Projection struct {
	CardID             int64    `json:"cardId"`
	CardType           CardType `json:"cardType"`
	CreatedAt          int64    `json:"createdAt"`
	TextFront          string   `json:"textFront"`
	TextBack           string   `json:"textBack"`
	UpdatedAt          int64    `json:"updatedAt"`
	Delay              string   `json:"delay"`
	RandomFactor       float64  `json:"randomFactor"`
	NextAccessInMillis int64    `json:"nextAccessInMillis"`
	NextAccessAt       int64    `json:"nextAccessAt"`
}

// NewProjection assembles a Projection from its three rows.
func NewProjection(c Card, ct Content, s Schedule) Projection {
	return Projection{
		CardID:             c.ID,
		CardType:           c.Type,
		CreatedAt:          c.CreatedAt,
		TextFront:          ct.TextFront,
		TextBack:           ct.TextBack,
		UpdatedAt:          s.UpdatedAt,
		Delay:              s.Delay,
		RandomFactor:       s.RandomFactor,
		NextAccessInMillis: s.NextAccessInMillis,
		NextAccessAt:       s.NextAccessAt,
	}
}

// AttemptResult is returned after an answer has been checked and logged.
type AttemptResult struct {
	Matched        bool   `json:"matched"`
	ExpectedAnswer string `json:"expectedAnswer"`
}

// Candidate is a due card considered for review.
type Candidate struct {
	CardType CardType
	Schedule Schedule
}

// NextCard describes what should be reviewed next.
// CardID and CardType are nil when nothing is due; WaitDuration is then the
// formatted time until the earliest due card, or empty when there are no cards.
type NextCard struct {
	CardID         *int64    `json:"cardId,omitempty"`
	CardType       *CardType `json:"cardType,omitempty"`
	RemainingCount int       `json:"remainingCount"`
	IsCountExact   bool      `json:"isCountExact"`
	WaitDuration   string    `json:"waitDuration"`
}

// HistoryKind tells which table a HistoryEntry came from.
type HistoryKind string

const (
	HistoryAttempt  HistoryKind = "attempt"
	HistoryContent  HistoryKind = "content"
	HistorySchedule HistoryKind = "schedule"
)

// HistoryEntry is one item of a card's merged, most-recent-first history.
// Exactly one of Attempt, Content and Schedule is set, according to Kind.
type HistoryEntry struct {
	Kind      HistoryKind         `json:"kind"`
	Timestamp int64               `json:"timestamp"`
	Attempt   *ValidationLogEntry `json:"attempt,omitempty"`
	Content   *ContentVersion     `json:"content,omitempty"`
	Schedule  *ScheduleVersion    `json:"schedule,omitempty"`
}
