package schedule

import (
	"math"

	"github.com/conorfennell/knolcard/internal/domain"
	"github.com/conorfennell/knolcard/internal/duration"
)

// Bounds of the jitter multiplier applied to a parsed delay.
const (
	MinRandomFactor = 0.85
	MaxRandomFactor = 1.15
)

// Random is the source of randomness used for jitter and tie-breaking.
// *rand.Rand from math/rand/v2 satisfies it.
type Random interface {
	Float64() float64
	IntN(n int) int
}

// Initial returns the schedule of a newly created card: zero delay, no
// jitter, due at now.
func Initial(cardID, now int64) domain.Schedule {
	return domain.Schedule{
		CardID:             cardID,
		UpdatedAt:          now,
		Delay:              domain.InitialDelay,
		RandomFactor:       1.0,
		NextAccessInMillis: 0,
		NextAccessAt:       now,
	}
}

// Overdue scores how far past its due time a schedule is, relative to its
// own interval. due is false when now is before NextAccessAt.
func Overdue(s domain.Schedule, now int64) (score float64, due bool) {
	if now < s.NextAccessAt {
		return 0, false
	}
	denominator := s.NextAccessInMillis
	if denominator < 1 {
		denominator = 1
	}
	return float64(now-s.NextAccessAt) / float64(denominator), true
}

// RandomFactor draws a jitter multiplier uniformly from [MinRandomFactor, MaxRandomFactor).
func RandomFactor(r Random) float64 {
	f := MinRandomFactor + r.Float64()*(MaxRandomFactor-MinRandomFactor)
	if f >= MaxRandomFactor {
		f = math.Nextafter(MaxRandomFactor, MinRandomFactor)
	}
	return f
}

// NeedsRecalculation reports whether a schedule must be recomputed for the
// resolved delay.
func NeedsRecalculation(s domain.Schedule, delay string, force bool) bool {
	return force || s.Delay != delay
}

// Recalculate applies delay to s at now with a fresh random factor.
// The returned schedule keeps NextAccessAt == UpdatedAt + NextAccessInMillis.
func Recalculate(s domain.Schedule, delay string, now int64, r Random) (domain.Schedule, error) {
	base, err := duration.Parse(delay)
	if err != nil {
		return s, err
	}
	factor := RandomFactor(r)
	next := int64(math.Floor(float64(base) * factor))

	s.Delay = delay
	s.RandomFactor = factor
	s.UpdatedAt = now
	s.NextAccessInMillis = next
	s.NextAccessAt = now + next
	return s, nil
}

// Pick returns a uniformly random choice among the due candidates sharing
// the highest overdue score. ok is false when none of them is due.
func Pick(candidates []domain.Candidate, now int64, r Random) (chosen domain.Candidate, ok bool) {
	var best []domain.Candidate
	maxScore := math.Inf(-1)
	for _, c := range candidates {
		score, due := Overdue(c.Schedule, now)
		if !due {
			continue
		}
		switch {
		case score > maxScore:
			maxScore = score
			best = append(best[:0], c)
		case score == maxScore:
			best = append(best, c)
		}
	}
	if len(best) == 0 {
		return domain.Candidate{}, false
	}
	return best[r.IntN(len(best))], true
}
