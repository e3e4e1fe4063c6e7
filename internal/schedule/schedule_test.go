package schedule

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/conorfennell/knolcard/internal/domain"
	"github.com/conorfennell/knolcard/internal/duration"
)

// fixedRandom always returns the same values.
type fixedRandom struct {
	f float64
	n int
}

func (r fixedRandom) Float64() float64 { return r.f }
func (r fixedRandom) IntN(int) int     { return r.n }

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(42, 1024))
}

func TestInitial(t *testing.T) {
	s := Initial(7, 1000)
	if s.Delay != "0s" || s.RandomFactor != 1.0 || s.NextAccessInMillis != 0 {
		t.Errorf("Unexpected initial schedule: %+v", s)
	}
	if s.NextAccessAt != 1000 || s.UpdatedAt != 1000 || s.CardID != 7 {
		t.Errorf("Expected card 7 due at 1000, got %+v", s)
	}
}

func TestOverdue(t *testing.T) {
	testCases := []struct {
		name     string
		schedule domain.Schedule
		now      int64
		due      bool
		score    float64
	}{
		{
			name:     "not yet due",
			schedule: domain.Schedule{NextAccessAt: 2000, NextAccessInMillis: 1000},
			now:      1999,
			due:      false,
		},
		{
			name:     "exactly due",
			schedule: domain.Schedule{NextAccessAt: 2000, NextAccessInMillis: 1000},
			now:      2000,
			due:      true,
			score:    0,
		},
		{
			name:     "overdue by one interval",
			schedule: domain.Schedule{NextAccessAt: 2000, NextAccessInMillis: 1000},
			now:      3000,
			due:      true,
			score:    1,
		},
		{
			name:     "zero delay uses a denominator of one",
			schedule: domain.Schedule{NextAccessAt: 1000, NextAccessInMillis: 0},
			now:      1500,
			due:      true,
			score:    500,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			score, due := Overdue(tc.schedule, tc.now)
			if due != tc.due {
				t.Fatalf("Expected due=%v, got %v", tc.due, due)
			}
			if due && score != tc.score {
				t.Errorf("Expected score %.3f, got %.3f", tc.score, score)
			}
		})
	}
}

func TestRandomFactorBounds(t *testing.T) {
	if f := RandomFactor(fixedRandom{f: 0}); f != MinRandomFactor {
		t.Errorf("Expected lower bound %.2f, got %v", MinRandomFactor, f)
	}
	if f := RandomFactor(fixedRandom{f: 0.9999999999999999}); f >= MaxRandomFactor {
		t.Errorf("Expected factor below %.2f, got %v", MaxRandomFactor, f)
	}
}

func TestRecalculate(t *testing.T) {
	before := domain.Schedule{CardID: 3, UpdatedAt: 1000, Delay: "0s", RandomFactor: 1, NextAccessAt: 1000}

	got, err := Recalculate(before, "1d", 5000, fixedRandom{f: 0.5})
	if err != nil {
		t.Fatalf("Recalculate returned an unexpected error: %v", err)
	}
	if got.Delay != "1d" || got.UpdatedAt != 5000 || got.CardID != 3 {
		t.Errorf("Unexpected schedule: %+v", got)
	}
	if math.Abs(got.RandomFactor-1.0) > 1e-9 {
		t.Errorf("Expected a random factor of about 1.0, got %v", got.RandomFactor)
	}
	if want := int64(math.Floor(float64(duration.Day) * got.RandomFactor)); got.NextAccessInMillis != want {
		t.Errorf("Expected nextAccessInMillis %d, got %d", want, got.NextAccessInMillis)
	}
	if got.NextAccessAt != got.UpdatedAt+got.NextAccessInMillis {
		t.Errorf("nextAccessAt %d != updatedAt %d + nextAccessInMillis %d", got.NextAccessAt, got.UpdatedAt, got.NextAccessInMillis)
	}

	t.Run("invalid delay leaves schedule unchanged", func(t *testing.T) {
		same, err := Recalculate(before, "1 day", 5000, fixedRandom{})
		if err == nil {
			t.Fatal("Expected an error for a malformed delay")
		}
		if same != before {
			t.Errorf("Expected schedule to be unchanged, got %+v", same)
		}
	})
}

func TestRecalculateJitterIsUniform(t *testing.T) {
	const (
		samples = 20000
		buckets = 10
	)
	base := duration.Day
	r := seeded()
	counts := make([]int, buckets)
	width := (MaxRandomFactor - MinRandomFactor) / buckets

	for i := 0; i < samples; i++ {
		s, err := Recalculate(domain.Schedule{}, "1d", 0, r)
		if err != nil {
			t.Fatalf("Recalculate: %v", err)
		}
		ratio := float64(s.NextAccessInMillis) / float64(base)
		if ratio < MinRandomFactor || ratio >= MaxRandomFactor {
			t.Fatalf("Ratio %v outside [%.2f, %.2f)", ratio, MinRandomFactor, MaxRandomFactor)
		}
		idx := int((ratio - MinRandomFactor) / width)
		if idx >= buckets {
			idx = buckets - 1
		}
		counts[idx]++
	}

	expected := samples / buckets
	for i, c := range counts {
		if c < expected*8/10 || c > expected*12/10 {
			t.Errorf("Bucket %d has %d samples, expected about %d", i, c, expected)
		}
	}
}

func TestNeedsRecalculation(t *testing.T) {
	s := domain.Schedule{Delay: "1d"}
	if NeedsRecalculation(s, "1d", false) {
		t.Error("Expected no recalculation for an unchanged delay")
	}
	if !NeedsRecalculation(s, "1d", true) {
		t.Error("Expected forced recalculation")
	}
	if !NeedsRecalculation(s, "2d", false) {
		t.Error("Expected recalculation for a changed delay")
	}
}

func candidate(id, nextAccessAt, interval int64) domain.Candidate {
	return domain.Candidate{Schedule: domain.Schedule{CardID: id, NextAccessAt: nextAccessAt, NextAccessInMillis: interval}}
}

func TestPick(t *testing.T) {
	t.Run("nothing due", func(t *testing.T) {
		_, ok := Pick([]domain.Candidate{candidate(1, 5000, 0)}, 1000, seeded())
		if ok {
			t.Error("Expected no card to be picked")
		}
	})

	t.Run("highest score wins", func(t *testing.T) {
		candidates := []domain.Candidate{
			candidate(1, 0, 10_000),   // score 0.1
			candidate(2, 500, 100),    // score 5
			candidate(3, 900, 0),      // score 100
			candidate(4, 2000, 1_000), // not due
		}
		for i := 0; i < 50; i++ {
			got, ok := Pick(candidates, 1000, seeded())
			if !ok || got.Schedule.CardID != 3 {
				t.Fatalf("Expected card 3, got %+v (ok=%v)", got, ok)
			}
		}
	})

	t.Run("ties are broken uniformly", func(t *testing.T) {
		candidates := []domain.Candidate{
			candidate(1, 0, 1000),
			candidate(2, 0, 1000),
			candidate(3, 500, 1000), // lower score
		}
		r := seeded()
		counts := map[int64]int{}
		for i := 0; i < 1000; i++ {
			got, ok := Pick(candidates, 1000, r)
			if !ok {
				t.Fatal("Expected a card to be picked")
			}
			counts[got.Schedule.CardID]++
		}
		if counts[1] <= 400 || counts[2] <= 400 {
			t.Errorf("Expected both tied cards to be chosen more than 400 times, got %v", counts)
		}
		if counts[3] != 0 {
			t.Errorf("Expected the less overdue card never to be chosen, got %d", counts[3])
		}
	})
}
