package readiness

import (
	"math"
	"sort"
	"time"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

const (
	day = 24 * time.Hour

	recencyWeight     = 1.2
	repetitionFactor  = 0.3
	maxMultiplier     = 2.0
	mistakeWindow     = 7 * day
	mistakesSaturate  = 3.0
	overdueSaturate   = 7.0
	baseReviewMinutes = 10
)

// Policy holds the tunable readiness thresholds.
type Policy struct {
	WeakThreshold        int
	WeakAreaLimit        int
	ResearchCount        int
	ForgettingWindowDays int
	AdvancedThreshold    int
}

// DefaultPolicy returns the standard thresholds.
func DefaultPolicy() Policy {
	return Policy{
		WeakThreshold:        70,
		WeakAreaLimit:        10,
		ResearchCount:        5,
		ForgettingWindowDays: 2,
		AdvancedThreshold:    80,
	}
}

// CalculateMastery weights the i-th interaction (oldest first) by 1.2^i and
// returns the rounded weighted success percentage. Empty history is 0.
func CalculateMastery(interactions []domain.Interaction) int {
	if len(interactions) == 0 {
		return 0
	}

	var weighted, total float64
	for i, in := range interactions {
		w := math.Pow(recencyWeight, float64(i))
		if in.Success {
			weighted += w
		}
		total += w
	}

	return clampMastery(int(math.Round(100 * weighted / total)))
}

func clampMastery(m int) int {
	return max(0, min(100, m))
}

// Category names the forgetting-curve bucket of a mastery level.
func Category(mastery int) string {
	switch {
	case mastery >= 100:
		return "excellent"
	case mastery >= 80:
		return "good"
	case mastery >= 60:
		return "moderate"
	case mastery >= 40:
		return "weak"
	default:
		return "poor"
	}
}

// BaseIntervalDays maps mastery to the forgetting-curve base interval.
func BaseIntervalDays(mastery int) int {
	switch Category(mastery) {
	case "excellent":
		return 30
	case "good":
		return 14
	case "moderate":
		return 7
	case "weak":
		return 3
	default:
		return 1
	}
}

// ScheduleInput holds everything needed to place the next review. Pure value.
type ScheduleInput struct {
	Mastery         int
	RepetitionCount int
	Success         bool
	Now             time.Time
}

// ScheduleOutput is the result of CalculateNextReview.
type ScheduleOutput struct {
	IntervalDays float64
	NextReview   time.Time
}

// CalculateNextReview is a pure function. The returned NextReview is always
// at least one day after Now.
func CalculateNextReview(in ScheduleInput) ScheduleOutput {
	multiplier := math.Min(float64(in.RepetitionCount)*repetitionFactor, maxMultiplier)
	interval := float64(BaseIntervalDays(in.Mastery)) * (1 + multiplier)
	if !in.Success {
		interval = math.Max(1, interval*0.5)
	}

	days := max(1, int(math.Round(interval)))

	return ScheduleOutput{
		IntervalDays: interval,
		NextReview:   in.Now.Add(time.Duration(days) * day),
	}
}

// UpdateStreak advances the activity streak to now.
// A gap of at most 24h continues the streak, a gap over 48h resets it, and a
// gap strictly between 24h and 48h leaves the counters untouched.
func UpdateStreak(s domain.Streak, now time.Time) domain.Streak {
	if s.LastActivity == nil {
		s.Current = 1
		s.Longest = max(s.Longest, 1)
	} else {
		gap := now.Sub(*s.LastActivity)
		switch {
		case gap <= day:
			s.Current++
			s.Longest = max(s.Longest, s.Current)
		case gap > 2*day:
			s.Current = 1
		}
	}

	last := now
	s.LastActivity = &last
	return s
}

// ApplyInteraction records in on the concept and recomputes every derived
// field of the profile. It mutates p and returns the updated record.
func ApplyInteraction(p *domain.LearnerProfile, conceptID string, in domain.Interaction, now time.Time, policy Policy) *domain.ConceptRecord {
	if p.Concepts == nil {
		p.Concepts = make(map[string]*domain.ConceptRecord)
	}
	rec, ok := p.Concepts[conceptID]
	if !ok {
		rec = &domain.ConceptRecord{ConceptID: conceptID}
		p.Concepts[conceptID] = rec
	}

	if in.Timestamp.IsZero() {
		in.Timestamp = now
	}
	rec.Interactions = append(rec.Interactions, in)
	if !in.Success {
		rec.Mistakes = append(rec.Mistakes, domain.Mistake{
			Timestamp:  in.Timestamp,
			Difficulty: in.Difficulty,
			Kind:       in.Kind,
		})
	}

	rec.RepetitionCount++
	rec.MasteryLevel = CalculateMastery(rec.Interactions)

	reviewed := now
	rec.LastReviewed = &reviewed

	out := CalculateNextReview(ScheduleInput{
		Mastery:         rec.MasteryLevel,
		RepetitionCount: rec.RepetitionCount,
		Success:         in.Success,
		Now:             now,
	})
	next := out.NextReview
	rec.NextReview = &next

	p.WeakAreas = WeakAreas(p.Concepts, policy)
	p.Streak = UpdateStreak(p.Streak, now)
	p.UpdatedAt = now

	return rec
}

// WeakAreas returns concepts under the weak threshold, weakest first, capped
// at the policy limit.
func WeakAreas(concepts map[string]*domain.ConceptRecord, policy Policy) []domain.WeakArea {
	var weak []domain.WeakArea
	for id, rec := range concepts {
		if rec.MasteryLevel < policy.WeakThreshold {
			weak = append(weak, domain.WeakArea{
				ConceptID:      id,
				MasteryLevel:   rec.MasteryLevel,
				RecentMistakes: len(rec.Mistakes),
			})
		}
	}

	sort.Slice(weak, func(i, j int) bool {
		if weak[i].MasteryLevel != weak[j].MasteryLevel {
			return weak[i].MasteryLevel < weak[j].MasteryLevel
		}
		return weak[i].ConceptID < weak[j].ConceptID
	})

	if len(weak) > policy.WeakAreaLimit {
		weak = weak[:policy.WeakAreaLimit]
	}
	return weak
}

// daysBetween returns the whole number of days from a to b, rounded.
func daysBetween(a, b time.Time) int {
	return int(math.Round(float64(b.Sub(a)) / float64(day)))
}
