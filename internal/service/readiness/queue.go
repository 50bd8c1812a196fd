package readiness

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/heartmarshall/tutor-backend/internal/domain"
)

// Priority scores a due concept on a 0-100 scale from its mastery gap,
// mistakes in the last 7 days and how long it has been overdue.
func Priority(rec *domain.ConceptRecord, now time.Time) int {
	gap := float64(100-rec.MasteryLevel) / 100

	recent := 0
	for _, m := range rec.Mistakes {
		if now.Sub(m.Timestamp) <= mistakeWindow {
			recent++
		}
	}
	mistakeFactor := math.Min(float64(recent)/mistakesSaturate, 1)

	overdueFactor := 0.0
	if rec.NextReview != nil {
		overdueFactor = math.Min(float64(max(0, daysBetween(*rec.NextReview, now)))/overdueSaturate, 1)
	}

	return int(math.Round(100 * (0.4*gap + 0.3*mistakeFactor + 0.3*overdueFactor)))
}

// EstimatedMinutes is the expected review time for a concept.
func EstimatedMinutes(rec *domain.ConceptRecord) int {
	est := float64(baseReviewMinutes) +
		math.Max(0, float64(70-rec.MasteryLevel)/2) +
		math.Min(float64(len(rec.Mistakes)*2), 10)
	return int(math.Round(est))
}

// IsDue reports whether the concept's next review has passed.
func IsDue(rec *domain.ConceptRecord, now time.Time) bool {
	return rec.NextReview != nil && !rec.NextReview.After(now)
}

// BuildReviewQueue ranks due concepts by priority and fills the daily budget
// greedily, stopping at the first item that would exceed it. The total
// estimated time of the returned items never exceeds budgetMinutes.
func BuildReviewQueue(p *domain.LearnerProfile, now time.Time, budgetMinutes int) domain.ReviewQueue {
	var due []domain.ReviewQueueItem
	for id, rec := range p.Concepts {
		if !IsDue(rec, now) {
			continue
		}
		due = append(due, domain.ReviewQueueItem{
			ConceptID:        id,
			Priority:         Priority(rec, now),
			EstimatedMinutes: EstimatedMinutes(rec),
			MasteryLevel:     rec.MasteryLevel,
			DaysOverdue:      max(0, daysBetween(*rec.NextReview, now)),
		})
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].Priority != due[j].Priority {
			return due[i].Priority > due[j].Priority
		}
		if due[i].DaysOverdue != due[j].DaysOverdue {
			return due[i].DaysOverdue > due[j].DaysOverdue
		}
		return due[i].ConceptID < due[j].ConceptID
	})

	queue := domain.ReviewQueue{TotalDue: len(due), Items: []domain.ReviewQueueItem{}}
	for _, item := range due {
		if queue.EstimatedTotalMinutes+item.EstimatedMinutes > budgetMinutes {
			break
		}
		queue.Items = append(queue.Items, item)
		queue.EstimatedTotalMinutes += item.EstimatedMinutes
	}

	queue.Recommendation = recommend(queue)
	return queue
}

func recommend(q domain.ReviewQueue) domain.Recommendation {
	rec := domain.Recommendation{
		Concepts:     make([]string, 0, len(q.Items)),
		TotalMinutes: q.EstimatedTotalMinutes,
	}
	for _, item := range q.Items {
		rec.Concepts = append(rec.Concepts, item.ConceptID)
	}

	if len(q.Items) > 0 {
		rec.Message = fmt.Sprintf("Focus on %d concepts today (%d min)", len(q.Items), q.EstimatedTotalMinutes)
	} else {
		rec.Message = "All caught up! No reviews due today."
	}
	return rec
}

// ResearchSuggestions blends weak areas, concepts close to their review date
// and well-mastered concepts offered as advanced extensions.
func ResearchSuggestions(p *domain.LearnerProfile, now time.Time, count int, policy Policy) []domain.ResearchSuggestion {
	var out []domain.ResearchSuggestion
	seen := make(map[string]bool)

	for _, w := range p.WeakAreas {
		if len(out) >= 2 {
			break
		}
		out = append(out, domain.ResearchSuggestion{
			ConceptID:        w.ConceptID,
			Kind:             domain.SuggestionWeakness,
			Priority:         domain.SuggestionPriorityHigh,
			EstimatedMinutes: 45,
			Reason:           fmt.Sprintf("Mastery at %d%% - needs strengthening", w.MasteryLevel),
		})
		seen[w.ConceptID] = true
	}

	type approaching struct {
		id        string
		daysUntil int
	}
	var near []approaching
	for id, rec := range p.Concepts {
		if rec.NextReview == nil || seen[id] {
			continue
		}
		d := daysBetween(now, *rec.NextReview)
		if d >= -policy.ForgettingWindowDays && d <= policy.ForgettingWindowDays {
			near = append(near, approaching{id: id, daysUntil: d})
		}
	}
	sort.Slice(near, func(i, j int) bool {
		if near[i].daysUntil != near[j].daysUntil {
			return near[i].daysUntil < near[j].daysUntil
		}
		return near[i].id < near[j].id
	})
	for i, a := range near {
		if i >= 2 {
			break
		}
		out = append(out, domain.ResearchSuggestion{
			ConceptID:        a.id,
			Kind:             domain.SuggestionForgetting,
			Priority:         domain.SuggestionPriorityMedium,
			EstimatedMinutes: 20,
			Reason:           forgettingReason(a.daysUntil),
		})
	}

	var strong []*domain.ConceptRecord
	for _, rec := range p.Concepts {
		if rec.MasteryLevel >= policy.AdvancedThreshold {
			strong = append(strong, rec)
		}
	}
	sort.Slice(strong, func(i, j int) bool {
		if strong[i].MasteryLevel != strong[j].MasteryLevel {
			return strong[i].MasteryLevel > strong[j].MasteryLevel
		}
		return strong[i].ConceptID < strong[j].ConceptID
	})
	for _, rec := range strong {
		out = append(out, domain.ResearchSuggestion{
			ConceptID:        rec.ConceptID + "_advanced",
			Kind:             domain.SuggestionAdvanced,
			Priority:         domain.SuggestionPriorityLow,
			EstimatedMinutes: 60,
			Reason:           fmt.Sprintf("Strong foundation at %d%% - ready for advanced topics", rec.MasteryLevel),
		})
	}

	if len(out) > count {
		out = out[:count]
	}
	return out
}

func forgettingReason(daysUntil int) string {
	switch {
	case daysUntil < 0:
		return fmt.Sprintf("Review overdue by %d days - prevent forgetting", -daysUntil)
	case daysUntil == 0:
		return "Review due today - prevent forgetting"
	default:
		return fmt.Sprintf("Review due in %d days - prevent forgetting", daysUntil)
	}
}

// Stats aggregates a profile into a snapshot.
func Stats(p *domain.LearnerProfile) domain.LearnerStats {
	stats := domain.LearnerStats{
		TotalConcepts: len(p.Concepts),
		WeakAreas:     len(p.WeakAreas),
		CurrentStreak: p.Streak.Current,
		LongestStreak: p.Streak.Longest,
	}

	sum := 0
	for _, rec := range p.Concepts {
		sum += rec.MasteryLevel
		if rec.MasteryLevel >= 80 {
			stats.ConceptsExcellent++
		}
		if rec.MasteryLevel < 60 {
			stats.ConceptsNeedWork++
		}
	}
	if len(p.Concepts) > 0 {
		stats.AverageMastery = int(math.Round(float64(sum) / float64(len(p.Concepts))))
	}

	return stats
}
