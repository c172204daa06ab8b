package services

import (
	"context"
	"math"
	"sync"
	"time"

	"washops/internal/domain"
	"washops/internal/upstream"
	"washops/internal/utils"
)

// Stats are the operational metrics derived from the wash-history feed.
type Stats struct {
	TodayCount            int `json:"today_count"`
	YesterdayCount        int `json:"yesterday_count"`
	ThisWeekCount         int `json:"this_week_count"`
	CompletedCount        int `json:"completed_count"`
	ActiveCount           int `json:"active_count"`
	AvgDurationMinutes    int `json:"avg_duration_minutes"`
	DailyTrendPercent     int `json:"daily_trend_percent"`
	CompletionRatePercent int `json:"completion_rate_percent"`
}

// HistoryService derives Stats from the history feed in a single pass. The
// result is memoized on the feed reference and the calendar day, so repeated
// reads of an unchanged feed cost nothing and stay identical. Input records
// are never mutated.
//
// All rounding is half-up (ties away from zero toward +inf): 37.5% -> 38.
type HistoryService struct {
	Ledger Ledger

	mu        sync.Mutex
	memoFirst *domain.Order
	memoLen   int
	memoDay   string
	memoStats Stats
	computes  int
}

// Fetch pulls one page of the wash-history feed from the ledger.
func (s *HistoryService) Fetch(ctx context.Context, f upstream.HistoryFilter) (upstream.HistoryPage, error) {
	return s.Ledger.ListHistory(ctx, f)
}

// Stats aggregates the feed. Today/yesterday/this-week classifications are
// independent: a record can count toward both today and this week.
func (s *HistoryService) Stats(orders []domain.Order, now time.Time) Stats {
	var first *domain.Order
	if len(orders) > 0 {
		first = &orders[0]
	}
	day := utils.FormatDate(now)

	s.mu.Lock()
	if first != nil && first == s.memoFirst && len(orders) == s.memoLen && day == s.memoDay {
		cached := s.memoStats
		s.mu.Unlock()
		return cached
	}
	s.mu.Unlock()

	stats := computeStats(orders, now)

	s.mu.Lock()
	s.memoFirst = first
	s.memoLen = len(orders)
	s.memoDay = day
	s.memoStats = stats
	s.computes++
	s.mu.Unlock()

	return stats
}

func computeStats(orders []domain.Order, now time.Time) Stats {
	today := utils.StartOfDay(now)
	yesterday := today.AddDate(0, 0, -1)
	weekStart := utils.StartOfWeek(now)
	weekEnd := weekStart.AddDate(0, 0, 7)

	var stats Stats
	var totalMinutes float64
	var timedCompletions int

	for i := range orders {
		o := orders[i]

		if utils.SameDay(o.CreatedAt, today) {
			stats.TodayCount++
		}
		if utils.SameDay(o.CreatedAt, yesterday) {
			stats.YesterdayCount++
		}
		if !o.CreatedAt.Before(weekStart) && o.CreatedAt.Before(weekEnd) {
			stats.ThisWeekCount++
		}

		switch o.Status {
		case domain.OrderEnded:
			stats.CompletedCount++
			// average only over completions with both timestamps present
			if o.StartedAt != nil && o.EndedAt != nil {
				timedCompletions++
				totalMinutes += o.EndedAt.Sub(*o.StartedAt).Minutes()
			}
		case domain.OrderStarted:
			stats.ActiveCount++
		}
	}

	if timedCompletions > 0 {
		stats.AvgDurationMinutes = roundHalfUp(totalMinutes / float64(timedCompletions))
	}

	switch {
	case stats.YesterdayCount == 0 && stats.TodayCount == 0:
		stats.DailyTrendPercent = 0
	case stats.YesterdayCount == 0:
		stats.DailyTrendPercent = 100
	default:
		diff := float64(stats.TodayCount-stats.YesterdayCount) / float64(stats.YesterdayCount) * 100
		stats.DailyTrendPercent = roundHalfUp(diff)
	}

	if total := len(orders); total > 0 {
		stats.CompletionRatePercent = roundHalfUp(float64(stats.CompletedCount) / float64(total) * 100)
	}

	return stats
}

// roundHalfUp rounds to the nearest integer with .5 going up: 132.14 -> 132,
// 37.5 -> 38, -12.5 -> -12.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
