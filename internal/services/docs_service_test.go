package services

import (
	"bytes"
	"testing"
	"time"

	"washops/internal/domain"
)

func TestDailyReportBuilds(t *testing.T) {
	day := time.Date(2025, 3, 12, 12, 0, 0, 0, time.Local)
	stats := Stats{
		TodayCount:            12,
		CompletedCount:        9,
		ActiveCount:           3,
		AvgDurationMinutes:    41,
		CompletionRatePercent: 75,
	}
	long := []ActiveWash{
		{
			Order: domain.Order{
				ID:      "ord-9",
				User:    &domain.User{FirstName: "Dana", LastName: "Cole"},
				Vehicle: &domain.Vehicle{Registration: "AB12CDE"},
			},
			ElapsedMinutes: 75,
			Class:          domain.DurationCritical,
			LongRunning:    true,
		},
	}

	data, filename, err := DocsService{}.DailyReport(stats, long, day)
	if err != nil {
		t.Fatalf("daily report: %v", err)
	}
	if len(data) == 0 || !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF")
	}
	if filename != "DAILY_OPS_20250312.pdf" {
		t.Fatalf("filename = %q", filename)
	}
}
