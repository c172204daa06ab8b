package domain

import (
	"testing"
	"time"
)

func TestClassifyDurationBoundaries(t *testing.T) {
	if got := ClassifyDuration(29*time.Minute + 59*time.Second); got != DurationNormal {
		t.Fatalf("just under 30m should be normal, got %s", got)
	}
	// boundaries are inclusive-exclusive: exactly 30m is already warning
	if got := ClassifyDuration(30 * time.Minute); got != DurationWarning {
		t.Fatalf("exactly 30m should be warning, got %s", got)
	}
	if got := ClassifyDuration(59 * time.Minute); got != DurationWarning {
		t.Fatalf("59m should be warning, got %s", got)
	}
	if got := ClassifyDuration(60 * time.Minute); got != DurationCritical {
		t.Fatalf("exactly 60m should be critical, got %s", got)
	}
	if got := ClassifyDuration(3 * time.Hour); got != DurationCritical {
		t.Fatalf("3h should be critical, got %s", got)
	}
}

func TestOrderCompleted(t *testing.T) {
	now := time.Now()
	earlier := now.Add(-20 * time.Minute)

	o := Order{Status: OrderEnded, StartedAt: &earlier, EndedAt: &now}
	if !o.Completed() {
		t.Fatalf("ended order with both timestamps should be completed")
	}

	o = Order{Status: OrderEnded, EndedAt: &now}
	if o.Completed() {
		t.Fatalf("order without started_at should not count as completed")
	}

	o = Order{Status: OrderStarted, StartedAt: &earlier}
	if o.Completed() {
		t.Fatalf("started order should not count as completed")
	}
}
