package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"washops/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders the downloadable daily operations summary.
type DocsService struct {
	RequestID string
}

// DailyReport builds the PDF for one day of operations: aggregate stats plus
// the washes currently past the attention threshold.
func (s DocsService) DailyReport(stats Stats, longRunning []ActiveWash, day time.Time) ([]byte, string, error) {
	utils.LogEvent(s.RequestID, "docs", "daily_report", "date="+utils.FormatDate(day))
	return buildDailyReportPDF(stats, longRunning, day)
}

func buildDailyReportPDF(stats Stats, longRunning []ActiveWash, day time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Daily Operations Report", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "DAILY OPERATIONS REPORT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Date              : %s", utils.FormatDate(day)),
		fmt.Sprintf("Washes today      : %d", stats.TodayCount),
		fmt.Sprintf("Washes yesterday  : %d", stats.YesterdayCount),
		fmt.Sprintf("Washes this week  : %d", stats.ThisWeekCount),
		fmt.Sprintf("Completed         : %d", stats.CompletedCount),
		fmt.Sprintf("Active now        : %d", stats.ActiveCount),
		fmt.Sprintf("Avg duration      : %d min", stats.AvgDurationMinutes),
		fmt.Sprintf("Daily trend       : %d%%", stats.DailyTrendPercent),
		fmt.Sprintf("Completion rate   : %d%%", stats.CompletionRatePercent),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Long-running washes (over 1 hour)")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	if len(longRunning) == 0 {
		pdf.Cell(0, 6, "None")
		pdf.Ln(6)
	}
	for _, w := range longRunning {
		customer := "-"
		if w.User != nil {
			customer = w.User.FullName()
		}
		registration := "-"
		if w.Vehicle != nil {
			registration = w.Vehicle.Registration
		}
		pdf.Cell(0, 6, fmt.Sprintf("#%s  %s  %s  %d min  (%s)",
			w.ID, customer, registration, w.ElapsedMinutes, w.Class))
		pdf.Ln(6)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Generated by the operator console. Counts reflect the history feed at generation time.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("DAILY_OPS_%s.pdf", strings.ReplaceAll(utils.FormatDate(day), "-", ""))
	return buf.Bytes(), filename, nil
}
