// Package reporting builds per-area reconciliation reports over the
// payment book: what is suspended, what has not settled, and the totals
// an operator compares against processor statements.
package reporting

import (
	"time"

	"github.com/clearbill/payments/internal/domain"
)

// AreaReport is one service area's reconciliation snapshot.
type AreaReport struct {
	AreaID      string    `json:"area_id"`
	GeneratedAt time.Time `json:"generated_at"`

	SuspendedCount  int   `json:"suspended_count"`
	SuspendedAmount int64 `json:"suspended_amount"`

	UnsettledCount  int   `json:"unsettled_count"`
	UnsettledAmount int64 `json:"unsettled_amount"`

	// ByStatus breaks the unsettled set down by payment status.
	ByStatus map[domain.PaymentStatus]int `json:"by_status"`
}

func buildReport(areaID string, suspended, unsettled []*domain.Payment, now time.Time) *AreaReport {
	report := &AreaReport{
		AreaID:      areaID,
		GeneratedAt: now,
		ByStatus:    make(map[domain.PaymentStatus]int),
	}

	for _, p := range suspended {
		report.SuspendedCount++
		report.SuspendedAmount += p.Amount
	}
	for _, p := range unsettled {
		report.UnsettledCount++
		report.UnsettledAmount += p.Amount
		report.ByStatus[p.Status]++
	}

	return report
}
