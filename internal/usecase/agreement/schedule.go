package agreement

import (
	"math"
	"time"

	agr "peerfund-core/internal/domain/agreement"
	"peerfund-core/internal/domain/errs"
)

// installmentPeriod is the fixed spacing between due dates.
const installmentPeriod = 30 * 24 * time.Hour

// BuildSchedule generates the fixed-payment amortization schedule.
// Rounding the annuity payment across term installments does not sum
// exactly to the principal, so the last installment absorbs the
// residual; if that residual would be non-positive the triple is
// rejected with ErrInvalidRange.
func BuildSchedule(principal, rateBps int64, term int, start time.Time) ([]agr.Installment, error) {
	if principal <= 0 || term <= 0 || rateBps < 0 {
		return nil, errs.ErrInvalidRange
	}

	var payment int64
	if rateBps == 0 {
		payment = principal / int64(term)
	} else {
		monthlyRate := float64(rateBps) / 10000 / 12
		factor := math.Pow(1+monthlyRate, float64(term))
		payment = int64(math.Round(float64(principal) * monthlyRate * factor / (factor - 1)))
	}

	last := principal - payment*int64(term-1)
	if last <= 0 {
		return nil, errs.ErrInvalidRange
	}

	rows := make([]agr.Installment, term)
	for i := 0; i < term; i++ {
		amount := payment
		if i == term-1 {
			amount = last
		}
		rows[i] = agr.Installment{
			Idx:    i,
			Amount: amount,
			DueAt:  start.Add(time.Duration(i+1) * installmentPeriod).UTC(),
			Status: agr.InstallmentPending,
		}
	}
	return rows, nil
}
