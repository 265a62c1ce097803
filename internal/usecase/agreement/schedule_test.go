package agreement

import (
	"errors"
	"testing"
	"time"

	agr "peerfund-core/internal/domain/agreement"
	"peerfund-core/internal/domain/errs"
)

func scheduleStart() time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
}

func sumAmounts(rows []agr.Installment) int64 {
	var s int64
	for _, r := range rows {
		s += r.Amount
	}
	return s
}

func TestBuildSchedule_SumsExactlyToPrincipal(t *testing.T) {
	cases := []struct {
		name      string
		principal int64
		rateBps   int64
		term      int
	}{
		{"spec example", 75000, 900, 12},
		{"indivisible principal", 100001, 1200, 7},
		{"single installment", 50000, 1500, 1},
		{"zero rate", 10000, 0, 3},
		{"zero rate indivisible", 10001, 0, 3},
		{"large principal", 5_000_000, 850, 12},
		{"tiny principal", 13, 500, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := BuildSchedule(tc.principal, tc.rateBps, tc.term, scheduleStart())
			if err != nil {
				t.Fatalf("BuildSchedule err: %v", err)
			}
			if len(rows) != tc.term {
				t.Fatalf("len=%d want %d", len(rows), tc.term)
			}
			if got := sumAmounts(rows); got != tc.principal {
				t.Fatalf("sum=%d want %d", got, tc.principal)
			}
			for i, r := range rows {
				if r.Amount <= 0 {
					t.Fatalf("installment %d non-positive: %d", i, r.Amount)
				}
				if r.Status != agr.InstallmentPending {
					t.Fatalf("installment %d status=%s", i, r.Status)
				}
				wantDue := scheduleStart().Add(time.Duration(i+1) * installmentPeriod)
				if !r.DueAt.Equal(wantDue) {
					t.Fatalf("installment %d due=%v want %v", i, r.DueAt, wantDue)
				}
			}
		})
	}
}

func TestBuildSchedule_EqualBodyWithResidualTail(t *testing.T) {
	rows, err := BuildSchedule(75000, 900, 12, scheduleStart())
	if err != nil {
		t.Fatalf("BuildSchedule err: %v", err)
	}
	body := rows[0].Amount
	for i := 0; i < len(rows)-1; i++ {
		if rows[i].Amount != body {
			t.Fatalf("installment %d amount=%d, body=%d", i, rows[i].Amount, body)
		}
	}
	last := rows[len(rows)-1].Amount
	if body*11+last != 75000 {
		t.Fatalf("residual correction broken: body=%d last=%d", body, last)
	}
}

func TestBuildSchedule_RejectsInvalidInputs(t *testing.T) {
	cases := []struct {
		name      string
		principal int64
		rateBps   int64
		term      int
	}{
		{"zero principal", 0, 900, 12},
		{"negative principal", -1, 900, 12},
		{"zero term", 1000, 900, 0},
		{"negative rate", 1000, -1, 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := BuildSchedule(tc.principal, tc.rateBps, tc.term, scheduleStart()); !errors.Is(err, errs.ErrInvalidRange) {
				t.Fatalf("want ErrInvalidRange, got %v", err)
			}
		})
	}
}

func TestBuildSchedule_RejectsNonPositiveTail(t *testing.T) {
	// High rate over a long term pushes the rounded annuity body above
	// principal/term far enough that the residual goes negative.
	if _, err := BuildSchedule(1000, 10000, 24, scheduleStart()); !errors.Is(err, errs.ErrInvalidRange) {
		t.Fatalf("want ErrInvalidRange for negative tail, got %v", err)
	}
}
