package agreement

import (
	"time"

	agr "peerfund-core/internal/domain/agreement"
)

type CreateLoanInput struct {
	OfferKey    string
	RequestKey  string
	BorrowerID  string
	LenderID    string
	Principal   int64
	RateBps     int64
	Term        int
	StartAt     time.Time
	MetadataRef string
	// ExternalID seeds the content-addressed loan key; the marketplace
	// passes the matched pair, direct callers a fresh reference.
	ExternalID string
}

type InstallmentDTO struct {
	Idx    int        `json:"idx"`
	Amount int64      `json:"amount"`
	DueAt  time.Time  `json:"due_at"`
	PaidAt *time.Time `json:"paid_at,omitempty"`
	Status string     `json:"status"`
}

type LoanDTO struct {
	LoanKey         string           `json:"loan_key"`
	OfferKey        string           `json:"offer_key,omitempty"`
	RequestKey      string           `json:"request_key,omitempty"`
	BorrowerID      string           `json:"borrower_id"`
	LenderID        string           `json:"lender_id"`
	Principal       int64            `json:"principal"`
	RateBps         int64            `json:"rate_bps"`
	Term            int              `json:"term_months"`
	StartAt         time.Time        `json:"start_at"`
	EndAt           time.Time        `json:"end_at"`
	NextInstallment int              `json:"next_installment"`
	Status          string           `json:"status"`
	TotalRepaid     int64            `json:"total_repaid"`
	Schedule        []InstallmentDTO `json:"schedule,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

func toLoanDTO(l *agr.Loan, rows []agr.Installment) *LoanDTO {
	dto := &LoanDTO{
		LoanKey:         l.LoanKey,
		OfferKey:        l.OfferKey,
		RequestKey:      l.RequestKey,
		BorrowerID:      l.BorrowerID,
		LenderID:        l.LenderID,
		Principal:       l.Principal,
		RateBps:         l.RateBps,
		Term:            l.Term,
		StartAt:         l.StartAt,
		EndAt:           l.EndAt,
		NextInstallment: l.NextInstallment,
		Status:          string(l.Status),
		TotalRepaid:     l.TotalRepaid,
		CreatedAt:       l.CreatedAt,
	}
	for _, row := range rows {
		dto.Schedule = append(dto.Schedule, InstallmentDTO{
			Idx:    row.Idx,
			Amount: row.Amount,
			DueAt:  row.DueAt,
			PaidAt: row.PaidAt,
			Status: string(row.Status),
		})
	}
	return dto
}
