package agreement

import (
	"time"

	"gorm.io/gorm"
)

type LoanStatus string

const (
	StatusPending   LoanStatus = "pending"
	StatusActive    LoanStatus = "active"
	StatusCompleted LoanStatus = "completed"
	StatusDefaulted LoanStatus = "defaulted"
	StatusCancelled LoanStatus = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s LoanStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusDefaulted, StatusCancelled:
		return true
	}
	return false
}

type InstallmentStatus string

const (
	InstallmentPending   InstallmentStatus = "pending"
	InstallmentPaid      InstallmentStatus = "paid"
	InstallmentLate      InstallmentStatus = "late"
	InstallmentDefaulted InstallmentStatus = "defaulted"
)

// Loan is the binding agreement produced by matching an offer with a
// request. The installment schedule is generated once at creation and
// never resized; NextInstallment indexes the first unpaid row.
type Loan struct {
	ID              uint64         `gorm:"primaryKey;column:id" json:"-"`
	LoanKey         string         `gorm:"size:32;uniqueIndex:ux_loans_loan_key" json:"loan_key"`
	OfferKey        string         `gorm:"size:32;index" json:"offer_key"`
	RequestKey      string         `gorm:"size:32;index" json:"request_key"`
	BorrowerID      string         `gorm:"size:32;index:idx_loans_borrower" json:"borrower_id"`
	LenderID        string         `gorm:"size:32;index:idx_loans_lender" json:"lender_id"`
	Principal       int64          `json:"principal"`
	RateBps         int64          `json:"rate_bps"`
	Term            int            `json:"term_months"`
	StartAt         time.Time      `json:"start_at"`
	EndAt           time.Time      `json:"end_at"`
	NextInstallment int            `json:"next_installment"`
	Status          LoanStatus     `gorm:"type:enum('pending','active','completed','defaulted','cancelled');default:'pending'" json:"status"`
	TotalRepaid     int64          `json:"total_repaid"`
	MetadataRef     string         `gorm:"type:text" json:"metadata_ref"`
	StatusUpdatedAt time.Time      `gorm:"autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// Installment is one scheduled repayment obligation. Rows are owned
// exclusively by their loan and keyed by (loan_key, idx).
type Installment struct {
	ID      uint64            `gorm:"primaryKey;column:id" json:"-"`
	LoanKey string            `gorm:"size:32;uniqueIndex:ux_installments_loan_idx,priority:1" json:"loan_key"`
	Idx     int               `gorm:"uniqueIndex:ux_installments_loan_idx,priority:2" json:"idx"`
	Amount  int64             `json:"amount"`
	DueAt   time.Time         `json:"due_at"`
	PaidAt  *time.Time        `json:"paid_at,omitempty"`
	Status  InstallmentStatus `gorm:"type:enum('pending','paid','late','defaulted');default:'pending'" json:"status"`
}

func (Installment) TableName() string { return "installments" }
