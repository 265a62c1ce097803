package marketplace

import (
	"time"

	"gorm.io/gorm"
)

// Offer is a lender's standing willingness to fund a loan within stated
// bounds. Amounts are int64 minor units; rates are basis points.
type Offer struct {
	ID          uint64         `gorm:"primaryKey;column:id" json:"-"`
	OfferKey    string         `gorm:"size:32;uniqueIndex:ux_offers_offer_key" json:"offer_key"`
	LenderID    string         `gorm:"size:32;index:idx_offers_lender" json:"lender_id"`
	MinAmount   int64          `json:"min_amount"`
	MaxAmount   int64          `json:"max_amount"`
	MaxRateBps  int64          `json:"max_rate_bps"`
	MinTerm     int            `json:"min_term_months"`
	MaxTerm     int            `json:"max_term_months"`
	ExpiresAt   time.Time      `json:"expires_at"`
	Active      bool           `gorm:"index:idx_offers_lender" json:"active"`
	MetadataRef string         `gorm:"type:text" json:"metadata_ref"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Offer) TableName() string { return "offers" }

// Request is a borrower's standing ask for funding.
type Request struct {
	ID          uint64         `gorm:"primaryKey;column:id" json:"-"`
	RequestKey  string         `gorm:"size:32;uniqueIndex:ux_requests_request_key" json:"request_key"`
	BorrowerID  string         `gorm:"size:32;index:idx_requests_borrower" json:"borrower_id"`
	Amount      int64          `json:"amount"`
	MaxRateBps  int64          `json:"max_rate_bps"`
	Term        int            `json:"term_months"`
	ExpiresAt   time.Time      `json:"expires_at"`
	Active      bool           `gorm:"index:idx_requests_borrower" json:"active"`
	Purpose     string         `gorm:"size:64" json:"purpose"`
	MetadataRef string         `gorm:"type:text" json:"metadata_ref"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Request) TableName() string { return "requests" }
