package marketplace

import (
	"time"

	mkt "peerfund-core/internal/domain/marketplace"
)

type CreateOfferInput struct {
	ExternalID  string
	MinAmount   int64
	MaxAmount   int64
	MaxRateBps  int64
	MinTerm     int
	MaxTerm     int
	ExpiresAt   time.Time
	MetadataRef string
}

type UpdateOfferInput struct {
	MinAmount   int64
	MaxAmount   int64
	MaxRateBps  int64
	MinTerm     int
	MaxTerm     int
	ExpiresAt   time.Time
	MetadataRef string
}

type CreateRequestInput struct {
	ExternalID  string
	Amount      int64
	MaxRateBps  int64
	Term        int
	ExpiresAt   time.Time
	Purpose     string
	MetadataRef string
}

type UpdateRequestInput struct {
	Amount      int64
	MaxRateBps  int64
	Term        int
	ExpiresAt   time.Time
	Purpose     string
	MetadataRef string
}

type MatchInput struct {
	OfferKey    string
	RequestKey  string
	Amount      int64
	RateBps     int64
	Term        int
	StartAt     time.Time
	MetadataRef string
}

type OfferDTO struct {
	OfferKey    string    `json:"offer_key"`
	LenderID    string    `json:"lender_id"`
	MinAmount   int64     `json:"min_amount"`
	MaxAmount   int64     `json:"max_amount"`
	MaxRateBps  int64     `json:"max_rate_bps"`
	MinTerm     int       `json:"min_term_months"`
	MaxTerm     int       `json:"max_term_months"`
	ExpiresAt   time.Time `json:"expires_at"`
	Active      bool      `json:"active"`
	MetadataRef string    `json:"metadata_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type RequestDTO struct {
	RequestKey  string    `json:"request_key"`
	BorrowerID  string    `json:"borrower_id"`
	Amount      int64     `json:"amount"`
	MaxRateBps  int64     `json:"max_rate_bps"`
	Term        int       `json:"term_months"`
	ExpiresAt   time.Time `json:"expires_at"`
	Active      bool      `json:"active"`
	Purpose     string    `json:"purpose,omitempty"`
	MetadataRef string    `json:"metadata_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type MatchDTO struct {
	LoanKey    string `json:"loan_key"`
	OfferKey   string `json:"offer_key"`
	RequestKey string `json:"request_key"`
	Principal  int64  `json:"principal"`
	RateBps    int64  `json:"rate_bps"`
	Term       int    `json:"term_months"`
}

func toOfferDTO(o *mkt.Offer) *OfferDTO {
	return &OfferDTO{
		OfferKey:    o.OfferKey,
		LenderID:    o.LenderID,
		MinAmount:   o.MinAmount,
		MaxAmount:   o.MaxAmount,
		MaxRateBps:  o.MaxRateBps,
		MinTerm:     o.MinTerm,
		MaxTerm:     o.MaxTerm,
		ExpiresAt:   o.ExpiresAt,
		Active:      o.Active,
		MetadataRef: o.MetadataRef,
		CreatedAt:   o.CreatedAt,
	}
}

func toRequestDTO(r *mkt.Request) *RequestDTO {
	return &RequestDTO{
		RequestKey:  r.RequestKey,
		BorrowerID:  r.BorrowerID,
		Amount:      r.Amount,
		MaxRateBps:  r.MaxRateBps,
		Term:        r.Term,
		ExpiresAt:   r.ExpiresAt,
		Active:      r.Active,
		Purpose:     r.Purpose,
		MetadataRef: r.MetadataRef,
		CreatedAt:   r.CreatedAt,
	}
}
