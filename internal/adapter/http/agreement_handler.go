package http

import (
	"net/http"
	"time"

	"peerfund-core/internal/usecase/agreement"

	"github.com/labstack/echo/v4"
)

type AgreementHandler struct{ uc *agreement.Usecase }

func NewAgreementHandler(uc *agreement.Usecase) *AgreementHandler {
	return &AgreementHandler{uc: uc}
}

type createLoanReq struct {
	ExternalID  string    `json:"external_id"  validate:"required"`
	BorrowerID  string    `json:"borrower_id"  validate:"required,hex32"`
	LenderID    string    `json:"lender_id"    validate:"required,hex32"`
	Principal   int64     `json:"principal"    validate:"required,gt=0"`
	RateBps     int64     `json:"rate_bps"     validate:"bps"`
	Term        int       `json:"term_months"  validate:"required,gt=0"`
	StartAt     time.Time `json:"start_at"     validate:"required"`
	MetadataRef string    `json:"metadata_ref"`
}

type fundLoanReq struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type paymentReq struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// CreateLoan is the matcher-only direct creation path; matched pairs
// normally arrive through POST /matches instead.
func (h *AgreementHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Create(c.Request().Context(), actorID(c), agreement.CreateLoanInput{
		ExternalID:  req.ExternalID,
		BorrowerID:  req.BorrowerID,
		LenderID:    req.LenderID,
		Principal:   req.Principal,
		RateBps:     req.RateBps,
		Term:        req.Term,
		StartAt:     req.StartAt,
		MetadataRef: req.MetadataRef,
	})
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *AgreementHandler) GetLoan(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("loan_key"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AgreementHandler) FundLoan(c echo.Context) error {
	var req fundLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Fund(c.Request().Context(), actorID(c), c.Param("loan_key"), req.Amount)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AgreementHandler) MakePayment(c echo.Context) error {
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Pay(c.Request().Context(), actorID(c), c.Param("loan_key"), req.Amount)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AgreementHandler) MarkDefaulted(c echo.Context) error {
	dto, err := h.uc.MarkDefaulted(c.Request().Context(), actorID(c), c.Param("loan_key"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AgreementHandler) CancelLoan(c echo.Context) error {
	dto, err := h.uc.Cancel(c.Request().Context(), actorID(c), c.Param("loan_key"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
