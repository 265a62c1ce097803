package http

import (
	"net/http"
	"time"

	"peerfund-core/internal/usecase/marketplace"

	"github.com/labstack/echo/v4"
)

type MarketplaceHandler struct{ uc *marketplace.Usecase }

func NewMarketplaceHandler(uc *marketplace.Usecase) *MarketplaceHandler {
	return &MarketplaceHandler{uc: uc}
}

type createOfferReq struct {
	ExternalID  string    `json:"external_id"    validate:"required"`
	MinAmount   int64     `json:"min_amount"     validate:"required,gt=0"`
	MaxAmount   int64     `json:"max_amount"     validate:"required,gt=0"`
	MaxRateBps  int64     `json:"max_rate_bps"   validate:"required,bps"`
	MinTerm     int       `json:"min_term_months" validate:"required,gt=0"`
	MaxTerm     int       `json:"max_term_months" validate:"required,gt=0"`
	ExpiresAt   time.Time `json:"expires_at"     validate:"required"`
	MetadataRef string    `json:"metadata_ref"`
}

type updateOfferReq struct {
	MinAmount   int64     `json:"min_amount"     validate:"required,gt=0"`
	MaxAmount   int64     `json:"max_amount"     validate:"required,gt=0"`
	MaxRateBps  int64     `json:"max_rate_bps"   validate:"required,bps"`
	MinTerm     int       `json:"min_term_months" validate:"required,gt=0"`
	MaxTerm     int       `json:"max_term_months" validate:"required,gt=0"`
	ExpiresAt   time.Time `json:"expires_at"     validate:"required"`
	MetadataRef string    `json:"metadata_ref"`
}

type createRequestReq struct {
	ExternalID  string    `json:"external_id"   validate:"required"`
	Amount      int64     `json:"amount"        validate:"required,gt=0"`
	MaxRateBps  int64     `json:"max_rate_bps"  validate:"required,bps"`
	Term        int       `json:"term_months"   validate:"required,gt=0"`
	ExpiresAt   time.Time `json:"expires_at"    validate:"required"`
	Purpose     string    `json:"purpose"`
	MetadataRef string    `json:"metadata_ref"`
}

type updateRequestReq struct {
	Amount      int64     `json:"amount"        validate:"required,gt=0"`
	MaxRateBps  int64     `json:"max_rate_bps"  validate:"required,bps"`
	Term        int       `json:"term_months"   validate:"required,gt=0"`
	ExpiresAt   time.Time `json:"expires_at"    validate:"required"`
	Purpose     string    `json:"purpose"`
	MetadataRef string    `json:"metadata_ref"`
}

type matchReq struct {
	OfferKey    string    `json:"offer_key"    validate:"required,hex32"`
	RequestKey  string    `json:"request_key"  validate:"required,hex32"`
	Amount      int64     `json:"amount"       validate:"required,gt=0"`
	RateBps     int64     `json:"rate_bps"     validate:"bps"`
	Term        int       `json:"term_months"  validate:"required,gt=0"`
	StartAt     time.Time `json:"start_at"     validate:"required"`
	MetadataRef string    `json:"metadata_ref"`
}

func (h *MarketplaceHandler) CreateOffer(c echo.Context) error {
	var req createOfferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.CreateOffer(c.Request().Context(), actorID(c), marketplace.CreateOfferInput{
		ExternalID:  req.ExternalID,
		MinAmount:   req.MinAmount,
		MaxAmount:   req.MaxAmount,
		MaxRateBps:  req.MaxRateBps,
		MinTerm:     req.MinTerm,
		MaxTerm:     req.MaxTerm,
		ExpiresAt:   req.ExpiresAt,
		MetadataRef: req.MetadataRef,
	})
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *MarketplaceHandler) UpdateOffer(c echo.Context) error {
	var req updateOfferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.UpdateOffer(c.Request().Context(), actorID(c), c.Param("offer_key"), marketplace.UpdateOfferInput{
		MinAmount:   req.MinAmount,
		MaxAmount:   req.MaxAmount,
		MaxRateBps:  req.MaxRateBps,
		MinTerm:     req.MinTerm,
		MaxTerm:     req.MaxTerm,
		ExpiresAt:   req.ExpiresAt,
		MetadataRef: req.MetadataRef,
	})
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *MarketplaceHandler) CancelOffer(c echo.Context) error {
	dto, err := h.uc.CancelOffer(c.Request().Context(), actorID(c), c.Param("offer_key"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *MarketplaceHandler) GetOffer(c echo.Context) error {
	dto, err := h.uc.GetOffer(c.Request().Context(), c.Param("offer_key"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *MarketplaceHandler) CreateRequest(c echo.Context) error {
	var req createRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.CreateRequest(c.Request().Context(), actorID(c), marketplace.CreateRequestInput{
		ExternalID:  req.ExternalID,
		Amount:      req.Amount,
		MaxRateBps:  req.MaxRateBps,
		Term:        req.Term,
		ExpiresAt:   req.ExpiresAt,
		Purpose:     req.Purpose,
		MetadataRef: req.MetadataRef,
	})
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *MarketplaceHandler) UpdateRequest(c echo.Context) error {
	var req updateRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.UpdateRequest(c.Request().Context(), actorID(c), c.Param("request_key"), marketplace.UpdateRequestInput{
		Amount:      req.Amount,
		MaxRateBps:  req.MaxRateBps,
		Term:        req.Term,
		ExpiresAt:   req.ExpiresAt,
		Purpose:     req.Purpose,
		MetadataRef: req.MetadataRef,
	})
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *MarketplaceHandler) CancelRequest(c echo.Context) error {
	dto, err := h.uc.CancelRequest(c.Request().Context(), actorID(c), c.Param("request_key"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *MarketplaceHandler) GetRequest(c echo.Context) error {
	dto, err := h.uc.GetRequest(c.Request().Context(), c.Param("request_key"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *MarketplaceHandler) Match(c echo.Context) error {
	var req matchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Match(c.Request().Context(), actorID(c), marketplace.MatchInput{
		OfferKey:    req.OfferKey,
		RequestKey:  req.RequestKey,
		Amount:      req.Amount,
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
