package http

import (
	"net/http"
	"strconv"

	"peerfund-core/internal/usecase/account"
	"peerfund-core/internal/usecase/event"

	"github.com/labstack/echo/v4"
)

type AccountHandler struct{ uc *account.Usecase }

func NewAccountHandler(uc *account.Usecase) *AccountHandler { return &AccountHandler{uc: uc} }

type depositReq struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

func (h *AccountHandler) Deposit(c echo.Context) error {
	var req depositReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Deposit(c.Request().Context(), actorID(c), c.Param("identity"), req.Amount)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AccountHandler) GetAccount(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("identity"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type EventHandler struct{ uc *event.Usecase }

func NewEventHandler(uc *event.Usecase) *EventHandler { return &EventHandler{uc: uc} }

// ListEvents is the durable feed external collaborators poll with their
// last-seen sequence number.
func (h *EventHandler) ListEvents(c echo.Context) error {
	after, _ := strconv.ParseUint(c.QueryParam("after"), 10, 64)
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	rows, err := h.uc.List(c.Request().Context(), after, limit)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"events": rows})
}
