package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"peerfund-core/internal/adapter/middleware"
	"peerfund-core/internal/domain/errs"

	"github.com/labstack/echo/v4"
)

// ---- helpers ----

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// actorID returns the caller identity the idempotency middleware already
// validated for mutating routes; reads check it themselves when needed.
func actorID(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get("Ax-Actor-Id"))
}

// requestAt returns the client-declared submission instant, falling
// back to now. Creation handlers feed it into key derivation so an
// identical resubmission derives the identical key.
func requestAt(c echo.Context) time.Time {
	if t, err := middleware.ParseRequestAt(c.Request().Header.Get("Ax-Request-At")); err == nil {
		return t
	}
	return time.Now().UTC()
}

// writeDomainErr maps the error taxonomy onto HTTP statuses in one place.
func writeDomainErr(c echo.Context, err error) error {
	var code int
	switch {
	case errors.Is(err, errs.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errs.ErrAlreadyExists),
		errors.Is(err, errs.ErrInvalidState),
		errors.Is(err, errs.ErrAlreadyVerified):
		code = http.StatusConflict
	case errors.Is(err, errs.ErrUnauthorized):
		code = http.StatusForbidden
	case errors.Is(err, errs.ErrInvalidRange),
		errors.Is(err, errs.ErrExpired),
		errors.Is(err, errs.ErrAmountMismatch),
		errors.Is(err, errs.ErrTermMismatch):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrInsufficientFunds):
		code = http.StatusPaymentRequired
	default:
		code = http.StatusInternalServerError
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}
