package http

import (
	"net/http"

	"peerfund-core/internal/usecase/document"

	"github.com/labstack/echo/v4"
)

type DocumentHandler struct{ uc *document.Usecase }

func NewDocumentHandler(uc *document.Usecase) *DocumentHandler {
	return &DocumentHandler{uc: uc}
}

type addDocumentReq struct {
	ExternalID  string `json:"external_id"  validate:"required"`
	DocType     string `json:"doc_type"     validate:"required"`
	ContentHash string `json:"content_hash" validate:"required,hex64"`
}

type addVerifierReq struct {
	Identity string `json:"identity" validate:"required,hex32"`
}

func (h *DocumentHandler) AddDocument(c echo.Context) error {
	var req addDocumentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Add(c.Request().Context(), actorID(c), document.AddDocumentInput{
		ExternalID:  req.ExternalID,
		DocType:     req.DocType,
		ContentHash: req.ContentHash,
		SubmittedAt: requestAt(c),
	})
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *DocumentHandler) VerifyDocument(c echo.Context) error {
	dto, err := h.uc.Verify(c.Request().Context(), actorID(c), c.Param("document_key"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *DocumentHandler) GetDocument(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("document_key"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *DocumentHandler) IsVerified(c echo.Context) error {
	ok, err := h.uc.IsVerified(c.Request().Context(), c.Param("document_key"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"verified": ok})
}

func (h *DocumentHandler) ListOwnerDocuments(c echo.Context) error {
	out, err := h.uc.ListOwner(c.Request().Context(), c.Param("owner_id"))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DocumentHandler) AddVerifier(c echo.Context) error {
	var req addVerifierReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	if err := h.uc.AddVerifier(c.Request().Context(), actorID(c), req.Identity); err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"identity": req.Identity})
}

func (h *DocumentHandler) RemoveVerifier(c echo.Context) error {
	if err := h.uc.RemoveVerifier(c.Request().Context(), actorID(c), c.Param("identity")); err != nil {
		return writeDomainErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *DocumentHandler) ListVerifiers(c echo.Context) error {
	out, err := h.uc.ListVerifiers(c.Request().Context())
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]string{"verifiers": out})
}
