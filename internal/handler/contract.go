package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/GoPolymarket/econgate/internal/middleware"
	"github.com/GoPolymarket/econgate/internal/pkg/apperrors"
	"github.com/GoPolymarket/econgate/internal/schema"
	"github.com/GoPolymarket/econgate/internal/service"
	"github.com/gin-gonic/gin"
)

type ContractHandler struct {
	svc *service.ContractService
}

func NewContractHandler(svc *service.ContractService) *ContractHandler {
	return &ContractHandler{svc: svc}
}

// List returns every registered contract, with names grouped by family.
func (h *ContractHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"contracts": h.svc.Catalog(),
		"families":  h.svc.Families(),
	})
}

func (h *ContractHandler) Schema(c *gin.Context) {
	doc, err := h.svc.Schema(c.Param("name"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *ContractHandler) Validate(c *gin.Context) {
	name, body, ok := contractRequest(c)
	if !ok {
		return
	}
	result, err := h.svc.Validate(callerContext(c), name, body)
	if err != nil {
		auditOutcome(c, err)
		c.Error(err)
		return
	}
	auditOutcome(c, nil)
	c.JSON(http.StatusOK, result)
}

func (h *ContractHandler) Normalize(c *gin.Context) {
	name, body, ok := contractRequest(c)
	if !ok {
		return
	}
	wire, err := h.svc.Normalize(callerContext(c), name, body)
	if err != nil {
		auditOutcome(c, err)
		c.Error(err)
		return
	}
	auditOutcome(c, nil)
	c.Data(http.StatusOK, "application/json; charset=utf-8", wire)
}

func (h *ContractHandler) Render(c *gin.Context) {
	name, body, ok := contractRequest(c)
	if !ok {
		return
	}
	text, err := h.svc.Render(callerContext(c), name, body)
	if err != nil {
		auditOutcome(c, err)
		c.Error(err)
		return
	}
	auditOutcome(c, nil)
	c.String(http.StatusOK, text)
}

func contractRequest(c *gin.Context) (string, []byte, bool) {
	name := c.Param("name")
	middleware.AddAuditContext(c, "contract", name)
	body, err := c.GetRawData()
	if err != nil {
		c.Error(apperrors.NewInvalidRequest("failed to read request body"))
		return "", nil, false
	}
	return name, body, true
}

func callerContext(c *gin.Context) context.Context {
	return service.WithCaller(c.Request.Context(), middleware.ClientID(c), middleware.RequestID(c))
}

// auditOutcome tags the audit record with how the contract check ended.
func auditOutcome(c *gin.Context, err error) {
	if err == nil {
		middleware.AddAuditContext(c, "outcome", "ok")
		return
	}
	var ves schema.ValidationErrors
	switch {
	case errors.As(err, &ves):
		middleware.AddAuditContext(c, "outcome", "invalid")
		middleware.AddAuditContext(c, "fields", ves.Fields())
	case errors.Is(err, schema.ErrUnrecognizedEnum):
		middleware.AddAuditContext(c, "outcome", "unrecognized_enum")
	case errors.Is(err, schema.ErrMalformedPayload):
		middleware.AddAuditContext(c, "outcome", "malformed")
	default:
		middleware.AddAuditContext(c, "error", err.Error())
	}
}
