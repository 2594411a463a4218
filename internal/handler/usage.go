package handler

import (
	"net/http"

	"github.com/GoPolymarket/econgate/internal/middleware"
	"github.com/GoPolymarket/econgate/internal/service"
	"github.com/gin-gonic/gin"
)

type UsageHandler struct {
	svc *service.ContractService
}

func NewUsageHandler(svc *service.ContractService) *UsageHandler {
	return &UsageHandler{svc: svc}
}

// Get reports today's accepted and rejected checks for the calling client.
func (h *UsageHandler) Get(c *gin.Context) {
	usage, err := h.svc.Usage(c.Request.Context(), middleware.ClientID(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, usage)
}
