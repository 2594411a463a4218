package handler

import (
	"net/http"

	"github.com/GoPolymarket/econgate/internal/service"
	"github.com/gin-gonic/gin"
)

type EnumHandler struct {
	svc *service.ContractService
}

func NewEnumHandler(svc *service.ContractService) *EnumHandler {
	return &EnumHandler{svc: svc}
}

func (h *EnumHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Enums())
}

// Parse checks one label against a closed set.
func (h *EnumHandler) Parse(c *gin.Context) {
	name, label := c.Param("name"), c.Param("label")
	value, err := h.svc.ParseEnum(name, label)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"enum": name, "label": label, "value": value})
}
