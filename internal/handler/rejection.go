package handler

import (
	"net/http"

	"github.com/GoPolymarket/econgate/internal/model"
	"github.com/GoPolymarket/econgate/internal/service"
	"github.com/gin-gonic/gin"
)

type RejectionHandler struct {
	svc *service.ContractService
}

func NewRejectionHandler(svc *service.ContractService) *RejectionHandler {
	return &RejectionHandler{svc: svc}
}

// List is an admin endpoint; ?client= and ?contract= narrow the result.
func (h *RejectionHandler) List(c *gin.Context) {
	q, ok := parseListQuery(c)
	if !ok {
		return
	}
	records, err := h.svc.Rejections(c.Request.Context(), model.RejectionFilter{
		ClientID: q.clientID,
		Contract: c.Query("contract"),
		From:     q.from,
		To:       q.to,
		Limit:    q.limit,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, records)
}
