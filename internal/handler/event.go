package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/GoPolymarket/econgate/internal/middleware"
	"github.com/GoPolymarket/econgate/internal/pkg/apperrors"
	"github.com/GoPolymarket/econgate/internal/service"
	"github.com/GoPolymarket/econgate/internal/stream"
	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	svc *service.ContractService
	hub *stream.Hub
}

func NewEventHandler(svc *service.ContractService, hub *stream.Hub) *EventHandler {
	return &EventHandler{svc: svc, hub: hub}
}

func (h *EventHandler) Publish(c *gin.Context) {
	name, body, ok := contractRequest(c)
	if !ok {
		return
	}
	result, err := h.svc.Publish(callerContext(c), name, body)
	if err != nil {
		auditOutcome(c, err)
		if errors.Is(err, service.ErrNotEvent) {
			c.Error(apperrors.NewInvalidRequest(err.Error()))
			return
		}
		c.Error(err)
		return
	}
	auditOutcome(c, nil)
	middleware.AddAuditContext(c, "delivered", result.Delivered)
	c.JSON(http.StatusAccepted, result)
}

// Stream upgrades to a websocket. ?contract=a,b limits the feed; every
// published event is sent otherwise.
func (h *EventHandler) Stream(c *gin.Context) {
	var contracts []string
	if raw := c.Query("contract"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if !h.isEvent(name) {
				c.Error(apperrors.NewInvalidRequest("not an event contract: " + name))
				return
			}
			contracts = append(contracts, name)
		}
	}
	if err := h.hub.ServeWS(c.Writer, c.Request, contracts); err != nil {
		// Upgrade has already written the HTTP error
		middleware.AddAuditContext(c, "error", err.Error())
	}
}

func (h *EventHandler) isEvent(name string) bool {
	for _, d := range h.svc.Catalog() {
		if d.Name == name {
			return d.Event
		}
	}
	return false
}
