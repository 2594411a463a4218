package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/GoPolymarket/econgate/internal/model"
	"github.com/GoPolymarket/econgate/internal/pkg/apperrors"
	"github.com/GoPolymarket/econgate/internal/service"
	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	svc *service.AuditService
}

func NewAuditHandler(svc *service.AuditService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// List is an admin endpoint; ?client= narrows to one client.
func (h *AuditHandler) List(c *gin.Context) {
	q, ok := parseListQuery(c)
	if !ok {
		return
	}
	records, err := h.svc.List(c.Request.Context(), q.clientID, q.limit, q.from, q.to)
	if err != nil {
		c.Error(apperrors.New(apperrors.ErrInternal, err.Error(), err))
		return
	}
	if records == nil {
		records = []*model.AuditLog{}
	}
	c.JSON(http.StatusOK, records)
}

type listQuery struct {
	clientID string
	limit    int
	from     *time.Time
	to       *time.Time
}

func parseListQuery(c *gin.Context) (listQuery, bool) {
	q := listQuery{clientID: c.Query("client"), limit: 100}
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			q.limit = parsed
		}
	}
	for _, p := range []struct {
		key string
		dst **time.Time
	}{{"from", &q.from}, {"to", &q.to}} {
		raw := c.Query(p.key)
		if raw == "" {
			continue
		}
		t, err := parseTime(raw)
		if err != nil {
			c.Error(apperrors.NewInvalidRequest(fmt.Sprintf("%s: %v", p.key, err)))
			return q, false
		}
		*p.dst = &t
	}
	return q, true
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid time format")
}
