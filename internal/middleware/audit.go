package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/GoPolymarket/econgate/internal/model"
	"github.com/GoPolymarket/econgate/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ContextAuditLog  = "audit_log"
	ContextRequestID = "request_id"
	HeaderRequestID  = "X-Request-ID"

	// Bodies beyond this are stored truncated.
	maxAuditBody = 64 << 10
)

// bodyLogWriter captures the response body for the audit record
type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func AuditMiddleware(auditSvc *service.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.New().String()
		}
		c.Header(HeaderRequestID, reqID)
		c.Set(ContextRequestID, reqID)

		// Read the body and put it back for the handler
		var reqBodyBytes []byte
		if c.Request.Body != nil {
			reqBodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(reqBodyBytes))
		}

		auditEntry := &model.AuditLog{
			ID:        reqID,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			CreatedAt: start,
			Context:   make(map[string]interface{}),
		}
		c.Set(ContextAuditLog, auditEntry)

		blw := &bodyLogWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		auditEntry.ClientID = ClientID(c)
		auditEntry.RequestHeader = auditHeaders(c)
		auditEntry.RequestBody = redactAuditBody(c.Request.URL.Path, reqBodyBytes)
		auditEntry.StatusCode = c.Writer.Status()
		auditEntry.ResponseBody = redactAuditBody(c.Request.URL.Path, blw.body.Bytes())
		auditEntry.LatencyMs = time.Since(start).Milliseconds()

		if auditSvc != nil {
			auditSvc.Log(auditEntry)
		}
	}
}

// AddAuditContext lets handlers attach domain context to the request's audit record.
func AddAuditContext(c *gin.Context, key string, value interface{}) {
	if val, exists := c.Get(ContextAuditLog); exists {
		if entry, ok := val.(*model.AuditLog); ok {
			entry.Context[key] = value
		}
	}
}

// RequestID returns the id AuditMiddleware assigned, if any.
func RequestID(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}

func auditHeaders(c *gin.Context) string {
	parts := make([]string, 0, 3)
	for _, name := range []string{"Content-Type", HeaderIdempotencyKey, "Origin"} {
		if v := c.GetHeader(name); v != "" {
			parts = append(parts, name+": "+v)
		}
	}
	return strings.Join(parts, "\n")
}

func redactAuditBody(path string, body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if !isSensitivePath(path) {
		return truncateBody(body)
	}
	redacted, ok := redactJSON(body)
	if !ok {
		return "[redacted]"
	}
	return truncateBody(redacted)
}

func truncateBody(body []byte) string {
	if len(body) > maxAuditBody {
		return string(body[:maxAuditBody]) + "...[truncated]"
	}
	return string(body)
}

func isSensitivePath(path string) bool {
	switch {
	case strings.HasPrefix(path, "/v1/contracts"):
		return true
	case strings.HasPrefix(path, "/v1/events"):
		return true
	case strings.HasPrefix(path, "/v1/audit"):
		return true
	default:
		return false
	}
}

func redactJSON(body []byte) ([]byte, bool) {
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, false
	}
	redactValue(&data)
	out, err := json.Marshal(data)
	if err != nil {
		return nil, false
	}
	return out, true
}

func redactValue(v *interface{}) {
	switch raw := (*v).(type) {
	case map[string]interface{}:
		for key, val := range raw {
			if isSensitiveKey(key) {
				raw[key] = "***"
				continue
			}
			vv := val
			redactValue(&vv)
			raw[key] = vv
		}
	case []interface{}:
		for i, val := range raw {
			vv := val
			redactValue(&vv)
			raw[i] = vv
		}
	}
}

// Keys are compared case-insensitively with separators removed, so
// api_key, apiKey and API-KEY all match.
func isSensitiveKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.NewReplacer("_", "", "-", "").Replace(k)
	switch k {
	case "apikey",
		"gatewaykey",
		"adminkey",
		"password",
		"secret",
		"token",
		"sessiontoken",
		"authorization",
		"ipaddress":
		return true
	default:
		return false
	}
}
