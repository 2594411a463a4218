package model

import (
	"time"
)

// AuditLog is one request as seen by the gateway.
type AuditLog struct {
	ID        string `json:"id"`        // request id (UUID)
	ClientID  string `json:"client_id"` // authenticated client, "anonymous" when keys are off
	Method    string `json:"method"`
	Path      string `json:"path"`
	IP        string `json:"ip"`
	UserAgent string `json:"user_agent"`

	// Redacted before storage
	RequestBody   string `json:"request_body"`
	RequestHeader string `json:"request_header"`

	StatusCode   int    `json:"status_code"`
	ResponseBody string `json:"response_body"`
	LatencyMs    int64  `json:"latency_ms"`

	// Handler supplied context: contract name, outcome, violated rules
	Context map[string]interface{} `json:"context"`

	CreatedAt time.Time `json:"created_at"`
}

// ContractRejection records a payload that failed to decode or validate.
type ContractRejection struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RequestID string    `gorm:"size:64;index" json:"request_id"`
	ClientID  string    `gorm:"size:128;index:idx_rejections_client_created,priority:1" json:"client_id"`
	Contract  string    `gorm:"size:128;index" json:"contract"`
	Kind      string    `gorm:"size:32" json:"kind"` // invalid, unrecognized_enum, malformed
	Fields    string    `gorm:"type:text" json:"fields"`
	Message   string    `gorm:"type:text" json:"message"`
	Payload   string    `gorm:"type:text" json:"payload"`
	CreatedAt time.Time `gorm:"index:idx_rejections_client_created,priority:2" json:"created_at"`
}

func (ContractRejection) TableName() string { return "contract_rejections" }

// RejectionFilter narrows a rejection listing. Zero values match everything.
type RejectionFilter struct {
	ClientID string
	Contract string
	From     *time.Time
	To       *time.Time
	Limit    int
}

// DailyUsage counts one client's contract checks for one UTC day.
type DailyUsage struct {
	ClientID   string           `json:"client_id"`
	Day        string           `json:"day"` // 2006-01-02
	Accepted   int64            `json:"accepted"`
	Rejected   int64            `json:"rejected"`
	ByContract map[string]int64 `json:"by_contract"`
}
