package model

import (
	"time"

	"github.com/GoPolymarket/econgate/internal/schema"
	"github.com/google/uuid"
)

// InfrastructureInstance is a built facility in a district. RequiredStaff
// maps role to head count; OpenHours maps weekday to a "HH:MM-HH:MM" window.
type InfrastructureInstance struct {
	InstanceID    string                 `json:"instanceId" validate:"required"`
	DistrictID    string                 `json:"districtId" validate:"required"`
	DistrictName  string                 `json:"districtName,omitempty"`
	Category      InfrastructureCategory `json:"category" validate:"required,enum"`
	Name          string                 `json:"name,omitempty"`
	State         InfrastructureState    `json:"state" validate:"required,enum"`
	Capacity      int                    `json:"capacity" validate:"gte=0"`
	Utilization   schema.Decimal         `json:"utilization" validate:"required,dgte=0"`
	RequiredStaff map[string]int         `json:"requiredStaff" validate:"dive,gte=0"`
	OpenHours     map[string]string      `json:"openHours"`
	OwnerFaction  string                 `json:"ownerFaction,omitempty"`
	RiskLevel     *RiskLevel             `json:"riskLevel,omitempty" validate:"omitempty,enum"`
}

func (i *InfrastructureInstance) PutRequiredStaff(role string, count int) *InfrastructureInstance {
	schema.Put(&i.RequiredStaff, role, count)
	return i
}

func (i *InfrastructureInstance) PutOpenHours(day, window string) *InfrastructureInstance {
	schema.Put(&i.OpenHours, day, window)
	return i
}

// InfrastructureInstanceChange is the event emitted when an instance is
// added, updated or removed. Before and after snapshots follow the kind of
// change.
type InfrastructureInstanceChange struct {
	ChangeID   uuid.UUID               `json:"change_id" validate:"required"`
	ChangeType ChangeType              `json:"change_type" validate:"required,enum"`
	InstanceID string                  `json:"instance_id" validate:"required"`
	Before     *InfrastructureInstance `json:"before,omitempty"`
	After      *InfrastructureInstance `json:"after,omitempty"`
	ChangedAt  time.Time               `json:"changed_at" validate:"required"`
}

func (c InfrastructureInstanceChange) Invariants() []schema.Violation {
	var out []schema.Violation
	need := func(field string, present, want bool) {
		if present == want {
			return
		}
		msg := field + " is required for a " + string(c.ChangeType) + " change"
		if !want {
			msg = field + " must be omitted for a " + string(c.ChangeType) + " change"
		}
		out = append(out, schema.Violation{Field: field, Rule: "change_snapshots", Message: msg})
	}
	switch c.ChangeType {
	case ChangeAdded:
		need("before", c.Before != nil, false)
		need("after", c.After != nil, true)
	case ChangeRemoved:
		need("before", c.Before != nil, true)
		need("after", c.After != nil, false)
	case ChangeUpdated:
		need("before", c.Before != nil, true)
		need("after", c.After != nil, true)
	}
	return out
}

type InfrastructureJobLog struct {
	JobID    string            `json:"job_id" validate:"required"`
	Level    JobLogLevel       `json:"level" validate:"required,enum"`
	Message  string            `json:"message" validate:"required"`
	LoggedAt time.Time         `json:"logged_at" validate:"required"`
	Context  map[string]string `json:"context"`
}

func (l *InfrastructureJobLog) PutContext(key, value string) *InfrastructureJobLog {
	schema.Put(&l.Context, key, value)
	return l
}
