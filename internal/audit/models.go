package audit

import (
	"time"

	id "beacon/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	// UserID is the primary subject of the event: the kid for tracking
	// events, the guardian for account and zone events.
	UserID    id.UserID
	Action    string
	Detail    string
	RequestID string
	// ActorID tracks who performed the action when different from UserID,
	// e.g. the guardian creating a kid account.
	ActorID string
}

type AuditEvent string

const (
	EventParentRegistered AuditEvent = "parent_registered"
	EventKidRegistered    AuditEvent = "kid_registered"
	EventDeviceClaimed    AuditEvent = "device_claimed"

	EventZoneCreated AuditEvent = "zone_created"
	EventZoneDeleted AuditEvent = "zone_deleted"

	EventAlertRaised   AuditEvent = "alert_raised"
	EventKidMarkedSafe AuditEvent = "kid_marked_safe"
)
