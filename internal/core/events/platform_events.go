package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	AlertCreatedEvent      = "alert.created"
	AlertAcknowledgedEvent = "alert.acknowledged"
	AlertResolvedEvent     = "alert.resolved"

	PipelineRunStartedEvent = "pipeline.run_started"

	PermissionGrantedEvent = "rbac.permission_granted"
	PermissionRevokedEvent = "rbac.permission_revoked"
)

// NewPlatformEvent builds a BaseEvent with a fresh id and timestamp.
func NewPlatformEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}
