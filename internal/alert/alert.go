package alert

import (
	"time"

	alertDatamodel "github.com/opsvista/opsvista/internal/core/datamodel/alert"
)

// Severity and status values accepted on the wire.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"

	StatusFiring       = "firing"
	StatusAcknowledged = "acknowledged"
	StatusResolved     = "resolved"
)

func ValidSeverity(s string) bool {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

type Alert struct {
	ID             int64
	Title          string
	Description    string
	Severity       string
	Status         string
	Source         string
	OrganizationID int64
	ClusterID      int64
	AcknowledgedBy int64
	AcknowledgedAt *time.Time
	ResolvedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (a *Alert) Acknowledge(userID int64) {
	now := time.Now()
	a.Status = StatusAcknowledged
	a.AcknowledgedBy = userID
	a.AcknowledgedAt = &now
	a.UpdatedAt = now
}

func (a *Alert) Resolve() {
	now := time.Now()
	a.Status = StatusResolved
	a.ResolvedAt = &now
	a.UpdatedAt = now
}

func (a *Alert) ToResponse() AlertResponse {
	return AlertResponse{
		ID:             a.ID,
		Title:          a.Title,
		Description:    a.Description,
		Severity:       a.Severity,
		Status:         a.Status,
		Source:         a.Source,
		OrganizationID: a.OrganizationID,
		ClusterID:      a.ClusterID,
		AcknowledgedBy: a.AcknowledgedBy,
		AcknowledgedAt: a.AcknowledgedAt,
		ResolvedAt:     a.ResolvedAt,
		CreatedAt:      a.CreatedAt,
	}
}

func ToDataModel(a *Alert) *alertDatamodel.Alert {
	return &alertDatamodel.Alert{
		ID:             a.ID,
		Title:          a.Title,
		Description:    a.Description,
		Severity:       a.Severity,
		Status:         a.Status,
		Source:         a.Source,
		OrganizationID: a.OrganizationID,
		ClusterID:      a.ClusterID,
		AcknowledgedBy: a.AcknowledgedBy,
		AcknowledgedAt: a.AcknowledgedAt,
		ResolvedAt:     a.ResolvedAt,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func FromDataModel(a *alertDatamodel.Alert) *Alert {
	return &Alert{
		ID:             a.ID,
		Title:          a.Title,
		Description:    a.Description,
		Severity:       a.Severity,
		Status:         a.Status,
		Source:         a.Source,
		OrganizationID: a.OrganizationID,
		ClusterID:      a.ClusterID,
		AcknowledgedBy: a.AcknowledgedBy,
		AcknowledgedAt: a.AcknowledgedAt,
		ResolvedAt:     a.ResolvedAt,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}
