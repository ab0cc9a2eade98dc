package alert

import "time"

type CreateAlertDTO struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Severity       string `json:"severity"`
	Source         string `json:"source"`
	OrganizationID int64  `json:"organization_id"`
	ClusterID      int64  `json:"cluster_id"`
}

func (d CreateAlertDTO) Validate() error {
	if d.Title == "" {
		return ValidationError{Msg: "title is required"}
	}
	if !ValidSeverity(d.Severity) {
		return ValidationError{Msg: "severity must be critical, warning or info"}
	}
	if d.OrganizationID <= 0 {
		return ValidationError{Msg: "organization_id is required"}
	}
	return nil
}

type UpdateAlertDTO struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Severity    *string `json:"severity"`
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

type AlertResponse struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Severity       string     `json:"severity"`
	Status         string     `json:"status"`
	Source         string     `json:"source,omitempty"`
	OrganizationID int64      `json:"organization_id"`
	ClusterID      int64      `json:"cluster_id,omitempty"`
	AcknowledgedBy int64      `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type AlertsResponse struct {
	Alerts []AlertResponse `json:"alerts"`
	Total  int             `json:"total"`
}
