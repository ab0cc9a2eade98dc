package alert

import "time"

type Alert struct {
	ID             int64      `gorm:"primaryKey"`
	Title          string     `gorm:"column:title;not null"`
	Description    string     `gorm:"column:description"`
	Severity       string     `gorm:"column:severity;index;not null"`
	Status         string     `gorm:"column:status;index;default:firing"`
	Source         string     `gorm:"column:source"`
	OrganizationID int64      `gorm:"column:organization_id;index;not null"`
	ClusterID      int64      `gorm:"column:cluster_id;index"`
	AcknowledgedBy int64      `gorm:"column:acknowledged_by"`
	AcknowledgedAt *time.Time `gorm:"column:acknowledged_at"`
	ResolvedAt     *time.Time `gorm:"column:resolved_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Alert) TableName() string { return "alerts" }
