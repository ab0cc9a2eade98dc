package cluster

import "time"

type Cluster struct {
	ID             int64     `gorm:"primaryKey"`
	Name           string    `gorm:"column:name;uniqueIndex;not null"`
	Provider       string    `gorm:"column:provider"`
	Region         string    `gorm:"column:region"`
	OrganizationID int64     `gorm:"column:organization_id;index;not null"`
	NodeCount      int       `gorm:"column:node_count"`
	ReadyNodes     int       `gorm:"column:ready_nodes"`
	Version        string    `gorm:"column:version"`
	Health         string    `gorm:"column:health;default:unknown"`
	IsActive       bool      `gorm:"column:is_active;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Cluster) TableName() string { return "clusters" }
