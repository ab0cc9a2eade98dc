package project

import "time"

type Project struct {
	ID             int64     `gorm:"primaryKey"`
	Name           string    `gorm:"column:name;not null"`
	Description    string    `gorm:"column:description"`
	OrganizationID int64     `gorm:"column:organization_id;index;not null"`
	TeamID         int64     `gorm:"column:team_id;index"`
	RepositoryURL  string    `gorm:"column:repository_url"`
	Environment    string    `gorm:"column:environment;default:production"`
	IsActive       bool      `gorm:"column:is_active;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Project) TableName() string { return "projects" }
