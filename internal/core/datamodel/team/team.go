package team

import "time"

type Team struct {
	ID             int64     `gorm:"primaryKey"`
	Name           string    `gorm:"column:name;not null"`
	Description    string    `gorm:"column:description"`
	OrganizationID int64     `gorm:"column:organization_id;index;not null"`
	IsActive       bool      `gorm:"column:is_active;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Team) TableName() string { return "teams" }

type TeamMember struct {
	ID       int64     `gorm:"primaryKey"`
	TeamID   int64     `gorm:"column:team_id;uniqueIndex:idx_team_user;not null"`
	UserID   int64     `gorm:"column:user_id;uniqueIndex:idx_team_user;not null"`
	Role     string    `gorm:"column:role;default:member"`
	JoinedAt time.Time `gorm:"column:joined_at;autoCreateTime"`
}

func (TeamMember) TableName() string { return "team_members" }
