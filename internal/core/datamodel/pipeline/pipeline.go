package pipeline

import "time"

type Pipeline struct {
	ID          int64      `gorm:"primaryKey"`
	Name        string     `gorm:"column:name;not null"`
	ProjectID   int64      `gorm:"column:project_id;index;not null"`
	Branch      string     `gorm:"column:branch;default:main"`
	Status      string     `gorm:"column:status;default:idle"`
	LastRunAt   *time.Time `gorm:"column:last_run_at"`
	LastRunBy   int64      `gorm:"column:last_run_by"`
	DurationSec int        `gorm:"column:duration_sec"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Pipeline) TableName() string { return "pipelines" }
