package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/opsvista/opsvista/internal/rbac"
)

type auditLogRow struct {
	ID             int64     `gorm:"primaryKey;autoIncrement"`
	UserID         int64     `gorm:"column:user_id"`
	OrganizationID int64     `gorm:"column:organization_id"`
	Permission     string    `gorm:"column:permission"`
	Granted        bool      `gorm:"column:granted"`
	Reason         string    `gorm:"column:reason"`
	IPAddress      string    `gorm:"column:ip_address"`
	UserAgent      string    `gorm:"column:user_agent"`
	CheckedAt      time.Time `gorm:"column:checked_at"`
}

func (auditLogRow) TableName() string { return "rbac_audit_log" }

// StatsRepository reads the aggregates behind the admin stats endpoint.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) RoleDistribution(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Role  string
		Count int64
	}
	err := r.db.WithContext(ctx).
		Table("users").
		Select("role, count(*) as count").
		Where("is_active = ?", true).
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	distribution := make(map[string]int64, len(rows))
	for _, row := range rows {
		distribution[row.Role] = row.Count
	}
	return distribution, nil
}

func (r *StatsRepository) RecentAuditEntries(ctx context.Context, limit int) ([]rbac.AuditEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []auditLogRow
	err := r.db.WithContext(ctx).
		Order("checked_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]rbac.AuditEntry, len(rows))
	for i, row := range rows {
		entries[i] = rbac.AuditEntry{
			UserID:         row.UserID,
			OrganizationID: row.OrganizationID,
			Permission:     row.Permission,
			Granted:        row.Granted,
			Reason:         row.Reason,
			IPAddress:      row.IPAddress,
			UserAgent:      row.UserAgent,
			CheckedAt:      row.CheckedAt,
		}
	}
	return entries, nil
}
