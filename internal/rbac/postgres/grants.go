package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userPermissionRow struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	UserID     int64     `gorm:"column:user_id;uniqueIndex:idx_user_permission"`
	Permission string    `gorm:"column:permission;uniqueIndex:idx_user_permission"`
	GrantedBy  int64     `gorm:"column:granted_by"`
	GrantedAt  time.Time `gorm:"column:granted_at"`
}

func (userPermissionRow) TableName() string { return "user_permissions" }

// GrantRepository persists direct user permission grants.
type GrantRepository struct {
	db *gorm.DB
}

func NewGrantRepository(db *gorm.DB) *GrantRepository {
	return &GrantRepository{db: db}
}

func (r *GrantRepository) ListGrants(ctx context.Context, userID int64) ([]string, error) {
	var perms []string
	err := r.db.WithContext(ctx).
		Model(&userPermissionRow{}).
		Where("user_id = ?", userID).
		Order("granted_at").
		Pluck("permission", &perms).Error
	if err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *GrantRepository) AddGrant(ctx context.Context, userID int64, permission string, grantedBy int64) error {
	row := userPermissionRow{
		UserID:     userID,
		Permission: permission,
		GrantedBy:  grantedBy,
		GrantedAt:  time.Now(),
	}
	// Granting an already-held permission is a no-op, not an error.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "permission"}},
			DoNothing: true,
		}).
		Create(&row).Error
}

func (r *GrantRepository) RemoveGrant(ctx context.Context, userID int64, permission string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND permission = ?", userID, permission).
		Delete(&userPermissionRow{}).Error
}
