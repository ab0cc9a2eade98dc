package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/opsvista/opsvista/internal/alert"
	alertDatamodel "github.com/opsvista/opsvista/internal/core/datamodel/alert"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) alert.RepositoryAPI {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) GetAll(orgID int64, status, severity string) ([]*alertDatamodel.Alert, error) {
	query := r.db.Order("created_at DESC")
	if orgID > 0 {
		query = query.Where("organization_id = ?", orgID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if severity != "" {
		query = query.Where("severity = ?", severity)
	}

	var alerts []*alertDatamodel.Alert
	err := query.Find(&alerts).Error
	return alerts, err
}

func (r *AlertRepository) GetByID(id int64) (*alertDatamodel.Alert, error) {
	var row alertDatamodel.Alert
	err := r.db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *AlertRepository) Create(row *alertDatamodel.Alert) error {
	return r.db.Create(row).Error
}

func (r *AlertRepository) Update(row *alertDatamodel.Alert) error {
	return r.db.Save(row).Error
}

func (r *AlertRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&alertDatamodel.Alert{}).Error
}
