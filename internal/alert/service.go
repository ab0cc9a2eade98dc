package alert

import (
	"context"
	"log/slog"

	"github.com/opsvista/opsvista/internal"
	alertDatamodel "github.com/opsvista/opsvista/internal/core/datamodel/alert"
	"github.com/opsvista/opsvista/internal/core/events"
)

type RepositoryAPI interface {
	GetAll(orgID int64, status, severity string) ([]*alertDatamodel.Alert, error)
	GetByID(id int64) (*alertDatamodel.Alert, error)
	Create(alert *alertDatamodel.Alert) error
	Update(alert *alertDatamodel.Alert) error
	Delete(id int64) error
}

type Service struct {
	repo   RepositoryAPI
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{repo: repo, bus: bus, logger: logger}
}

func (s *Service) List(orgID int64, status, severity string) ([]AlertResponse, error) {
	rows, err := s.repo.GetAll(orgID, status, severity)
	if err != nil {
		s.logger.Error("failed to list alerts", "error", err)
		return nil, err
	}

	responses := make([]AlertResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, FromDataModel(row).ToResponse())
	}
	return responses, nil
}

func (s *Service) GetByID(id int64) (*AlertResponse, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrAlertNotFound
	}
	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, dto CreateAlertDTO) (*AlertResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	domain := &Alert{
		Title:          dto.Title,
		Description:    dto.Description,
		Severity:       dto.Severity,
		Status:         StatusFiring,
		Source:         dto.Source,
		OrganizationID: dto.OrganizationID,
		ClusterID:      dto.ClusterID,
	}

	row := ToDataModel(domain)
	if err := s.repo.Create(row); err != nil {
		s.logger.Error("failed to create alert", "title", dto.Title, "error", err)
		return nil, err
	}

	s.bus.Publish(ctx, events.NewPlatformEvent(events.AlertCreatedEvent, map[string]interface{}{
		"alert_id": row.ID,
		"title":    row.Title,
		"severity": row.Severity,
	}))

	s.logger.Info("alert created", "alert_id", row.ID, "severity", row.Severity)
	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

func (s *Service) Acknowledge(ctx context.Context, id, userID int64) (*AlertResponse, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrAlertNotFound
	}

	domain := FromDataModel(row)
	if domain.Status == StatusResolved {
		return nil, internal.NewValidationError("cannot acknowledge a resolved alert", internal.ErrCodeInvalidStatus)
	}
	domain.Acknowledge(userID)

	if err := s.repo.Update(ToDataModel(domain)); err != nil {
		s.logger.Error("failed to acknowledge alert", "alert_id", id, "error", err)
		return nil, err
	}

	s.bus.Publish(ctx, events.NewPlatformEvent(events.AlertAcknowledgedEvent, map[string]interface{}{
		"alert_id": id,
		"user_id":  userID,
	}))

	resp := domain.ToResponse()
	return &resp, nil
}

func (s *Service) Resolve(ctx context.Context, id int64) (*AlertResponse, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrAlertNotFound
	}

	domain := FromDataModel(row)
	domain.Resolve()

	if err := s.repo.Update(ToDataModel(domain)); err != nil {
		s.logger.Error("failed to resolve alert", "alert_id", id, "error", err)
		return nil, err
	}

	s.bus.Publish(ctx, events.NewPlatformEvent(events.AlertResolvedEvent, map[string]interface{}{
		"alert_id": id,
	}))

	resp := domain.ToResponse()
	return &resp, nil
}

func (s *Service) Delete(id int64) error {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if row == nil {
		return internal.ErrAlertNotFound
	}
	return s.repo.Delete(id)
}
