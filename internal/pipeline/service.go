package pipeline

import (
	"context"
	"log/slog"

	"github.com/opsvista/opsvista/internal"
	pipelineDatamodel "github.com/opsvista/opsvista/internal/core/datamodel/pipeline"
	"github.com/opsvista/opsvista/internal/core/events"
)

type RepositoryAPI interface {
	GetAll(projectID int64) ([]*pipelineDatamodel.Pipeline, error)
	GetByID(id int64) (*pipelineDatamodel.Pipeline, error)
	Create(pipeline *pipelineDatamodel.Pipeline) error
	Update(pipeline *pipelineDatamodel.Pipeline) error
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

func (s *Service) List(projectID int64) ([]PipelineResponse, error) {
	rows, err := s.repo.GetAll(projectID)
	if err != nil {
		s.logger.Error("failed to list pipelines", "error", err)
		return nil, err
	}

	responses := make([]PipelineResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, FromDataModel(row).ToResponse())
	}
	return responses, nil
}

func (s *Service) GetByID(id int64) (*PipelineResponse, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrPipelineNotFound
	}
	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

func (s *Service) Create(dto CreatePipelineDTO) (*PipelineResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	branch := dto.Branch
	if branch == "" {
		branch = "main"
	}

	row := ToDataModel(&Pipeline{
		Name:      dto.Name,
		ProjectID: dto.ProjectID,
		Branch:    branch,
		Status:    StatusIdle,
	})
	if err := s.repo.Create(row); err != nil {
		s.logger.Error("failed to create pipeline", "name", dto.Name, "error", err)
		return nil, err
	}

	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

// Run starts a pipeline execution. Runs are mock executions: the status
// flips to running and the lifecycle event fans out to subscribers.
func (s *Service) Run(ctx context.Context, id, userID int64) (*PipelineResponse, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.ErrPipelineNotFound
	}

	domain := FromDataModel(row)
	if domain.Status == StatusRunning {
		return nil, internal.NewConflictError("pipeline is already running", internal.ErrCodeInvalidStatus)
	}
	domain.StartRun(userID)

	if err := s.repo.Update(ToDataModel(domain)); err != nil {
		s.logger.Error("failed to start pipeline run", "pipeline_id", id, "error", err)
		return nil, err
	}

	s.bus.Publish(ctx, events.NewPlatformEvent(events.PipelineRunStartedEvent, map[string]interface{}{
		"pipeline_id": id,
		"user_id":     userID,
		"branch":      domain.Branch,
	}))

	s.logger.Info("pipeline run started", "pipeline_id", id, "user_id", userID)
	resp := domain.ToResponse()
	return &resp, nil
}

func (s *Service) Delete(id int64) error {
	row, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if row == nil {
		return internal.ErrPipelineNotFound
	}
	return s.repo.Delete(id)
}
