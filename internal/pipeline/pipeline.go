package pipeline

import (
	"time"

	pipelineDatamodel "github.com/opsvista/opsvista/internal/core/datamodel/pipeline"
)

const (
	StatusIdle    = "idle"
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

type Pipeline struct {
	ID          int64
	Name        string
	ProjectID   int64
	Branch      string
	Status      string
	LastRunAt   *time.Time
	LastRunBy   int64
	DurationSec int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StartRun flips the pipeline to running on behalf of a user.
func (p *Pipeline) StartRun(userID int64) {
	now := time.Now()
	p.Status = StatusRunning
	p.LastRunAt = &now
	p.LastRunBy = userID
	p.UpdatedAt = now
}

type CreatePipelineDTO struct {
	Name      string `json:"name"`
	ProjectID int64  `json:"project_id"`
	Branch    string `json:"branch"`
}

func (d CreatePipelineDTO) Validate() error {
	if d.Name == "" {
		return ValidationError{Msg: "name is required"}
	}
	if d.ProjectID <= 0 {
		return ValidationError{Msg: "project_id is required"}
	}
	return nil
}

type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

type PipelineResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	ProjectID   int64      `json:"project_id"`
	Branch      string     `json:"branch"`
	Status      string     `json:"status"`
	LastRunAt   *time.Time `json:"last_run_at,omitempty"`
	LastRunBy   int64      `json:"last_run_by,omitempty"`
	DurationSec int        `json:"duration_sec,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type PipelinesResponse struct {
	Pipelines []PipelineResponse `json:"pipelines"`
	Total     int                `json:"total"`
}

func (p *Pipeline) ToResponse() PipelineResponse {
	return PipelineResponse{
		ID:          p.ID,
		Name:        p.Name,
		ProjectID:   p.ProjectID,
		Branch:      p.Branch,
		Status:      p.Status,
		LastRunAt:   p.LastRunAt,
		LastRunBy:   p.LastRunBy,
		DurationSec: p.DurationSec,
		CreatedAt:   p.CreatedAt,
	}
}

func ToDataModel(p *Pipeline) *pipelineDatamodel.Pipeline {
	return &pipelineDatamodel.Pipeline{
		ID:          p.ID,
		Name:        p.Name,
		ProjectID:   p.ProjectID,
		Branch:      p.Branch,
		Status:      p.Status,
		LastRunAt:   p.LastRunAt,
		LastRunBy:   p.LastRunBy,
		DurationSec: p.DurationSec,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromDataModel(p *pipelineDatamodel.Pipeline) *Pipeline {
	return &Pipeline{
		ID:          p.ID,
		Name:        p.Name,
		ProjectID:   p.ProjectID,
		Branch:      p.Branch,
		Status:      p.Status,
		LastRunAt:   p.LastRunAt,
		LastRunBy:   p.LastRunBy,
		DurationSec: p.DurationSec,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
