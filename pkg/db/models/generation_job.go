package models

import (
	"time"

	"github.com/mvaldez/genstudio-backend/pkg/enums"
)

// GenerationJob tracks one asynchronous generation request from submission to
// a terminal state. The artifact is referenced by id, never embedded, so
// deleting a job row can never cascade into stored media.
type GenerationJob struct {
	ID              string               `gorm:"column:id;primaryKey" json:"id"`
	Subject         string               `gorm:"column:subject;not null;index" json:"subject"`
	Resource        enums.MediaType      `gorm:"column:resource;not null" json:"resource"`
	Prompt          string               `gorm:"column:prompt" json:"prompt"`
	Model           string               `gorm:"column:model" json:"model"`
	Mode            enums.GenerationMode `gorm:"column:mode;default:text" json:"mode"`
	Status          enums.JobStatus      `gorm:"column:status;not null;default:queued" json:"status"`
	Progress        int                  `gorm:"column:progress;not null;default:0" json:"progress"`
	OperationHandle string               `gorm:"column:operation_handle" json:"operationHandle,omitempty"`
	ArtifactID      *string              `gorm:"column:artifact_id" json:"artifactId,omitempty"`
	Error           *string              `gorm:"column:error" json:"error,omitempty"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
	CompletedAt     *time.Time           `gorm:"column:completed_at" json:"completedAt,omitempty"`
}

// TableName keeps the table name stable across drivers.
func (GenerationJob) TableName() string {
	return "generation_jobs"
}
