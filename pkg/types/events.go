package types

import (
	"time"

	"github.com/mvaldez/genstudio-backend/pkg/enums"
)

// JobEvent is the lifecycle notification published when a generation job
// changes state.
type JobEvent struct {
	JobID      string          `json:"jobId"`
	Subject    string          `json:"subject"`
	Resource   enums.MediaType `json:"resource"`
	Status     enums.JobStatus `json:"status"`
	ArtifactID string          `json:"artifactId,omitempty"`
	Error      string          `json:"error,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// UsageEvent is the analytics record emitted for every terminal generation
// outcome.
type UsageEvent struct {
	Subject    string          `json:"subject"`
	Resource   enums.MediaType `json:"resource"`
	Model      string          `json:"model"`
	Mode       string          `json:"mode"`
	Status     enums.JobStatus `json:"status"`
	SizeBytes  int64           `json:"sizeBytes"`
	OccurredAt time.Time       `json:"occurredAt"`
}
