package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/mvaldez/genstudio-backend/pkg/types"
)

type rowInserter interface {
	InsertRows(ctx context.Context, table string, rows []any) error
}

// usageRow is the BigQuery row shape for one terminal generation outcome.
type usageRow struct {
	Subject    string    `bigquery:"subject"`
	Resource   string    `bigquery:"resource"`
	Model      string    `bigquery:"model"`
	Mode       string    `bigquery:"mode"`
	Status     string    `bigquery:"status"`
	SizeBytes  int64     `bigquery:"size_bytes"`
	OccurredAt time.Time `bigquery:"occurred_at"`
}

// Sink streams usage events into the analytics warehouse.
type Sink struct {
	inserter rowInserter
	table    string
}

// NewSink wires the sink to an inserter and target table.
func NewSink(inserter rowInserter, table string) (*Sink, error) {
	if inserter == nil {
		return nil, fmt.Errorf("row inserter required")
	}
	if table == "" {
		return nil, fmt.Errorf("table required")
	}
	return &Sink{inserter: inserter, table: table}, nil
}

// RecordUsage appends one usage event row.
func (s *Sink) RecordUsage(ctx context.Context, event types.UsageEvent) error {
	row := usageRow{
		Subject:    event.Subject,
		Resource:   event.Resource.String(),
		Model:      event.Model,
		Mode:       event.Mode,
		Status:     event.Status.String(),
		SizeBytes:  event.SizeBytes,
		OccurredAt: event.OccurredAt,
	}
	return s.inserter.InsertRows(ctx, s.table, []any{row})
}
