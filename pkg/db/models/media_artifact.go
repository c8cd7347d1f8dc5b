package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/mvaldez/genstudio-backend/pkg/enums"
)

// MediaArtifact captures the metadata index entry for one stored media file.
// The binary content lives on disk in a type-partitioned directory; only the
// filename is recorded here.
type MediaArtifact struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Type      enums.MediaType `gorm:"column:type;not null;index" json:"type"`
	Filename  string          `gorm:"column:filename;not null" json:"filename"`
	Subject   string          `gorm:"column:subject;not null;index" json:"subject"`
	Prompt    string          `gorm:"column:prompt" json:"prompt"`
	Model     string          `gorm:"column:model" json:"model"`
	MimeType  string          `gorm:"column:mime_type;not null" json:"mimeType"`
	SizeBytes int64           `gorm:"column:size_bytes;not null" json:"sizeBytes"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

// TableName keeps the table name stable across drivers.
func (MediaArtifact) TableName() string {
	return "media_artifacts"
}
