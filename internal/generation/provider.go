package generation

import (
	"context"

	"github.com/mvaldez/genstudio-backend/pkg/enums"
)

// Request is a normalized generation request, shaped by the API layer and
// consumed by the provider adapter.
type Request struct {
	Subject  string
	Resource enums.MediaType
	Mode     enums.GenerationMode
	Prompt   string
	Model    string

	// Source image for image edit and video animate modes.
	SourceImage     []byte
	SourceImageMime string

	// Video options.
	NegativePrompt string
	AspectRatio    string

	// Speech options.
	Voice string
}

// Payload is a finished media result.
type Payload struct {
	Content  []byte
	MimeType string
}

// SubmitOutcome is what a provider submission produced: either an inline
// finished payload or a handle to poll. Exactly one field is set.
type SubmitOutcome struct {
	Payload         *Payload
	OperationHandle string
}

// PollOutcome is one observation of a long-running operation.
type PollOutcome struct {
	Done bool

	// Set when the operation finished successfully.
	Payload *Payload

	// FilterReason carries the provider's safety-filter explanation verbatim
	// when the operation was rejected rather than failed.
	FilterReason string

	// ErrorMessage is set when the operation finished with an error.
	ErrorMessage string
}

// Provider abstracts the generation backend for the orchestrator.
type Provider interface {
	Submit(ctx context.Context, req Request) (*SubmitOutcome, error)
	Poll(ctx context.Context, handle string) (*PollOutcome, error)
}
