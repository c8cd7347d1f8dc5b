package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/mvaldez/genstudio-backend/internal/artifacts"
	"github.com/mvaldez/genstudio-backend/internal/jobs"
	"github.com/mvaldez/genstudio-backend/internal/provider/gemini"
	"github.com/mvaldez/genstudio-backend/pkg/db/models"
	"github.com/mvaldez/genstudio-backend/pkg/enums"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
	"github.com/mvaldez/genstudio-backend/pkg/logger"
	"github.com/mvaldez/genstudio-backend/pkg/metrics"
	"github.com/mvaldez/genstudio-backend/pkg/types"
)

const processingProgress = 50

type admissionController interface {
	EnforceLimit(ctx context.Context, subject string, resource enums.MediaType) error
}

type artifactSaver interface {
	Save(ctx context.Context, mediaType enums.MediaType, content []byte, meta artifacts.Meta) (*models.MediaArtifact, error)
}

type eventPublisher interface {
	PublishJobEvent(ctx context.Context, event types.JobEvent) error
}

type usageRecorder interface {
	RecordUsage(ctx context.Context, event types.UsageEvent) error
}

// RetryPolicy bounds provider submission retries. Only transient provider
// failures are retried.
type RetryPolicy struct {
	MaxRetries  uint64
	BaseBackoff time.Duration
}

// PollPolicy caps how long a processing job may be polled before the status
// surface reports a timeout. The stored job is left untouched so a later
// poll can still observe a late completion.
type PollPolicy struct {
	Interval    time.Duration
	MaxAttempts int
}

// Budget returns the total polling window, or zero when unbounded.
func (p PollPolicy) Budget() time.Duration {
	if p.Interval <= 0 || p.MaxAttempts <= 0 {
		return 0
	}
	return p.Interval * time.Duration(p.MaxAttempts)
}

// Orchestrator drives the job state machine: admission, submission, polling
// and persistence of finished media.
type Orchestrator struct {
	quota     admissionController
	jobs      jobs.Store
	artifacts artifactSaver
	provider  Provider
	events    eventPublisher
	usage     usageRecorder
	metrics   *metrics.GenerationMetrics
	log       *logger.Logger
	retry     RetryPolicy
	poll      PollPolicy
	now       func() time.Time
}

// Options wires the orchestrator's collaborators. Events, usage and metrics
// are optional.
type Options struct {
	Quota     admissionController
	Jobs      jobs.Store
	Artifacts artifactSaver
	Provider  Provider
	Events    eventPublisher
	Usage     usageRecorder
	Metrics   *metrics.GenerationMetrics
	Logger    *logger.Logger
	Retry     RetryPolicy
	Poll      PollPolicy
}

// NewOrchestrator validates required collaborators and applies retry
// defaults.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.Quota == nil {
		return nil, fmt.Errorf("quota tracker required")
	}
	if opts.Jobs == nil {
		return nil, fmt.Errorf("job store required")
	}
	if opts.Artifacts == nil {
		return nil, fmt.Errorf("artifact store required")
	}
	if opts.Provider == nil {
		return nil, fmt.Errorf("provider required")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if opts.Retry.MaxRetries == 0 {
		opts.Retry.MaxRetries = 3
	}
	if opts.Retry.BaseBackoff <= 0 {
		opts.Retry.BaseBackoff = 500 * time.Millisecond
	}
	return &Orchestrator{
		quota:     opts.Quota,
		jobs:      opts.Jobs,
		artifacts: opts.Artifacts,
		provider:  opts.Provider,
		events:    opts.Events,
		usage:     opts.Usage,
		metrics:   opts.Metrics,
		log:       opts.Logger,
		retry:     opts.Retry,
		poll:      opts.Poll,
		now:       time.Now,
	}, nil
}

// Submit admits one generation request, creates the job record and hands the
// request to the provider. Inline results complete the job before returning;
// long-running operations leave it in processing with the handle stored.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (*models.GenerationJob, error) {
	if !req.Resource.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid resource %q", req.Resource))
	}
	if req.Prompt == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prompt is required")
	}

	if err := o.quota.EnforceLimit(ctx, req.Subject, req.Resource); err != nil {
		o.metrics.IncQuotaDenied(req.Resource.String())
		return nil, err
	}
	o.metrics.IncSubmission(req.Resource.String())

	job := &models.GenerationJob{
		ID:       jobs.NewJobID(o.now()),
		Subject:  req.Subject,
		Resource: req.Resource,
		Prompt:   req.Prompt,
		Model:    req.Model,
		Mode:     req.Mode,
		Status:   enums.JobStatusQueued,
	}
	if job.Mode == "" {
		job.Mode = enums.GenerationModeText
	}
	if err := o.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	ctx = o.log.WithJobID(ctx, job.ID)

	outcome, err := o.submitWithRetry(ctx, req)
	if err != nil {
		reason := err.Error()
		if appErr := pkgerrors.As(err); appErr != nil {
			reason = appErr.Message()
		}
		failed, failErr := o.failJob(ctx, job, reason)
		if failErr != nil {
			return nil, failErr
		}
		return failed, err
	}

	if outcome.Payload != nil {
		return o.completeJob(ctx, job, req, outcome.Payload)
	}

	updated, err := o.jobs.Update(ctx, job.ID, jobs.Update{
		Status:          statusPtr(enums.JobStatusProcessing),
		OperationHandle: &outcome.OperationHandle,
	})
	if err != nil {
		return nil, err
	}
	o.log.Info(ctx, "generation operation started")
	return updated, nil
}

// CheckStatus polls the provider for a processing job and applies the
// observed outcome. Poll transport failures surface as errors and leave the
// stored job untouched, so a later poll can still succeed.
func (o *Orchestrator) CheckStatus(ctx context.Context, jobID string) (*models.GenerationJob, error) {
	job, err := o.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status.IsTerminal() || job.OperationHandle == "" {
		return job, nil
	}
	ctx = o.log.WithJobID(ctx, job.ID)

	if budget := o.poll.Budget(); budget > 0 && o.now().Sub(job.CreatedAt) > budget {
		return nil, pkgerrors.New(pkgerrors.CodeProvider, "generation timed out").
			WithDetails(map[string]any{"jobId": job.ID})
	}

	outcome, err := o.provider.Poll(ctx, job.OperationHandle)
	if err != nil {
		return nil, err
	}

	if !outcome.Done {
		progress := processingProgress
		return o.jobs.Update(ctx, job.ID, jobs.Update{
			Status:   statusPtr(enums.JobStatusProcessing),
			Progress: &progress,
		})
	}

	// Terminal failures become job state rather than request errors; the
	// status surface reports them inside the job payload.
	if outcome.FilterReason != "" {
		return o.failJob(ctx, job, outcome.FilterReason)
	}
	if outcome.ErrorMessage != "" {
		return o.failJob(ctx, job, outcome.ErrorMessage)
	}
	if outcome.Payload == nil {
		return o.failJob(ctx, job, "no result produced")
	}

	req := Request{
		Subject:  job.Subject,
		Resource: job.Resource,
		Mode:     job.Mode,
		Prompt:   job.Prompt,
		Model:    job.Model,
	}
	return o.completeJob(ctx, job, req, outcome.Payload)
}

func (o *Orchestrator) submitWithRetry(ctx context.Context, req Request) (*SubmitOutcome, error) {
	var outcome *SubmitOutcome
	backoff := retry.WithMaxRetries(o.retry.MaxRetries, retry.NewExponential(o.retry.BaseBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		outcome, err = o.provider.Submit(ctx, req)
		if err != nil && gemini.IsTransient(err) {
			o.log.Warn(ctx, "transient provider failure, retrying submit")
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (o *Orchestrator) completeJob(ctx context.Context, job *models.GenerationJob, req Request, payload *Payload) (*models.GenerationJob, error) {
	artifact, err := o.artifacts.Save(ctx, req.Resource, payload.Content, artifacts.Meta{
		Subject:  req.Subject,
		Prompt:   req.Prompt,
		Model:    req.Model,
		MimeType: payload.MimeType,
	})
	if err != nil {
		o.log.Error(ctx, "artifact persist failed", err)
		if _, failErr := o.failJob(ctx, job, "failed to persist result"); failErr != nil {
			return nil, failErr
		}
		return nil, err
	}

	artifactID := artifact.ID.String()
	progress := 100
	updated, err := o.jobs.Update(ctx, job.ID, jobs.Update{
		Status:     statusPtr(enums.JobStatusCompleted),
		Progress:   &progress,
		ArtifactID: &artifactID,
	})
	if err != nil {
		return nil, err
	}

	o.metrics.IncOutcome(string(job.Resource), string(enums.JobStatusCompleted))
	o.emitTerminal(ctx, updated, artifact.SizeBytes)
	o.log.Info(ctx, "generation completed")
	return updated, nil
}

func (o *Orchestrator) failJob(ctx context.Context, job *models.GenerationJob, reason string) (*models.GenerationJob, error) {
	updated, err := o.jobs.Update(ctx, job.ID, jobs.Update{
		Status: statusPtr(enums.JobStatusFailed),
		Error:  &reason,
	})
	if err != nil {
		return nil, err
	}

	o.metrics.IncOutcome(string(job.Resource), string(enums.JobStatusFailed))
	o.emitTerminal(ctx, updated, 0)
	o.log.Warn(o.log.WithField(ctx, "reason", reason), "generation failed")
	return updated, nil
}

// emitTerminal publishes the lifecycle event and the usage record. Both are
// best effort; a broken sink never fails the request.
func (o *Orchestrator) emitTerminal(ctx context.Context, job *models.GenerationJob, sizeBytes int64) {
	now := o.now().UTC()

	if o.events != nil {
		event := types.JobEvent{
			JobID:      job.ID,
			Subject:    job.Subject,
			Resource:   job.Resource,
			Status:     job.Status,
			OccurredAt: now,
		}
		if job.ArtifactID != nil {
			event.ArtifactID = *job.ArtifactID
		}
		if job.Error != nil {
			event.Error = *job.Error
		}
		if err := o.events.PublishJobEvent(ctx, event); err != nil {
			o.log.Error(ctx, "publish job event failed", err)
		}
	}

	if o.usage != nil {
		usage := types.UsageEvent{
			Subject:    job.Subject,
			Resource:   job.Resource,
			Model:      job.Model,
			Mode:       job.Mode.String(),
			Status:     job.Status,
			SizeBytes:  sizeBytes,
			OccurredAt: now,
		}
		if err := o.usage.RecordUsage(ctx, usage); err != nil {
			o.log.Error(ctx, "record usage failed", err)
		}
	}
}

func statusPtr(s enums.JobStatus) *enums.JobStatus { return &s }
