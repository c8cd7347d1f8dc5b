package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// GenerationMetrics records submission and outcome counts per resource.
type GenerationMetrics struct {
	submissions *prometheus.CounterVec
	outcomes    *prometheus.CounterVec
	quotaDenied *prometheus.CounterVec
}

// NewGenerationMetrics registers the generation metrics on the provided
// registerer. A nil registerer yields a no-op recorder, mirroring the cron
// metrics.
func NewGenerationMetrics(reg prometheus.Registerer) *GenerationMetrics {
	if reg == nil {
		return &GenerationMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "generation_submissions_total",
		Help: "Generation requests admitted past quota.",
	}, []string{"resource"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "generation_outcomes_total",
		Help: "Terminal generation outcomes.",
	}, []string{"resource", "status"})
	quotaDenied := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "generation_quota_denied_total",
		Help: "Generation requests rejected by quota.",
	}, []string{"resource"})
	reg.MustRegister(submissions, outcomes, quotaDenied)
	return &GenerationMetrics{
		submissions: submissions,
		outcomes:    outcomes,
		quotaDenied: quotaDenied,
	}
}

// IncSubmission counts one admitted request.
func (g *GenerationMetrics) IncSubmission(resource string) {
	if g == nil || g.submissions == nil {
		return
	}
	g.submissions.WithLabelValues(normalizeLabel(resource)).Inc()
}

// IncOutcome counts one terminal outcome.
func (g *GenerationMetrics) IncOutcome(resource, status string) {
	if g == nil || g.outcomes == nil {
		return
	}
	g.outcomes.WithLabelValues(normalizeLabel(resource), normalizeLabel(status)).Inc()
}

// IncQuotaDenied counts one quota rejection.
func (g *GenerationMetrics) IncQuotaDenied(resource string) {
	if g == nil || g.quotaDenied == nil {
		return
	}
	g.quotaDenied.WithLabelValues(normalizeLabel(resource)).Inc()
}
