// Package metrics exposes Prometheus instrumentation for the answer
// pipeline and the HTTP layer.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// AnswersTotal counts completed answer turns by retrieval tier and
	// grounding outcome.
	AnswersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "advisor",
			Name:      "answers_total",
			Help:      "Total answer turns by retrieval tier and grounding",
		},
		[]string{"tier", "grounded"},
	)

	// LearnedReuseTotal counts answers served from the learned index.
	LearnedReuseTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "advisor",
			Name:      "learned_reuse_total",
			Help:      "Total answers reused from positively-rated feedback",
		},
	)

	// RetrievalFailuresTotal counts retrieval errors downgraded to tier none.
	RetrievalFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "advisor",
			Name:      "retrieval_failures_total",
			Help:      "Total retrieval failures treated as no relevant documents",
		},
	)

	// WebSearchTotal counts web augmentation attempts by outcome.
	WebSearchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "advisor",
			Name:      "web_search_total",
			Help:      "Total web search attempts by outcome",
		},
		[]string{"status"},
	)

	// GenerationFailuresTotal counts turns answered with the apology text.
	GenerationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "advisor",
			Name:      "generation_failures_total",
			Help:      "Total generation failures surfaced as the apology answer",
		},
	)
)

func init() {
	prometheus.MustRegister(
		AnswersTotal,
		LearnedReuseTotal,
		RetrievalFailuresTotal,
		WebSearchTotal,
		GenerationFailuresTotal,
	)
}
