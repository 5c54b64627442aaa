package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — счетчики Prometheus для игрового сервиса.
// Регистрация в отдельном Registry, чтобы тесты могли создавать
// изолированные наборы без конфликтов имен.
type Metrics struct {
	Registry *prometheus.Registry

	GamesStarted     prometheus.Counter
	TurnsPlayed      prometheus.Counter
	FallbacksServed  *prometheus.CounterVec
	ExtractionTier   *prometheus.CounterVec
	CompletionErrors prometheus.Counter
}

// New создает и регистрирует счетчики.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,
		GamesStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "game_sessions_started_total",
			Help: "Number of game sessions successfully started.",
		}),
		TurnsPlayed: factory.NewCounter(prometheus.CounterOpts{
			Name: "game_turns_played_total",
			Help: "Number of successfully completed story turns.",
		}),
		FallbacksServed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "game_fallback_payloads_total",
			Help: "Number of fallback payloads served instead of model output.",
		}, []string{"operation"}),
		ExtractionTier: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "game_extraction_tier_total",
			Help: "Extraction outcomes by cascade tier (balanced, greedy, fields, none).",
		}, []string{"tier"}),
		CompletionErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "game_completion_errors_total",
			Help: "Number of failed remote completion calls.",
		}),
	}
}
