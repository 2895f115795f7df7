package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	CollectorErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "collector_errors_total",
		Help: "Ошибки при сборе истории каналов",
	})
	PagesFetched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discord_pages_fetched_total",
		Help: "Количество выгруженных страниц истории по каналам",
	}, []string{"channel_id"})
	MessagesRetained = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "discord_messages_retained_total",
		Help: "Количество сообщений, попавших в окно выборки, по каналам",
	}, []string{"channel_id"})
	DigestRunSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "digest_run_seconds",
		Help:    "Время полного прогона конвейера дайджеста",
		Buckets: prometheus.DefBuckets,
	})
	FragmentsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "digest_fragments_sent_total",
		Help: "Количество отправленных фрагментов дайджеста",
	}, []string{"transport", "status"})
	FallbackRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "digest_fallback_runs_total",
		Help: "Сколько раз доставка уходила в резервный транспорт",
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50, 55, 60, 65, 70, 75, 80, 85, 90, 95, 100, 105, 110, 115, 120, 125, 130, 135, 140, 145, 150, 155, 160, 165, 170, 175, 180, 185, 190, 195, 200, 250, 300, 350, 400, 450, 500, 550, 600},
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})

	LLMGenerationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llm_generation_duration_seconds",
		Help:    "Длительность генерации ответа LLM",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	LLMTokensTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_tokens_total",
		Help: "Количество токенов, использованных LLM",
	}, []string{"model", "type"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		CollectorErrors,
		PagesFetched,
		MessagesRetained,
		DigestRunSeconds,
		FragmentsSent,
		FallbackRuns,
		NetworkRequestDuration,
		NetworkRequestTotal,
		LLMGenerationDuration,
		LLMTokensTotal,
	)
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// ObserveLLMGeneration записывает длительность и токены генерации LLM.
func ObserveLLMGeneration(model string, duration time.Duration, promptTokens, completionTokens, totalTokens int) {
	if model == "" {
		model = "unknown"
	}
	LLMGenerationDuration.WithLabelValues(model).Observe(duration.Seconds())
	if promptTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "completion").Add(float64(completionTokens))
	}
	if totalTokens <= 0 {
		totalTokens = promptTokens + completionTokens
	}
	if totalTokens > 0 {
		LLMTokensTotal.WithLabelValues(model, "total").Add(float64(totalTokens))
	}
}

// IncPageFetched увеличивает счётчик выгруженных страниц канала.
func IncPageFetched(channelID string) {
	PagesFetched.WithLabelValues(channelID).Inc()
}

// AddMessagesRetained увеличивает счётчик сообщений канала в окне выборки.
func AddMessagesRetained(channelID string, n int) {
	if n <= 0 {
		return
	}
	MessagesRetained.WithLabelValues(channelID).Add(float64(n))
}

// IncFragmentSent увеличивает счётчик отправленных фрагментов.
func IncFragmentSent(transport string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	FragmentsSent.WithLabelValues(transport, status).Inc()
}
