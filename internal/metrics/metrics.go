package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace - общий префикс метрик сервиса
const Namespace = "realty"

var (
	// ToolCalls счетчик вызовов инструментов
	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "tool_calls_total",
			Help:      "Общее количество вызовов инструментов",
		},
		[]string{"tool_name", "status"},
	)

	// CalculationErrors счетчик ошибок расчетов
	CalculationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "calculation_errors_total",
			Help:      "Количество ошибок расчетов",
		},
		[]string{"tool_name", "error_type"},
	)

	// APICalls счетчик вызовов API
	APICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "api_calls_total",
			Help:      "Вызовы API инструментов",
		},
		[]string{"service", "endpoint", "status"},
	)

	// ToolDuration длительность выполнения инструментов; расчеты занимают миллисекунды
	ToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "tool_duration_seconds",
			Help:      "Длительность выполнения инструментов",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"tool_name"},
	)

	// RateTableLoads счетчик загрузок таблиц коэффициентов
	RateTableLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "rate_table_loads_total",
			Help:      "Загрузки таблиц коэффициентов (loaded/default)",
		},
		[]string{"kind", "status"},
	)

	// CacheRequests счетчик обращений к кешам
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_requests_total",
			Help:      "Обращения к кешам (hit/miss)",
		},
		[]string{"cache", "result"},
	)
)
