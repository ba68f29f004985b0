package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/cloud-ru/mcp-realty-go/internal/calculations"
	"github.com/cloud-ru/mcp-realty-go/internal/config"
	"github.com/cloud-ru/mcp-realty-go/internal/metrics"
	"github.com/cloud-ru/mcp-realty-go/internal/ratetable"
	"github.com/cloud-ru/mcp-realty-go/internal/service"
)

// ErrUnknownTool - инструмент с таким именем не зарегистрирован
var ErrUnknownTool = errors.New("неизвестный инструмент")

// Tool - описание инструмента для клиента
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Registry хранит обработчики инструментов по имени
type Registry struct {
	handlers     map[string]ToolHandler
	descriptions map[string]string
}

// NewRegistry регистрирует все инструменты расчета
func NewRegistry(cfg *config.Config, tracer trace.Tracer, tables *ratetable.Cache, svc *service.PlanService) *Registry {
	r := &Registry{
		handlers:     map[string]ToolHandler{},
		descriptions: map[string]string{},
	}
	r.Register("loan_schedule", "График платежей по кредиту (equal_total / equal_principal)",
		LoanScheduleHandler(cfg, tracer))
	r.Register("compare_loan_methods", "Сравнение аннуитетного и дифференцированного погашения",
		CompareLoanMethodsHandler(cfg, tracer))
	r.Register("annual_taxes", "Налог на имущество и городской налог по годам",
		AnnualTaxesHandler(cfg, tracer, tables))
	r.Register("depreciation", "Амортизация здания и оборудования",
		DepreciationHandler(cfg, tracer, tables))
	r.Register("income_projection", "Арендный доход по годам",
		IncomeProjectionHandler(cfg, tracer))
	r.Register("cashflow_aggregate", "Денежный поток по готовым рядам",
		CashflowAggregateHandler(cfg, tracer))
	r.Register("real_estate_plan", "Полный план объекта по сценарию",
		RealEstatePlanHandler(svc, tracer))
	r.Register("plan_history", "Последние рассчитанные планы",
		PlanHistoryHandler(svc, tracer))
	return r
}

// Register добавляет или заменяет инструмент
func (r *Registry) Register(name, description string, handler ToolHandler) {
	r.handlers[name] = handler
	r.descriptions[name] = description
}

// Tools возвращает список инструментов, отсортированный по имени
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.handlers))
	for name := range r.handlers {
		out = append(out, Tool{Name: name, Description: r.descriptions[name]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Call вызывает инструмент и учитывает длительность вызова
func (r *Registry) Call(ctx context.Context, name string, params map[string]interface{}) (interface{}, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if params == nil {
		params = map[string]interface{}{}
	}
	start := time.Now()
	defer func() {
		metrics.ToolDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()
	return handler(ctx, params)
}

// IsClientError сообщает, вызвана ли ошибка неверными входными данными
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidParameter) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, calculations.ErrInvalidArgument)
}
