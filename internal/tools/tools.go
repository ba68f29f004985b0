package tools

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cloud-ru/mcp-realty-go/internal/calculations"
	"github.com/cloud-ru/mcp-realty-go/internal/config"
	"github.com/cloud-ru/mcp-realty-go/internal/metrics"
	"github.com/cloud-ru/mcp-realty-go/internal/ratetable"
	"github.com/cloud-ru/mcp-realty-go/internal/scenario"
	"github.com/cloud-ru/mcp-realty-go/internal/service"
	"github.com/cloud-ru/mcp-realty-go/internal/validators"
)

// ToolHandler представляет обработчик инструмента MCP
type ToolHandler func(ctx context.Context, params map[string]interface{}) (interface{}, error)

// ErrValidation - параметры не прошли проверку лимитов
var ErrValidation = errors.New("неверные параметры")

func validationFailed(span trace.Span, toolName string, err error) error {
	span.SetAttributes(attribute.String("error", "validation_error"))
	metrics.ToolCalls.WithLabelValues(toolName, "validation_error").Inc()
	metrics.CalculationErrors.WithLabelValues(toolName, "validation").Inc()
	metrics.APICalls.WithLabelValues("mcp", toolName, "error").Inc()
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func calculationFailed(span trace.Span, toolName string, err error) error {
	span.SetAttributes(attribute.String("error", "calculation_error"))
	metrics.ToolCalls.WithLabelValues(toolName, "error").Inc()
	metrics.CalculationErrors.WithLabelValues(toolName, "calculation").Inc()
	metrics.APICalls.WithLabelValues("mcp", toolName, "error").Inc()
	return fmt.Errorf("ошибка при выполнении расчета: %w", err)
}

func succeeded(span trace.Span, toolName string, attrs ...attribute.KeyValue) {
	span.SetAttributes(append(attrs, attribute.Bool("success", true))...)
	metrics.ToolCalls.WithLabelValues(toolName, "success").Inc()
	metrics.APICalls.WithLabelValues("mcp", toolName, "success").Inc()
}

// loanTermsFromParams читает principal, annual_rate, years и необязательные
// start_month, method, group_by, rate_schedule
func loanTermsFromParams(params map[string]interface{}) (calculations.LoanTerms, error) {
	var terms calculations.LoanTerms
	var err error
	if terms.Principal, err = floatParam(params, "principal"); err != nil {
		return terms, err
	}
	if terms.AnnualRate, err = floatParam(params, "annual_rate"); err != nil {
		return terms, err
	}
	if terms.Years, err = intParam(params, "years"); err != nil {
		return terms, err
	}
	if terms.StartMonth, err = optionalInt(params, "start_month", 1); err != nil {
		return terms, err
	}
	method, err := optionalString(params, "method", string(calculations.MethodEqualTotal))
	if err != nil {
		return terms, err
	}
	terms.Method = calculations.Method(method)
	groupBy, err := optionalString(params, "group_by", string(calculations.GroupAnniversary))
	if err != nil {
		return terms, err
	}
	terms.GroupBy = calculations.GroupBy(groupBy)
	if _, err := decodeParam(params, "rate_schedule", &terms.RateSchedule); err != nil {
		return terms, err
	}
	return terms, nil
}

func validateLoan(cfg *config.Config, terms calculations.LoanTerms) error {
	if err := validators.CheckPrincipal(cfg, terms.Principal); err != nil {
		return err
	}
	if err := validators.CheckRate(cfg, "annual_rate", terms.AnnualRate); err != nil {
		return err
	}
	for _, p := range terms.RateSchedule {
		if err := validators.CheckRate(cfg, "rate_schedule.annual_rate", p.AnnualRate); err != nil {
			return err
		}
	}
	if err := validators.CheckLoanYears(cfg, terms.Years); err != nil {
		return err
	}
	return validators.CheckStartMonth(terms.StartMonth)
}

// LoanScheduleHandler обрабатывает запрос на расчет графика платежей по кредиту
func LoanScheduleHandler(cfg *config.Config, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		toolName := "loan_schedule"

		ctx, span := tracer.Start(ctx, toolName)
		defer span.End()

		terms, err := loanTermsFromParams(params)
		if err != nil {
			return nil, err
		}
		includeMonthly, err := optionalBool(params, "include_monthly", true)
		if err != nil {
			return nil, err
		}

		span.SetAttributes(
			attribute.Float64("principal", terms.Principal),
			attribute.Float64("annual_rate", terms.AnnualRate),
			attribute.Int("years", terms.Years),
			attribute.String("method", string(terms.Method)),
		)

		metrics.APICalls.WithLabelValues("mcp", toolName, "started").Inc()

		if err := validateLoan(cfg, terms); err != nil {
			return nil, validationFailed(span, toolName, err)
		}

		schedule, err := calculations.LoanScheduleFor(terms)
		if err != nil {
			return nil, calculationFailed(span, toolName, err)
		}
		if !includeMonthly {
			schedule.Monthly = nil
		}

		succeeded(span, toolName,
			attribute.Float64("total_paid", schedule.Summary.TotalPaid),
			attribute.Float64("total_interest", schedule.Summary.TotalInterest),
		)
		return schedule, nil
	}
}

// CompareLoanMethodsHandler сравнивает аннуитетный и дифференцированный способы погашения
func CompareLoanMethodsHandler(cfg *config.Config, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		toolName := "compare_loan_methods"

		ctx, span := tracer.Start(ctx, toolName)
		defer span.End()

		terms, err := loanTermsFromParams(params)
		if err != nil {
			return nil, err
		}
		withSchedules, err := optionalBool(params, "with_schedules", false)
		if err != nil {
			return nil, err
		}

		span.SetAttributes(
			attribute.Float64("principal", terms.Principal),
			attribute.Float64("annual_rate", terms.AnnualRate),
			attribute.Int("years", terms.Years),
		)

		metrics.APICalls.WithLabelValues("mcp", toolName, "started").Inc()

		if err := validateLoan(cfg, terms); err != nil {
			return nil, validationFailed(span, toolName, err)
		}

		result, err := calculations.CompareMethods(terms, withSchedules)
		if err != nil {
			return nil, calculationFailed(span, toolName, err)
		}

		succeeded(span, toolName,
			attribute.String("cheaper", result.Difference.Cheaper),
			attribute.Float64("savings", result.Difference.Savings),
		)
		return result, nil
	}
}

// AnnualTaxesHandler рассчитывает налог на имущество и городской налог по годам
func AnnualTaxesHandler(cfg *config.Config, tracer trace.Tracer, tables *ratetable.Cache) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		toolName := "annual_taxes"

		ctx, span := tracer.Start(ctx, toolName)
		defer span.End()

		var p calculations.TaxParams
		var err error
		if p.LandAssessedValue, err = floatParam(params, "land_assessed_value"); err != nil {
			return nil, err
		}
		if p.BuildingAssessedValue, err = floatParam(params, "building_assessed_value"); err != nil {
			return nil, err
		}
		if p.LandAreaM2, err = optionalFloat(params, "land_area_m2", 0); err != nil {
			return nil, err
		}
		if p.Units, err = optionalInt(params, "units", 0); err != nil {
			return nil, err
		}
		if p.Years, err = optionalInt(params, "years", calculations.DefaultTaxYears); err != nil {
			return nil, err
		}
		if p.FixedAssetRate, err = optionalFloat(params, "fixed_asset_rate", 0); err != nil {
			return nil, err
		}
		if p.CityPlanRate, err = optionalFloat(params, "city_plan_rate", 0); err != nil {
			return nil, err
		}
		if p.LandResidentialSpecial, err = optionalBoolPtr(params, "land_residential_special"); err != nil {
			return nil, err
		}
		correctionsPath, err := optionalString(params, "correction_rates_csv", cfg.CorrectionRatesCSV)
		if err != nil {
			return nil, err
		}

		span.SetAttributes(
			attribute.Float64("land_assessed_value", p.LandAssessedValue),
			attribute.Float64("building_assessed_value", p.BuildingAssessedValue),
			attribute.Int("years", p.Years),
		)

		metrics.APICalls.WithLabelValues("mcp", toolName, "started").Inc()

		checks := []error{
			validators.CheckAmount(cfg, "land_assessed_value", p.LandAssessedValue),
			validators.CheckAmount(cfg, "building_assessed_value", p.BuildingAssessedValue),
			validators.ValidatePositiveNumber("land_area_m2", p.LandAreaM2, 0, 1e7),
			validators.CheckUnits(p.Units),
			validators.CheckHorizon(cfg, p.Years),
		}
		for _, err := range checks {
			if err != nil {
				return nil, validationFailed(span, toolName, err)
			}
		}

		records, err := calculations.ComputeAnnualTaxes(p, tables.Correction(correctionsPath))
		if err != nil {
			return nil, calculationFailed(span, toolName, err)
		}

		succeeded(span, toolName, attribute.Float64("first_year_total", records[0].Total))
		return map[string]interface{}{
			"residential_special": calculations.ResidentialSpecialApplies(p),
			"years":               records,
		}, nil
	}
}

// DepreciationHandler рассчитывает амортизацию здания и оборудования
func DepreciationHandler(cfg *config.Config, tracer trace.Tracer, tables *ratetable.Cache) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		toolName := "depreciation"

		ctx, span := tracer.Start(ctx, toolName)
		defer span.End()

		var in calculations.DepreciationInput
		var err error
		if in.BuildingCost, err = floatParam(params, "building_cost"); err != nil {
			return nil, err
		}
		if in.BuildingStatutoryLife, err = intParam(params, "building_statutory_life"); err != nil {
			return nil, err
		}
		if in.EquipmentCost, err = optionalFloat(params, "equipment_cost", 0); err != nil {
			return nil, err
		}
		if in.EquipmentStatutoryLife, err = optionalInt(params, "equipment_statutory_life", scenario.DefaultEquipmentLife); err != nil {
			return nil, err
		}
		if in.ElapsedYears, err = optionalInt(params, "elapsed_years", 0); err != nil {
			return nil, err
		}
		years, err := optionalInt(params, "years", cfg.DefaultHorizon)
		if err != nil {
			return nil, err
		}

		span.SetAttributes(
			attribute.Float64("building_cost", in.BuildingCost),
			attribute.Int("building_statutory_life", in.BuildingStatutoryLife),
			attribute.Int("elapsed_years", in.ElapsedYears),
		)

		metrics.APICalls.WithLabelValues("mcp", toolName, "started").Inc()

		checks := []error{
			validators.CheckAmount(cfg, "building_cost", in.BuildingCost),
			validators.CheckAmount(cfg, "equipment_cost", in.EquipmentCost),
			validators.CheckLife("building_statutory_life", in.BuildingStatutoryLife),
			validators.CheckLife("equipment_statutory_life", in.EquipmentStatutoryLife),
			validators.CheckElapsedYears(in.ElapsedYears),
			validators.CheckHorizon(cfg, years),
		}
		for _, err := range checks {
			if err != nil {
				return nil, validationFailed(span, toolName, err)
			}
		}

		opts := calculations.DepreciationOptions{
			MinUsedLife:   cfg.MinUsedLife,
			ResidualValue: cfg.ResidualValue,
			Years:         years,
		}
		result, err := calculations.ComputeDepreciation(in, tables.DepreciationRates(cfg.DepreciationRatesCSV), opts)
		if err != nil {
			return nil, calculationFailed(span, toolName, err)
		}

		succeeded(span, toolName,
			attribute.Int("building_used_life", result.Building.UsedLife),
			attribute.Float64("building_annual_charge", result.Building.AnnualCharge),
		)
		return result, nil
	}
}

// IncomeProjectionHandler рассчитывает арендный доход по годам
func IncomeProjectionHandler(cfg *config.Config, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		toolName := "income_projection"

		ctx, span := tracer.Start(ctx, toolName)
		defer span.End()

		var p calculations.IncomeParams
		var err error
		if p.MonthlyRent, err = optionalFloat(params, "monthly_rent", 0); err != nil {
			return nil, err
		}
		if p.AnnualRent, err = optionalFloat(params, "annual_rent", 0); err != nil {
			return nil, err
		}
		if p.Units, err = optionalInt(params, "units", 1); err != nil {
			return nil, err
		}
		if p.Years, err = optionalInt(params, "years", cfg.DefaultHorizon); err != nil {
			return nil, err
		}
		if p.RentChangeRates, err = floatSlice(params, "rent_change_rates"); err != nil {
			return nil, err
		}
		if p.VacancyRates, err = floatSlice(params, "vacancy_rates"); err != nil {
			return nil, err
		}
		var rentChange, vacancy calculations.Trend
		if ok, err := decodeParam(params, "rent_change", &rentChange); err != nil {
			return nil, err
		} else if ok {
			p.RentChange = &rentChange
		}
		if ok, err := decodeParam(params, "vacancy", &vacancy); err != nil {
			return nil, err
		} else if ok {
			p.Vacancy = &vacancy
		}

		span.SetAttributes(
			attribute.Float64("monthly_rent", p.MonthlyRent),
			attribute.Int("units", p.Units),
			attribute.Int("years", p.Years),
		)

		metrics.APICalls.WithLabelValues("mcp", toolName, "started").Inc()

		checks := []error{
			validators.CheckAmount(cfg, "monthly_rent", p.MonthlyRent),
			validators.CheckAmount(cfg, "annual_rent", p.AnnualRent),
			validators.CheckUnits(p.Units),
			validators.CheckHorizon(cfg, p.Years),
		}
		for _, err := range checks {
			if err != nil {
				return nil, validationFailed(span, toolName, err)
			}
		}

		income, err := calculations.ProjectIncome(p)
		if err != nil {
			return nil, calculationFailed(span, toolName, err)
		}

		succeeded(span, toolName, attribute.Float64("first_year_income", income[0].AnnualIncome))
		return income, nil
	}
}

// CashflowAggregateHandler собирает денежный поток из готовых годовых рядов
func CashflowAggregateHandler(cfg *config.Config, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		toolName := "cashflow_aggregate"

		ctx, span := tracer.Start(ctx, toolName)
		defer span.End()

		var in calculations.CashflowInputs
		var err error
		if in.Years, err = optionalInt(params, "years", 0); err != nil {
			return nil, err
		}
		if in.Income, err = floatSlice(params, "income"); err != nil {
			return nil, err
		}
		if in.Expenses, err = floatSlice(params, "expenses"); err != nil {
			return nil, err
		}
		if in.Depreciation, err = floatSlice(params, "depreciation"); err != nil {
			return nil, err
		}
		taxes, err := floatSlice(params, "taxes")
		if err != nil {
			return nil, err
		}
		for i, total := range taxes {
			in.Taxes = append(in.Taxes, calculations.TaxYearRecord{Year: i + 1, Total: total})
		}

		var loanTerms *calculations.LoanTerms
		if raw, ok := params["loan"].(map[string]interface{}); ok {
			terms, err := loanTermsFromParams(raw)
			if err != nil {
				return nil, err
			}
			loanTerms = &terms
		}

		span.SetAttributes(
			attribute.Int("years", in.Years),
			attribute.Bool("with_loan", loanTerms != nil),
		)

		metrics.APICalls.WithLabelValues("mcp", toolName, "started").Inc()

		if in.Years != 0 {
			if err := validators.CheckHorizon(cfg, in.Years); err != nil {
				return nil, validationFailed(span, toolName, err)
			}
		}
		for _, t := range in.Taxes {
			if err := validators.CheckAmount(cfg, "taxes", t.Total); err != nil {
				return nil, validationFailed(span, toolName, err)
			}
		}
		if loanTerms != nil {
			if err := validateLoan(cfg, *loanTerms); err != nil {
				return nil, validationFailed(span, toolName, err)
			}
			schedule, err := calculations.LoanScheduleFor(*loanTerms)
			if err != nil {
				return nil, calculationFailed(span, toolName, err)
			}
			in.Loan = schedule
		}

		records, err := calculations.Aggregate(in)
		if err != nil {
			return nil, calculationFailed(span, toolName, err)
		}

		attrs := []attribute.KeyValue{attribute.Int("horizon", len(records))}
		if n := len(records); n > 0 {
			attrs = append(attrs, attribute.Float64("cumulative_cashflow", records[n-1].CumulativeCashflow))
		}
		succeeded(span, toolName, attrs...)
		return records, nil
	}
}

// RealEstatePlanHandler рассчитывает полный план по сценарию объекта
func RealEstatePlanHandler(svc *service.PlanService, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		toolName := "real_estate_plan"

		ctx, span := tracer.Start(ctx, toolName)
		defer span.End()

		var sc scenario.Scenario
		ok, err := decodeParam(params, "scenario", &sc)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, invalidParam("scenario")
		}
		if years, err := optionalInt(params, "years", 0); err != nil {
			return nil, err
		} else if years > 0 {
			sc.Years = years
		}

		span.SetAttributes(
			attribute.String("scenario", sc.Name),
			attribute.Int("years", sc.Years),
		)

		metrics.APICalls.WithLabelValues("mcp", toolName, "started").Inc()

		withDefaults := sc.WithDefaults(svc.Config())
		if err := withDefaults.Validate(svc.Config()); err != nil {
			return nil, validationFailed(span, toolName, err)
		}

		result, err := svc.BuildPlan(ctx, sc)
		if err != nil {
			return nil, calculationFailed(span, toolName, err)
		}

		succeeded(span, toolName,
			attribute.Bool("cached", result.Cached),
			attribute.Float64("final_cumulative_cashflow", result.Plan.Summary.FinalCumulativeCashflow),
		)
		return result, nil
	}
}

// PlanHistoryHandler возвращает последние рассчитанные планы
func PlanHistoryHandler(svc *service.PlanService, tracer trace.Tracer) ToolHandler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		toolName := "plan_history"

		ctx, span := tracer.Start(ctx, toolName)
		defer span.End()

		limit, err := optionalInt(params, "limit", service.DefaultHistoryLimit)
		if err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.Int("limit", limit))

		metrics.APICalls.WithLabelValues("mcp", toolName, "started").Inc()

		if err := validators.ValidateIntRange("limit", limit, 1, 1000); err != nil {
			return nil, validationFailed(span, toolName, err)
		}

		runs, err := svc.History(ctx, limit)
		if err != nil {
			return nil, calculationFailed(span, toolName, err)
		}

		succeeded(span, toolName, attribute.Int("runs", len(runs)))
		return runs, nil
	}
}
