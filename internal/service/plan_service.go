// Package service рассчитывает планы по сценариям с кешированием результатов.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/cloud-ru/mcp-realty-go/internal/calculations"
	"github.com/cloud-ru/mcp-realty-go/internal/config"
	"github.com/cloud-ru/mcp-realty-go/internal/logger"
	"github.com/cloud-ru/mcp-realty-go/internal/metrics"
	"github.com/cloud-ru/mcp-realty-go/internal/ratetable"
	"github.com/cloud-ru/mcp-realty-go/internal/repository"
	"github.com/cloud-ru/mcp-realty-go/internal/scenario"
)

// DefaultHistoryLimit - сколько последних расчетов возвращает History по умолчанию
const DefaultHistoryLimit = 20

// PlanResult - рассчитанный план и признак попадания в кеш
type PlanResult struct {
	Key    string             `json:"key"`
	Cached bool               `json:"cached"`
	RunID  int64              `json:"run_id,omitempty"`
	Plan   *calculations.Plan `json:"plan"`
}

// PlanService рассчитывает планы по сценариям
type PlanService struct {
	cfg    *config.Config
	tables *ratetable.Cache
	cache  repository.CacheRepository
	runs   repository.RunRepository
}

// NewPlanService создает сервис. cache и runs могут быть nil.
func NewPlanService(cfg *config.Config, tables *ratetable.Cache,
	cache repository.CacheRepository,
	runs repository.RunRepository,
) *PlanService {
	return &PlanService{cfg: cfg, tables: tables, cache: cache, runs: runs}
}

// keyInput - все, от чего зависит результат расчета
type keyInput struct {
	Scenario             scenario.Scenario `json:"scenario"`
	MinUsedLife          int               `json:"min_used_life"`
	ResidualValue        float64           `json:"residual_value"`
	DepreciationRatesCSV string            `json:"depreciation_rates_csv"`
	Tables               string            `json:"tables"`
}

// ScenarioKey возвращает ключ кеша для сценария с уже примененными значениями по умолчанию.
// В ключ входят параметры амортизации из конфигурации и состояние файлов таблиц.
func (s *PlanService) ScenarioKey(sc scenario.Scenario) (string, error) {
	tables := sc.Tables()
	data, err := json.Marshal(keyInput{
		Scenario:             sc,
		MinUsedLife:          s.cfg.MinUsedLife,
		ResidualValue:        s.cfg.ResidualValue,
		DepreciationRatesCSV: s.cfg.DepreciationRatesCSV,
		Tables: s.tables.Fingerprint(
			tables.CorrectionRatesCSV,
			tables.CapexLargeCSV,
			tables.EquipmentRepairsCSV,
			tables.RepairsPlanCSV,
			s.cfg.DepreciationRatesCSV,
		),
	})
	if err != nil {
		return "", fmt.Errorf("сериализация сценария: %w", err)
	}
	return "plan:" + strconv.FormatUint(xxhash.Sum64(data), 16), nil
}

// Input загружает таблицы сценария и возвращает параметры расчета
func (s *PlanService) Input(sc scenario.Scenario) calculations.PlanInput {
	in := sc.PlanInput()
	tables := sc.Tables()

	in.Corrections = s.tables.Correction(tables.CorrectionRatesCSV)
	in.DepreciationRates = s.tables.DepreciationRates(s.cfg.DepreciationRatesCSV)
	in.DepreciationOptions = calculations.DepreciationOptions{
		MinUsedLife:   s.cfg.MinUsedLife,
		ResidualValue: s.cfg.ResidualValue,
	}

	if plan := s.tables.RepairsPlan(tables.RepairsPlanCSV); plan != nil {
		in.Expenses.CapexLarge = plan.CapexLarge
		in.Expenses.EquipmentRepairs = plan.EquipmentRepairs
	}
	if tables.CapexLargeCSV != "" {
		in.Expenses.CapexLarge = s.tables.Amounts(tables.CapexLargeCSV)
	}
	if tables.EquipmentRepairsCSV != "" {
		in.Expenses.EquipmentRepairs = s.tables.Amounts(tables.EquipmentRepairsCSV)
	}
	return in
}

// BuildPlan рассчитывает план по сценарию, используя кеш результатов и сохраняя историю
func (s *PlanService) BuildPlan(ctx context.Context, sc scenario.Scenario) (*PlanResult, error) {
	sc = sc.WithDefaults(s.cfg)
	if err := sc.Validate(s.cfg); err != nil {
		return nil, fmt.Errorf("неверные параметры: %w", err)
	}

	key, err := s.ScenarioKey(sc)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			var plan calculations.Plan
			if err := json.Unmarshal([]byte(cached), &plan); err == nil {
				metrics.CacheRequests.WithLabelValues("plan", "hit").Inc()
				return &PlanResult{Key: key, Cached: true, Plan: &plan}, nil
			}
			logger.L.Warn("Поврежденная запись кеша плана", "key", key)
		}
		metrics.CacheRequests.WithLabelValues("plan", "miss").Inc()
	}

	plan, err := calculations.BuildPlan(s.Input(sc))
	if err != nil {
		return nil, fmt.Errorf("расчет плана: %w", err)
	}
	result := &PlanResult{Key: key, Plan: plan}

	if s.cache != nil {
		if data, err := json.Marshal(plan); err == nil {
			if err := s.cache.Set(ctx, key, string(data)); err != nil {
				logger.L.Warn("Не удалось сохранить план в кеш", "key", key, "error", err)
			}
		}
	}

	if s.runs != nil {
		summary, _ := json.Marshal(plan.Summary)
		id, err := s.runs.Save(ctx, repository.PlanRun{
			ScenarioName: sc.Name,
			ScenarioKey:  key,
			Years:        sc.Years,
			SummaryJSON:  string(summary),
		})
		if err != nil {
			logger.L.Warn("Не удалось сохранить расчет в историю", "error", err)
		} else {
			result.RunID = id
		}
	}

	logger.L.Info("План рассчитан", "scenario", sc.Name, "years", sc.Years, "key", key)
	return result, nil
}

// History возвращает последние расчеты, новые первыми
func (s *PlanService) History(ctx context.Context, limit int) ([]repository.PlanRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.runs.Recent(ctx, limit)
}

// Config возвращает конфигурацию сервиса
func (s *PlanService) Config() *config.Config {
	return s.cfg
}
