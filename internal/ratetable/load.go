package ratetable

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloud-ru/mcp-realty-go/internal/logger"
	"github.com/cloud-ru/mcp-realty-go/internal/metrics"
)

// Виды таблиц для метрик и ключей кеша
const (
	KindCorrection   = "correction"
	KindAmounts      = "amounts"
	KindDepreciation = "depreciation"
	KindRepairsPlan  = "repairs_plan"
)

// LoadCorrection загружает поправочные коэффициенты здания (по умолчанию 1.0)
func LoadCorrection(path string) *Table {
	return load(KindCorrection, path, NeutralCorrection)
}

// LoadAmounts загружает годовые суммы (по умолчанию 0)
func LoadAmounts(path string) *Table {
	return load(KindAmounts, path, NeutralAmount)
}

func load(kind, path string, neutral float64) *Table {
	f, ok := open(kind, path)
	if !ok {
		return Neutral(neutral)
	}
	defer f.Close()

	t, err := Parse(f, neutral)
	if err != nil {
		logger.L.Warn("таблица не прочитана, используются значения по умолчанию",
			"kind", kind, "path", path, "error", err)
		metrics.RateTableLoads.WithLabelValues(kind, "default").Inc()
		return Neutral(neutral)
	}
	if t.Shape() == ShapeUnrecognized {
		logger.L.Warn("таблица не распознана, используются значения по умолчанию", "kind", kind, "path", path)
		metrics.RateTableLoads.WithLabelValues(kind, "default").Inc()
		return t
	}
	logger.L.Debug("таблица загружена", "kind", kind, "path", path, "shape", t.Shape().String(), "entries", t.Len())
	metrics.RateTableLoads.WithLabelValues(kind, "loaded").Inc()
	return t
}

// LoadDepreciationRates загружает нормы амортизации; при отсутствии файла - пустая таблица
func LoadDepreciationRates(path string) *DepreciationRates {
	f, ok := open(KindDepreciation, path)
	if !ok {
		return &DepreciationRates{}
	}
	defer f.Close()

	rates, err := ParseDepreciationRates(f)
	if err != nil || rates.Len() == 0 {
		logger.L.Warn("нормы амортизации не прочитаны, будет использована формула 1/срок",
			"path", path, "error", err)
		metrics.RateTableLoads.WithLabelValues(KindDepreciation, "default").Inc()
		return &DepreciationRates{}
	}
	metrics.RateTableLoads.WithLabelValues(KindDepreciation, "loaded").Inc()
	return rates
}

// LoadRepairsPlan загружает план ремонтов; nil, если файла нет или он пуст
func LoadRepairsPlan(path string) *RepairsPlan {
	f, ok := open(KindRepairsPlan, path)
	if !ok {
		return nil
	}
	defer f.Close()

	plan, err := ParseRepairsPlan(f)
	if err != nil || plan == nil {
		logger.L.Warn("план ремонтов не прочитан", "path", path, "error", err)
		metrics.RateTableLoads.WithLabelValues(KindRepairsPlan, "default").Inc()
		return nil
	}
	metrics.RateTableLoads.WithLabelValues(KindRepairsPlan, "loaded").Inc()
	return plan
}

// open открывает CSV-файл; отсутствие источника не является ошибкой
func open(kind, path string) (*os.File, bool) {
	if path == "" {
		return nil, false
	}
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		logger.L.Warn("источник таблицы не является CSV", "kind", kind, "path", path)
		metrics.RateTableLoads.WithLabelValues(kind, "default").Inc()
		return nil, false
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.L.Warn("файл таблицы не найден", "kind", kind, "path", path)
		} else {
			logger.L.Warn("файл таблицы недоступен", "kind", kind, "path", path, "error", err)
		}
		metrics.RateTableLoads.WithLabelValues(kind, "default").Inc()
		return nil, false
	}
	return f, true
}
