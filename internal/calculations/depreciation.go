package calculations

import (
	"math"

	"github.com/cloud-ru/mcp-realty-go/internal/ratetable"
	"github.com/cloud-ru/mcp-realty-go/pkg/utils"
)

const (
	// DefaultMinUsedLife - минимальный срок службы подержанного актива, лет
	DefaultMinUsedLife = 2
	// DefaultResidualValue - остаточная (памятная) стоимость, иен
	DefaultResidualValue = 1.0
	// BuildingShare - доля здания в общей цене, если стоимость оборудования не задана
	BuildingShare = 0.85

	usedLifeElapsedFactor = 0.2
)

func (o DepreciationOptions) withDefaults() DepreciationOptions {
	if o.MinUsedLife <= 0 {
		o.MinUsedLife = DefaultMinUsedLife
	}
	if o.ResidualValue < 0 {
		o.ResidualValue = 0
	}
	return o
}

// UsedLife возвращает срок службы подержанного актива. Для нового актива (elapsedYears <= 0)
// это нормативный срок без нижней границы minLife.
func UsedLife(statutoryLife, elapsedYears, minLife int) int {
	if elapsedYears <= 0 {
		return statutoryLife
	}
	var life int
	switch {
	case elapsedYears < statutoryLife:
		life = int(math.Floor(float64(statutoryLife-elapsedYears) + float64(elapsedYears)*usedLifeElapsedFactor))
	default:
		life = int(math.Floor(float64(statutoryLife) * usedLifeElapsedFactor))
	}
	return max(life, minLife)
}

// AnnualRate возвращает норму линейной амортизации: из таблицы, иначе 1/срок с точностью 3 знака
func AnnualRate(life int, rates *ratetable.DepreciationRates) float64 {
	if rate, ok := rates.StraightLine(life); ok {
		return rate
	}
	if life <= 0 {
		return 0
	}
	return utils.RoundTo(1.0/float64(life), 3)
}

// SplitBuildingPrice делит общую цену здания на здание и оборудование 85/15,
// если стоимость оборудования не задана
func SplitBuildingPrice(buildingCost, equipmentCost float64) (float64, float64) {
	if equipmentCost > 0 {
		return buildingCost, equipmentCost
	}
	building := utils.RoundYen(buildingCost * BuildingShare)
	return building, buildingCost - building
}

// ComputeComponent рассчитывает постоянную годовую амортизацию компонента.
// Накопленная амортизация не превышает стоимость за вычетом остаточной.
func ComputeComponent(cost float64, statutoryLife, elapsedYears int, rates *ratetable.DepreciationRates, opts DepreciationOptions) (*DepreciationComponent, error) {
	if !utils.IsFinite(cost) || cost < 0 {
		return nil, invalidArg("cost", "должна быть >= 0")
	}
	if statutoryLife <= 0 {
		return nil, invalidArg("statutory_life", "должен быть > 0")
	}
	if elapsedYears < 0 {
		return nil, invalidArg("elapsed_years", "должен быть >= 0")
	}
	opts = opts.withDefaults()

	life := UsedLife(statutoryLife, elapsedYears, opts.MinUsedLife)
	rate := AnnualRate(life, rates)
	charge := utils.RoundYen(cost * rate)

	years := opts.Years
	if years <= 0 {
		years = life
	}

	limit := math.Max(0, cost-opts.ResidualValue)
	schedule := make([]float64, years)
	cumulative := 0.0
	for y := range schedule {
		amount := math.Min(charge, limit-cumulative)
		if amount < 0 {
			amount = 0
		}
		schedule[y] = amount
		cumulative += amount
	}

	declining, _ := rates.DecliningBalance(life)

	return &DepreciationComponent{
		Cost:          cost,
		StatutoryLife: statutoryLife,
		ElapsedYears:  elapsedYears,
		UsedLife:      life,
		Rate:          rate,
		DecliningRate: declining,
		AnnualCharge:  charge,
		Schedule:      schedule,
		Total:         cumulative,
	}, nil
}

// ComputeDepreciation рассчитывает амортизацию здания и оборудования и их сумму по годам
func ComputeDepreciation(in DepreciationInput, rates *ratetable.DepreciationRates, opts DepreciationOptions) (*DepreciationResult, error) {
	if !utils.IsFinite(in.BuildingCost) || in.BuildingCost < 0 {
		return nil, invalidArg("building.cost", "должна быть >= 0")
	}
	buildingCost, equipmentCost := SplitBuildingPrice(in.BuildingCost, in.EquipmentCost)

	building, err := component(buildingCost, in.BuildingStatutoryLife, in.ElapsedYears, rates, opts, "building.statutory_life")
	if err != nil {
		return nil, err
	}
	equipment, err := component(equipmentCost, in.EquipmentStatutoryLife, in.ElapsedYears, rates, opts, "equipment.statutory_life")
	if err != nil {
		return nil, err
	}

	years := max(len(building.Schedule), len(equipment.Schedule))
	annual := make([]float64, years)
	for y := range annual {
		annual[y] = valueAt(building.Schedule, y+1) + valueAt(equipment.Schedule, y+1)
	}

	return &DepreciationResult{
		Building:  *building,
		Equipment: *equipment,
		Annual:    annual,
	}, nil
}

// component пропускает проверку срока для нулевой стоимости
func component(cost float64, life, elapsed int, rates *ratetable.DepreciationRates, opts DepreciationOptions, lifeParam string) (*DepreciationComponent, error) {
	if cost == 0 && life <= 0 {
		return &DepreciationComponent{ElapsedYears: elapsed, Schedule: make([]float64, max(opts.Years, 0))}, nil
	}
	if life <= 0 {
		return nil, invalidArg(lifeParam, "должен быть > 0")
	}
	return ComputeComponent(cost, life, elapsed, rates, opts)
}

// valueAt возвращает значение ряда за год (с 1); отсутствующий год равен 0
func valueAt(series []float64, year int) float64 {
	if year < 1 || year > len(series) {
		return 0
	}
	return series[year-1]
}
