package calculations

import (
	"github.com/cloud-ru/mcp-realty-go/internal/ratetable"
	"github.com/cloud-ru/mcp-realty-go/pkg/utils"
)

const (
	// DefaultTaxYears - горизонт расчета налогов по умолчанию
	DefaultTaxYears = 40
	// DefaultFixedAssetRate - ставка налога на основные средства
	DefaultFixedAssetRate = 0.014
	// DefaultCityPlanRate - ставка налога на городское планирование
	DefaultCityPlanRate = 0.003
	// ResidentialAreaPerUnit - площадь участка на квартиру для льготы на жилую землю, м²
	ResidentialAreaPerUnit = 200.0

	landFixedReduction = 1.0 / 6.0
	landCityReduction  = 1.0 / 3.0
)

// ResidentialSpecialApplies определяет, применяется ли льгота на жилую землю
func ResidentialSpecialApplies(p TaxParams) bool {
	if p.LandResidentialSpecial != nil {
		return *p.LandResidentialSpecial
	}
	return p.LandAreaM2 <= float64(p.Units)*ResidentialAreaPerUnit
}

// ComputeAnnualTaxes рассчитывает налоги на землю и здание по годам.
// Земельный налог постоянен, база здания умножается на поправочный коэффициент года.
func ComputeAnnualTaxes(p TaxParams, corrections *ratetable.Table) ([]TaxYearRecord, error) {
	if !utils.IsFinite(p.LandAssessedValue) || p.LandAssessedValue < 0 {
		return nil, invalidArg("land_assessed_value", "должна быть >= 0")
	}
	if !utils.IsFinite(p.BuildingAssessedValue) || p.BuildingAssessedValue < 0 {
		return nil, invalidArg("building_assessed_value", "должна быть >= 0")
	}
	if !utils.IsFinite(p.LandAreaM2) || p.LandAreaM2 < 0 {
		return nil, invalidArg("land_area_m2", "должна быть >= 0")
	}
	if p.Units < 0 {
		return nil, invalidArg("units", "должно быть >= 0")
	}
	if p.Years <= 0 {
		return nil, invalidArg("years", "должен быть > 0")
	}
	if p.FixedAssetRate < 0 || p.CityPlanRate < 0 {
		return nil, invalidArg("rate", "ставки налога должны быть >= 0")
	}

	fixedRate := DefaultFixedAssetRate
	if p.FixedAssetRate > 0 {
		fixedRate = NormalizeRate(p.FixedAssetRate)
	}
	cityRate := DefaultCityPlanRate
	if p.CityPlanRate > 0 {
		cityRate = NormalizeRate(p.CityPlanRate)
	}

	landFixedBase := p.LandAssessedValue
	landCityBase := p.LandAssessedValue
	if ResidentialSpecialApplies(p) {
		landFixedBase = p.LandAssessedValue * landFixedReduction
		landCityBase = p.LandAssessedValue * landCityReduction
	}
	fixedLand := utils.Round2(landFixedBase * fixedRate)
	cityLand := utils.Round2(landCityBase * cityRate)

	out := make([]TaxYearRecord, 0, p.Years)
	for i, correction := range corrections.Series(p.Years) {
		y := i + 1
		base := p.BuildingAssessedValue * correction
		fixedBuilding := utils.Round2(base * fixedRate)
		cityBuilding := utils.Round2(base * cityRate)
		out = append(out, TaxYearRecord{
			Year:             y,
			FixedTaxLand:     fixedLand,
			CityTaxLand:      cityLand,
			FixedTaxBuilding: fixedBuilding,
			CityTaxBuilding:  cityBuilding,
			Total:            utils.Round2(fixedLand + cityLand + fixedBuilding + cityBuilding),
		})
	}
	return out, nil
}
