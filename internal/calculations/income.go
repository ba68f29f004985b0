package calculations

import (
	"github.com/cloud-ru/mcp-realty-go/pkg/utils"
)

// ProjectIncome рассчитывает арендный доход по годам.
// Ставка изменения аренды применяется начиная со второго года, вакантность ограничена [0, 1].
func ProjectIncome(p IncomeParams) ([]IncomeYear, error) {
	if p.Years <= 0 {
		return nil, invalidArg("years", "должен быть > 0")
	}
	if p.Units <= 0 {
		return nil, invalidArg("units", "должно быть > 0")
	}
	monthlyRent := p.MonthlyRent
	if monthlyRent <= 0 && p.AnnualRent > 0 {
		monthlyRent = p.AnnualRent / 12.0
	}
	if !utils.IsFinite(monthlyRent) || monthlyRent < 0 {
		return nil, invalidArg("monthly_rent", "должна быть >= 0")
	}

	rentChange := rateSeries(p.RentChangeRates, p.RentChange, p.Years)
	vacancy := rateSeries(p.VacancyRates, p.Vacancy, p.Years)

	out := make([]IncomeYear, 0, p.Years)
	current := monthlyRent
	for y := 0; y < p.Years; y++ {
		change := rentChange[y]
		vac := clamp(vacancy[y], 0, 1)
		if y > 0 {
			current *= 1.0 + change
		}
		gross := current * 12.0 * float64(p.Units)
		out = append(out, IncomeYear{
			Year:           y + 1,
			MonthlyRent:    utils.RoundYen(current),
			RentChangeRate: change,
			VacancyRate:    vac,
			AnnualGross:    utils.RoundYen(gross),
			AnnualIncome:   utils.RoundYen(gross * (1.0 - vac)),
		})
	}
	return out, nil
}

// rateSeries строит ряд ставок длины years: явный список продлевается последним значением,
// иначе используется тренд, иначе нули
func rateSeries(values []float64, trend *Trend, years int) []float64 {
	out := make([]float64, years)
	switch {
	case len(values) > 0:
		for i := range out {
			if i < len(values) {
				out[i] = values[i]
			} else {
				out[i] = values[len(values)-1]
			}
		}
	case trend != nil:
		v := trend.Initial
		for i := range out {
			out[i] = v
			v *= 1.0 + trend.Trend
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
