package calculations

import (
	"math"

	"github.com/cloud-ru/mcp-realty-go/pkg/utils"
)

const (
	// DefaultInitialCapitalRatio - доля собственных средств в цене покупки
	DefaultInitialCapitalRatio = 0.2
	// DefaultGrossYield - валовая доходность для оценки цены продажи
	DefaultGrossYield = 0.045
	// CapitalGainsTaxRate - ставка налога на доход от продажи
	CapitalGainsTaxRate = 0.20315
)

// ExitInputs - данные для оценки продажи по годам
type ExitInputs struct {
	PurchasePrice  float64
	InitialCapital float64
	GrossYield     float64
	AnnualGross    []float64
	Depreciation   []float64
	Cashflow       []CashflowRecord
}

// EstimateExits оценивает результат продажи объекта в конце каждого года:
// цена продажи по валовой доходности, налог с прироста с учетом накопленной амортизации,
// итоговая прибыль с учетом накопленного денежного потока и остатка кредита
func EstimateExits(in ExitInputs) []ExitEstimate {
	yield := in.GrossYield
	if yield <= 0 {
		yield = DefaultGrossYield
	}

	out := make([]ExitEstimate, 0, len(in.Cashflow))
	depreciated := 0.0
	for _, cf := range in.Cashflow {
		depreciated += valueAt(in.Depreciation, cf.Year)

		sale := utils.RoundYen(valueAt(in.AnnualGross, cf.Year) / yield)
		gain := sale - in.PurchasePrice + depreciated
		taxOnSale := utils.RoundYen(math.Max(gain*CapitalGainsTaxRate, 0))
		netProfit := utils.Round2(cf.CumulativeCashflow + sale - cf.LoanBalance - taxOnSale - in.InitialCapital)

		roe := 0.0
		if in.InitialCapital > 0 {
			roe = utils.RoundTo(netProfit/in.InitialCapital, 4)
		}
		out = append(out, ExitEstimate{
			Year:           cf.Year,
			SalePrice:      sale,
			TaxOnSale:      taxOnSale,
			NetProfit:      netProfit,
			ReturnOnEquity: roe,
		})
	}
	return out
}

// GrowthFor рассчитывает ROI и среднегодовую доходность собственного капитала
func GrowthFor(invested, finalValue float64, years int) GrowthMetrics {
	var roiPercent float64
	if invested > 0 {
		roiPercent = utils.Round2((finalValue - invested) / invested * 100)
	}

	var annualized float64
	if years > 0 && invested > 0 && finalValue > 0 {
		annualized = utils.Round2((math.Pow(finalValue/invested, 1.0/float64(years)) - 1.0) * 100)
	}

	return GrowthMetrics{
		ROIPercent:              roiPercent,
		AnnualizedReturnPercent: annualized,
		CapitalGain:             utils.Round2(finalValue - invested),
		TotalInvested:           utils.Round2(invested),
		FinalValue:              utils.Round2(finalValue),
		Years:                   float64(years),
	}
}

// BestExit возвращает год продажи с максимальной прибылью; 0, если оценок нет
func BestExit(exits []ExitEstimate) (ExitEstimate, bool) {
	if len(exits) == 0 {
		return ExitEstimate{}, false
	}
	best := exits[0]
	for _, e := range exits[1:] {
		if e.NetProfit > best.NetProfit {
			best = e
		}
	}
	return best, true
}
