package calculations

import "math"

const (
	irrLow        = -0.5
	irrHigh       = 1.0
	irrIterations = 200
	irrTolerance  = 1e-13
)

// MonthlyIRR находит ставку r, при которой сумма flows[t]/(1+r)^t равна нулю.
// Используется бисекция, поэтому результат детерминирован. Второе значение false,
// если на отрезке поиска нет смены знака.
func MonthlyIRR(flows []float64) (float64, bool) {
	if len(flows) < 2 {
		return 0, false
	}
	lo, hi := irrLow, irrHigh
	fLo, fHi := npv(flows, lo), npv(flows, hi)
	if math.IsNaN(fLo) || math.IsNaN(fHi) {
		return 0, false
	}
	if fLo == 0 {
		return lo, true
	}
	if fHi == 0 {
		return hi, true
	}
	if (fLo > 0) == (fHi > 0) {
		return 0, false
	}

	for i := 0; i < irrIterations && hi-lo > irrTolerance; i++ {
		mid := (lo + hi) / 2
		fMid := npv(flows, mid)
		if fMid == 0 {
			return mid, true
		}
		if (fMid > 0) == (fLo > 0) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, true
}

func npv(flows []float64, rate float64) float64 {
	discount := 1.0
	factor := 1.0 / (1.0 + rate)
	sum := 0.0
	for _, f := range flows {
		sum += f * discount
		discount *= factor
	}
	return sum
}

// EffectiveRateThrough возвращает эффективную годовую ставку (1+r)^12-1 по потокам
// первых months платежей: выдача кредита, платежи и погашение остатка в конце периода
func (s *LoanSchedule) EffectiveRateThrough(months int) float64 {
	if s == nil || len(s.Monthly) == 0 || months <= 0 {
		return 0
	}
	months = min(months, len(s.Monthly))

	flows := make([]float64, months+1)
	flows[0] = s.Terms.Principal
	for i := 0; i < months; i++ {
		flows[i+1] = -s.Monthly[i].Payment
	}
	flows[months] -= s.Monthly[months-1].Balance

	r, ok := MonthlyIRR(flows)
	if !ok {
		return 0
	}
	return math.Pow(1+r, 12) - 1
}
