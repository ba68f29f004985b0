package calculations

import (
	"fmt"
	"math"

	"github.com/cloud-ru/mcp-realty-go/pkg/utils"
)

// NormalizeRate приводит ставку к доле: значение по модулю больше 1 считается процентом
func NormalizeRate(rate float64) float64 {
	if math.Abs(rate) > 1 {
		return rate / 100.0
	}
	return rate
}

func (t LoanTerms) withDefaults() LoanTerms {
	if t.Method == "" {
		t.Method = MethodEqualTotal
	}
	if t.GroupBy == "" {
		t.GroupBy = GroupAnniversary
	}
	return t
}

func (t LoanTerms) validate() error {
	if !utils.IsFinite(t.Principal) || t.Principal <= 0 {
		return invalidArg("principal", "должен быть > 0")
	}
	if t.Years <= 0 {
		return invalidArg("years", "должен быть > 0")
	}
	if t.StartMonth < 1 || t.StartMonth > 12 {
		return invalidArg("start_month", "должен быть в диапазоне 1..12")
	}
	if !utils.IsFinite(t.AnnualRate) || t.AnnualRate < 0 {
		return invalidArg("annual_rate", "должна быть конечным числом >= 0")
	}
	switch t.Method {
	case MethodEqualPrincipal, MethodEqualTotal:
	default:
		return invalidArg("method", "допустимы equal_principal или equal_total")
	}
	switch t.GroupBy {
	case GroupAnniversary, GroupCalendar:
	default:
		return invalidArg("group_by", "допустимы anniversary или calendar")
	}
	for i, p := range t.RateSchedule {
		param := fmt.Sprintf("rate_schedule[%d]", i)
		if p.StartYear < 1 {
			return invalidArg(param, "start_year должен быть >= 1")
		}
		if p.EndYear != 0 && p.EndYear < p.StartYear {
			return invalidArg(param, "end_year меньше start_year")
		}
		if !utils.IsFinite(p.AnnualRate) || p.AnnualRate < 0 {
			return invalidArg(param, "annual_rate должна быть >= 0")
		}
	}
	return nil
}

// monthlyRate возвращает месячную ставку для платежа с номером month (с 1)
func (t LoanTerms) monthlyRate(month int) float64 {
	year := (month-1)/12 + 1
	for _, p := range t.RateSchedule {
		end := p.EndYear
		if end == 0 {
			end = p.StartYear
		}
		if p.StartYear <= year && year <= end {
			return NormalizeRate(p.AnnualRate) / 12.0
		}
	}
	return NormalizeRate(t.AnnualRate) / 12.0
}

// LoanScheduleFor рассчитывает помесячный и годовой график кредита
func LoanScheduleFor(terms LoanTerms) (*LoanSchedule, error) {
	terms = terms.withDefaults()
	if err := terms.validate(); err != nil {
		return nil, err
	}

	var monthly []MonthlyPayment
	if terms.Method == MethodEqualPrincipal {
		monthly = equalPrincipalMonths(terms)
	} else {
		monthly = equalTotalMonths(terms)
	}

	var annual []AnnualLoanSummary
	if terms.GroupBy == GroupCalendar {
		annual = groupMonths(monthly, calendarSizes(len(monthly), terms.StartMonth))
	} else {
		annual = groupMonths(monthly, anniversarySizes(len(monthly)))
	}

	totalPaid, totalInterest := 0.0, 0.0
	for _, m := range monthly {
		totalPaid += m.Payment
		totalInterest += m.Interest
	}

	schedule := &LoanSchedule{
		Terms:   terms,
		Monthly: monthly,
		Annual:  annual,
	}
	schedule.Summary = LoanSummary{
		Principal:                  utils.Round2(terms.Principal),
		AnnualRatePercent:          utils.Round2(NormalizeRate(terms.AnnualRate) * 100),
		Months:                     len(monthly),
		FirstMonthPayment:          utils.Round2(monthly[0].Payment),
		LastMonthPayment:           utils.Round2(monthly[len(monthly)-1].Payment),
		TotalPaid:                  utils.Round2(totalPaid),
		TotalInterest:              utils.Round2(totalInterest),
		EffectiveAnnualRatePercent: utils.RoundTo(schedule.EffectiveRateThrough(len(monthly))*100, 4),
	}
	return schedule, nil
}

func equalPrincipalMonths(terms LoanTerms) []MonthlyPayment {
	n := terms.Years * 12
	fixed := terms.Principal / float64(n)
	balance := terms.Principal
	out := make([]MonthlyPayment, 0, n)

	for m := 1; m <= n; m++ {
		interest := balance * terms.monthlyRate(m)
		principal := fixed
		if m == n {
			principal = balance
		}
		balance -= principal
		if m == n || balance < 1e-9 {
			balance = 0
		}
		out = append(out, MonthlyPayment{
			Month:     m,
			Payment:   principal + interest,
			Principal: principal,
			Interest:  interest,
			Balance:   balance,
		})
	}
	return out
}

func equalTotalMonths(terms LoanTerms) []MonthlyPayment {
	n := terms.Years * 12
	balance := terms.Principal
	out := make([]MonthlyPayment, 0, n)

	rate := math.NaN()
	payment := 0.0
	for m := 1; m <= n; m++ {
		r := terms.monthlyRate(m)
		// платеж пересчитывается на оставшийся срок при смене ставки
		if m == 1 || math.Abs(r-rate) > 1e-14 {
			rate = r
			payment = annuityPayment(balance, rate, n-m+1)
		}

		interest := balance * rate
		principal := payment - interest
		monthPayment := payment
		if m == n || principal >= balance {
			principal = balance
			monthPayment = principal + interest
			balance = 0
		} else {
			balance -= principal
			if balance < 1e-9 {
				balance = 0
			}
		}
		out = append(out, MonthlyPayment{
			Month:     m,
			Payment:   monthPayment,
			Principal: principal,
			Interest:  interest,
			Balance:   balance,
		})
	}
	return out
}

// annuityPayment - аннуитетный платеж; при нулевой ставке долг делится поровну
func annuityPayment(balance, monthlyRate float64, months int) float64 {
	if months <= 0 {
		return balance
	}
	if monthlyRate == 0 {
		return balance / float64(months)
	}
	return balance * monthlyRate / (1.0 - math.Pow(1.0+monthlyRate, float64(-months)))
}

func anniversarySizes(total int) []int {
	var sizes []int
	for total > 0 {
		size := min(12, total)
		sizes = append(sizes, size)
		total -= size
	}
	return sizes
}

func calendarSizes(total, startMonth int) []int {
	first := min(13-startMonth, total)
	sizes := []int{first}
	return append(sizes, anniversarySizes(total-first)...)
}

func groupMonths(monthly []MonthlyPayment, sizes []int) []AnnualLoanSummary {
	out := make([]AnnualLoanSummary, 0, len(sizes))
	idx := 0
	cumulative := 0.0
	for _, size := range sizes {
		if size <= 0 {
			continue
		}
		row := AnnualLoanSummary{YearIndex: len(out) + 1, Months: size}
		for _, m := range monthly[idx : idx+size] {
			row.PrincipalPaid += m.Principal
			row.InterestPaid += m.Interest
			row.TotalPaid += m.Payment
		}
		cumulative += row.TotalPaid
		row.CumulativePaid = cumulative
		row.BalanceEnd = monthly[idx+size-1].Balance
		idx += size
		out = append(out, row)
	}
	return out
}
