package calculations

import (
	"fmt"

	"github.com/cloud-ru/mcp-realty-go/pkg/utils"
)

// CashflowInputs - ряды, из которых собирается денежный поток.
// Years <= 0 означает горизонт по самому длинному ряду.
type CashflowInputs struct {
	Years        int
	Income       []float64
	Expenses     []float64
	Taxes        []TaxYearRecord
	Depreciation []float64
	Loan         *LoanSchedule
}

// Aggregate собирает годовой денежный поток. Амортизация не влияет на денежный поток
// и учитывается только в налогооблагаемой базе TaxableIncome.
func Aggregate(in CashflowInputs) ([]CashflowRecord, error) {
	if in.Years < 0 {
		return nil, invalidArg("years", "должен быть >= 0")
	}
	series := []struct {
		name   string
		values []float64
	}{
		{"income", in.Income},
		{"expenses", in.Expenses},
		{"depreciation", in.Depreciation},
	}
	for _, s := range series {
		for i, v := range s.values {
			if !utils.IsFinite(v) || v < 0 {
				return nil, invalidArg(s.name, fmt.Sprintf("значение за год %d должно быть >= 0", i+1))
			}
		}
	}

	years := in.Years
	if years == 0 {
		years = max(len(in.Income), len(in.Expenses), len(in.Taxes), len(in.Depreciation))
		if in.Loan != nil {
			years = max(years, len(in.Loan.Annual))
		}
	}

	var loanAnnual []AnnualLoanSummary
	fullTermAPR := 0.0
	if in.Loan != nil {
		loanAnnual = in.Loan.Annual
		fullTermAPR = in.Loan.EffectiveRateThrough(len(in.Loan.Monthly))
	}

	out := make([]CashflowRecord, 0, years)
	cumulative := 0.0
	monthsThrough := 0
	for y := 1; y <= years; y++ {
		rec := CashflowRecord{
			Year:         y,
			Income:       valueAt(in.Income, y),
			Expenses:     valueAt(in.Expenses, y),
			Depreciation: valueAt(in.Depreciation, y),
		}
		if y <= len(in.Taxes) {
			rec.TaxTotal = in.Taxes[y-1].Total
		}
		if y <= len(loanAnnual) {
			loanYear := loanAnnual[y-1]
			rec.LoanPrincipal = utils.Round2(loanYear.PrincipalPaid)
			rec.LoanInterest = utils.Round2(loanYear.InterestPaid)
			rec.LoanBalance = utils.Round2(loanYear.BalanceEnd)
			monthsThrough += loanYear.Months
			rec.APR = in.Loan.EffectiveRateThrough(monthsThrough)
		} else if in.Loan != nil {
			rec.APR = fullTermAPR
		}

		rec.NetCashflow = utils.Round2(rec.Income - rec.Expenses - rec.TaxTotal - rec.LoanInterest - rec.LoanPrincipal)
		rec.TaxableIncome = utils.Round2(rec.Income - rec.Expenses - rec.TaxTotal - rec.LoanInterest - rec.Depreciation)
		cumulative = utils.Round2(cumulative + rec.NetCashflow)
		rec.CumulativeCashflow = cumulative
		out = append(out, rec)
	}
	return out, nil
}
