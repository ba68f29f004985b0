package calculations

import (
	"fmt"

	"github.com/cloud-ru/mcp-realty-go/internal/ratetable"
	"github.com/cloud-ru/mcp-realty-go/pkg/utils"
)

const landValueShare = 0.2

// PlanInput - все параметры расчета объекта. Таблицы передаются уже загруженными.
type PlanInput struct {
	Years               int
	PurchasePrice       float64
	InitialCapitalRatio float64
	GrossYield          float64

	// Loan == nil или Loan.Years == 0 означает покупку без кредита.
	// Нулевая сумма кредита заменяется ценой покупки за вычетом собственных средств.
	Loan *LoanTerms

	Tax          TaxParams
	Depreciation DepreciationInput
	Income       IncomeParams
	Expenses     ExpenseParams

	Corrections         *ratetable.Table
	DepreciationRates   *ratetable.DepreciationRates
	DepreciationOptions DepreciationOptions
}

// BuildPlan рассчитывает кредит, налоги, амортизацию, доходы, расходы,
// денежный поток и оценки продажи за горизонт Years
func BuildPlan(in PlanInput) (*Plan, error) {
	if in.Years <= 0 {
		return nil, invalidArg("years", "должен быть > 0")
	}
	if !utils.IsFinite(in.PurchasePrice) || in.PurchasePrice < 0 {
		return nil, invalidArg("purchase_price", "должна быть >= 0")
	}
	ratio := in.InitialCapitalRatio
	if ratio == 0 {
		ratio = DefaultInitialCapitalRatio
	}
	if ratio < 0 || ratio > 1 {
		return nil, invalidArg("initial_capital_ratio", "должна быть в диапазоне 0..1")
	}
	initialCapital := utils.RoundYen(in.PurchasePrice * ratio)

	var loan *LoanSchedule
	if in.Loan != nil && in.Loan.Years > 0 {
		terms := *in.Loan
		if terms.Principal <= 0 {
			terms.Principal = in.PurchasePrice - initialCapital
		}
		if terms.StartMonth == 0 {
			terms.StartMonth = 1
		}
		if terms.Principal > 0 {
			var err error
			if loan, err = LoanScheduleFor(terms); err != nil {
				return nil, fmt.Errorf("кредит: %w", err)
			}
		}
	}

	depOpts := in.DepreciationOptions
	depOpts.Years = in.Years
	depreciation, err := ComputeDepreciation(in.Depreciation, in.DepreciationRates, depOpts)
	if err != nil {
		return nil, fmt.Errorf("амортизация: %w", err)
	}

	tax := in.Tax
	tax.Years = in.Years
	if tax.BuildingAssessedValue == 0 {
		tax.BuildingAssessedValue = depreciation.Building.Cost
	}
	if tax.LandAssessedValue == 0 {
		tax.LandAssessedValue = utils.RoundYen(in.Depreciation.BuildingCost * landValueShare)
	}
	if tax.Units == 0 {
		tax.Units = in.Income.Units
	}
	taxes, err := ComputeAnnualTaxes(tax, in.Corrections)
	if err != nil {
		return nil, fmt.Errorf("налоги: %w", err)
	}

	incomeParams := in.Income
	incomeParams.Years = in.Years
	if incomeParams.Units == 0 {
		incomeParams.Units = 1
	}
	income, err := ProjectIncome(incomeParams)
	if err != nil {
		return nil, fmt.Errorf("доходы: %w", err)
	}

	expenseParams := in.Expenses
	expenseParams.Years = in.Years
	expenses, err := ProjectExpenses(expenseParams, income)
	if err != nil {
		return nil, fmt.Errorf("расходы: %w", err)
	}

	incomeSeries := make([]float64, len(income))
	grossSeries := make([]float64, len(income))
	for i, row := range income {
		incomeSeries[i] = row.AnnualIncome
		grossSeries[i] = row.AnnualGross
	}
	expenseSeries := make([]float64, len(expenses))
	for i, row := range expenses {
		expenseSeries[i] = row.Total
	}

	cashflow, err := Aggregate(CashflowInputs{
		Years:        in.Years,
		Income:       incomeSeries,
		Expenses:     expenseSeries,
		Taxes:        taxes,
		Depreciation: depreciation.Annual,
		Loan:         loan,
	})
	if err != nil {
		return nil, fmt.Errorf("денежный поток: %w", err)
	}

	exits := EstimateExits(ExitInputs{
		PurchasePrice:  in.PurchasePrice,
		InitialCapital: initialCapital,
		GrossYield:     in.GrossYield,
		AnnualGross:    grossSeries,
		Depreciation:   depreciation.Annual,
		Cashflow:       cashflow,
	})

	plan := &Plan{
		Loan:         loan,
		Taxes:        taxes,
		Depreciation: depreciation,
		Income:       income,
		Expenses:     expenses,
		Cashflow:     cashflow,
		Exit:         exits,
	}
	plan.Summary = summarize(in, initialCapital, plan)
	return plan, nil
}

func summarize(in PlanInput, initialCapital float64, plan *Plan) PlanSummary {
	s := PlanSummary{
		Years:          in.Years,
		PurchasePrice:  in.PurchasePrice,
		InitialCapital: initialCapital,
	}
	if plan.Loan != nil {
		s.LoanPrincipal = plan.Loan.Summary.Principal
	}
	for _, cf := range plan.Cashflow {
		s.TotalIncome += cf.Income
		s.TotalExpenses += cf.Expenses
		s.TotalTaxes += cf.TaxTotal
		s.TotalInterest += cf.LoanInterest
		s.TotalDepreciation += cf.Depreciation
	}
	s.TotalIncome = utils.Round2(s.TotalIncome)
	s.TotalExpenses = utils.Round2(s.TotalExpenses)
	s.TotalTaxes = utils.Round2(s.TotalTaxes)
	s.TotalInterest = utils.Round2(s.TotalInterest)
	s.TotalDepreciation = utils.Round2(s.TotalDepreciation)
	if n := len(plan.Cashflow); n > 0 {
		s.FinalCumulativeCashflow = plan.Cashflow[n-1].CumulativeCashflow
	}
	if best, ok := BestExit(plan.Exit); ok {
		s.BestExitYear = best.Year
		s.BestExit = GrowthFor(initialCapital, initialCapital+best.NetProfit, best.Year)
	}
	return s
}
