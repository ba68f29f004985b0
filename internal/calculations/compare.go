package calculations

import (
	"github.com/cloud-ru/mcp-realty-go/pkg/utils"
)

// CompareMethods сравнивает аннуитетный и дифференцированный способы погашения
// при одинаковых условиях кредита
func CompareMethods(terms LoanTerms, withSchedules bool) (*ComparisonResult, error) {
	totalTerms := terms
	totalTerms.Method = MethodEqualTotal
	equalTotal, err := LoanScheduleFor(totalTerms)
	if err != nil {
		return nil, err
	}

	principalTerms := terms
	principalTerms.Method = MethodEqualPrincipal
	equalPrincipal, err := LoanScheduleFor(principalTerms)
	if err != nil {
		return nil, err
	}

	totalSummary := equalTotal.Summary
	principalSummary := equalPrincipal.Summary

	totalPaidDiff := utils.Round2(totalSummary.TotalPaid - principalSummary.TotalPaid)
	interestDiff := utils.Round2(totalSummary.TotalInterest - principalSummary.TotalInterest)

	// Определяем, какой способ выгоднее
	var cheaper, recommendation string
	var savings float64
	switch {
	case totalPaidDiff > 0:
		cheaper = string(MethodEqualPrincipal)
		savings = totalPaidDiff
		recommendation = "Дифференцированные платежи выгоднее по общей сумме выплат, но первые платежи выше и сильнее нагружают ранний денежный поток."
	case totalPaidDiff < 0:
		cheaper = string(MethodEqualTotal)
		savings = -totalPaidDiff
		recommendation = "Аннуитет выгоднее по общей сумме выплат, платеж постоянный."
	default:
		cheaper = "equal"
		recommendation = "Оба способа дают одинаковую сумму выплат."
	}

	result := &ComparisonResult{
		Principal:         totalSummary.Principal,
		AnnualRatePercent: totalSummary.AnnualRatePercent,
		Months:            totalSummary.Months,
		EqualTotal:        methodTotals(totalSummary),
		EqualPrincipal:    methodTotals(principalSummary),
		Difference: MethodDifference{
			TotalPaidDiff: totalPaidDiff,
			InterestDiff:  interestDiff,
			Cheaper:       cheaper,
			Savings:       savings,
		},
		Recommendation: recommendation,
	}
	if withSchedules {
		result.EqualTotalLoan = equalTotal
		result.EqualPrincipalLoan = equalPrincipal
	}
	return result, nil
}

func methodTotals(s LoanSummary) MethodTotals {
	return MethodTotals{
		TotalPaid:          s.TotalPaid,
		TotalInterest:      s.TotalInterest,
		FirstMonthPayment:  s.FirstMonthPayment,
		LastMonthPayment:   s.LastMonthPayment,
		OverpaymentPercent: utils.Round2(s.TotalInterest / s.Principal * 100),
	}
}
