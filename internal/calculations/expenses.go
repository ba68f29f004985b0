package calculations

import (
	"github.com/cloud-ru/mcp-realty-go/internal/ratetable"
	"github.com/cloud-ru/mcp-realty-go/pkg/utils"
)

// ExpenseParams - параметры операционных расходов.
// ManagementFeeRate > 0 заменяет фиксированную плату долей от годового дохода.
type ExpenseParams struct {
	Years             int              `json:"years"`
	ManagementFee     float64          `json:"management_fee"`
	ManagementFeeRate float64          `json:"management_fee_rate"`
	Repairs           float64          `json:"repairs"`
	Insurance         float64          `json:"insurance"`
	Utilities         float64          `json:"utilities"`
	CapexLarge        *ratetable.Table `json:"-"`
	EquipmentRepairs  *ratetable.Table `json:"-"`
}

// ProjectExpenses рассчитывает операционные расходы по годам (без налогов и кредита)
func ProjectExpenses(p ExpenseParams, income []IncomeYear) ([]ExpenseYear, error) {
	if p.Years <= 0 {
		return nil, invalidArg("years", "должен быть > 0")
	}
	fields := []struct {
		name  string
		value float64
	}{
		{"management_fee", p.ManagementFee},
		{"management_fee_rate", p.ManagementFeeRate},
		{"repairs", p.Repairs},
		{"insurance", p.Insurance},
		{"utilities", p.Utilities},
	}
	for _, f := range fields {
		if !utils.IsFinite(f.value) || f.value < 0 {
			return nil, invalidArg(f.name, "должно быть >= 0")
		}
	}
	feeRate := NormalizeRate(p.ManagementFeeRate)

	out := make([]ExpenseYear, 0, p.Years)
	for y := 1; y <= p.Years; y++ {
		fee := p.ManagementFee
		if feeRate > 0 && y <= len(income) {
			fee = income[y-1].AnnualIncome * feeRate
		}
		row := ExpenseYear{
			Year:             y,
			ManagementFee:    utils.RoundYen(fee),
			Repairs:          utils.RoundYen(p.Repairs),
			Insurance:        utils.RoundYen(p.Insurance),
			Utilities:        utils.RoundYen(p.Utilities),
			CapexLarge:       utils.RoundYen(amountAt(p.CapexLarge, y)),
			EquipmentRepairs: utils.RoundYen(amountAt(p.EquipmentRepairs, y)),
		}
		row.Total = row.ManagementFee + row.Repairs + row.Insurance + row.Utilities + row.CapexLarge + row.EquipmentRepairs
		out = append(out, row)
	}
	return out, nil
}

// amountAt читает сумму из таблицы; отсутствующая таблица дает 0, отрицательные суммы отбрасываются
func amountAt(t *ratetable.Table, year int) float64 {
	if t == nil {
		return 0
	}
	return max(t.Lookup(year), 0)
}
