package calculations

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/cloud-ru/mcp-realty-go/internal/ratetable"
)

func TestProjectIncome(t *testing.T) {
	tests := []struct {
		name      string
		params    IncomeParams
		wantError bool
		want      []float64
	}{
		{
			name: "Изменение аренды и вакантность",
			params: IncomeParams{
				MonthlyRent: 100000, Units: 2, Years: 3,
				RentChangeRates: []float64{0, -0.01},
				VacancyRates:    []float64{0.05},
			},
			want: []float64{2280000, 2257200, 2234628},
		},
		{
			name:   "Годовая аренда вместо месячной",
			params: IncomeParams{AnnualRent: 1200000, Units: 1, Years: 2},
			want:   []float64{1200000, 1200000},
		},
		{
			name: "Тренд вакантности",
			params: IncomeParams{
				MonthlyRent: 100000, Units: 1, Years: 3,
				Vacancy: &Trend{Initial: 0.05, Trend: 0.1},
			},
			want: []float64{1140000, 1134000, 1127400},
		},
		{
			name:   "Вакантность ограничена единицей",
			params: IncomeParams{MonthlyRent: 100000, Units: 1, Years: 1, VacancyRates: []float64{1.5}},
			want:   []float64{0},
		},
		{name: "Нет квартир", params: IncomeParams{MonthlyRent: 1, Units: 0, Years: 1}, wantError: true},
		{name: "Нулевой горизонт", params: IncomeParams{MonthlyRent: 1, Units: 1, Years: 0}, wantError: true},
		{name: "Отрицательная аренда", params: IncomeParams{MonthlyRent: -1, Units: 1, Years: 1}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ProjectIncome(tt.params)
			if (err != nil) != tt.wantError {
				t.Fatalf("ProjectIncome() error = %v, wantError %v", err, tt.wantError)
			}
			if tt.wantError {
				return
			}
			if len(rows) != len(tt.want) {
				t.Fatalf("expected %d rows, got %d", len(tt.want), len(rows))
			}
			for i, w := range tt.want {
				if math.Abs(rows[i].AnnualIncome-w) > 0.5 {
					t.Errorf("year %d income %f, want %f", i+1, rows[i].AnnualIncome, w)
				}
			}
		})
	}
}

func TestProjectExpenses(t *testing.T) {
	income := []IncomeYear{{Year: 1, AnnualIncome: 2280000}, {Year: 2, AnnualIncome: 2000000}}
	rows, err := ProjectExpenses(ExpenseParams{
		Years:             3,
		ManagementFee:     50000,
		ManagementFeeRate: 5,
		Repairs:           100000,
		Insurance:         30000,
		CapexLarge:        ratetable.FromValues(map[int]float64{2: 500000}, ratetable.NeutralAmount),
	}, income)
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].ManagementFee != 114000 {
		t.Errorf("year 1 fee %f, want 114000", rows[0].ManagementFee)
	}
	if rows[2].ManagementFee != 50000 {
		t.Errorf("year 3 fee should fall back to the fixed amount, got %f", rows[2].ManagementFee)
	}
	if rows[1].CapexLarge != 500000 || rows[0].CapexLarge != 0 {
		t.Errorf("capex = %f / %f", rows[0].CapexLarge, rows[1].CapexLarge)
	}
	if rows[1].EquipmentRepairs != 0 {
		t.Error("missing equipment table should give 0")
	}
	if rows[1].Total != 100000+100000+30000+500000 {
		t.Errorf("year 2 total %f", rows[1].Total)
	}

	if _, err := ProjectExpenses(ExpenseParams{Years: 1, Repairs: -1}, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("negative repairs should fail, got %v", err)
	}
}

func TestAggregate(t *testing.T) {
	t.Run("Амортизация не влияет на денежный поток", func(t *testing.T) {
		rows, err := Aggregate(CashflowInputs{
			Years:        1,
			Income:       []float64{1000},
			Expenses:     []float64{100},
			Taxes:        []TaxYearRecord{{Year: 1, Total: 50}},
			Depreciation: []float64{300},
		})
		if err != nil {
			t.Fatal(err)
		}
		r := rows[0]
		if r.NetCashflow != 850 {
			t.Errorf("net %f, want 850", r.NetCashflow)
		}
		if r.TaxableIncome != 550 {
			t.Errorf("taxable %f, want 550", r.TaxableIncome)
		}
		if r.APR != 0 || r.LoanBalance != 0 {
			t.Errorf("no loan should mean zero APR and balance, got %+v", r)
		}
	})

	t.Run("Отсутствующие годы равны нулю", func(t *testing.T) {
		rows, err := Aggregate(CashflowInputs{
			Years:    3,
			Income:   []float64{1000},
			Expenses: []float64{100, 200},
		})
		if err != nil {
			t.Fatal(err)
		}
		wantNet := []float64{900, -200, 0}
		wantCum := []float64{900, 700, 700}
		for i := range rows {
			if rows[i].Year != i+1 || rows[i].NetCashflow != wantNet[i] || rows[i].CumulativeCashflow != wantCum[i] {
				t.Errorf("row %d = %+v", i, rows[i])
			}
		}
	})

	t.Run("Горизонт по самому длинному ряду", func(t *testing.T) {
		rows, err := Aggregate(CashflowInputs{Income: []float64{1, 2}, Depreciation: []float64{1, 1, 1, 1}})
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 4 {
			t.Errorf("expected 4 rows, got %d", len(rows))
		}
	})

	t.Run("APR кредита", func(t *testing.T) {
		loan, err := LoanScheduleFor(LoanTerms{Principal: 20000000, AnnualRate: 3, Years: 10, StartMonth: 1})
		if err != nil {
			t.Fatal(err)
		}
		rows, err := Aggregate(CashflowInputs{Years: 12, Loan: loan})
		if err != nil {
			t.Fatal(err)
		}
		want := math.Pow(1+0.03/12, 12) - 1
		for _, r := range rows {
			if math.Abs(r.APR-want) > 1e-8 {
				t.Errorf("year %d APR %f, want %f", r.Year, r.APR, want)
			}
		}
		if rows[9].LoanBalance != 0 || rows[11].LoanPrincipal != 0 {
			t.Error("loan should be repaid after 10 years")
		}
		paid := 0.0
		for _, r := range rows {
			paid += r.LoanPrincipal
		}
		if math.Abs(paid-20000000) > 0.1 {
			t.Errorf("principal paid %f, want 20000000", paid)
		}
	})

	t.Run("Отрицательный доход", func(t *testing.T) {
		if _, err := Aggregate(CashflowInputs{Income: []float64{-1}}); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected invalid argument, got %v", err)
		}
	})
}

func samplePlanInput() PlanInput {
	return PlanInput{
		Years:         10,
		PurchasePrice: 100000000,
		Loan:          &LoanTerms{AnnualRate: 2, Years: 30, StartMonth: 1},
		Tax:           TaxParams{LandAreaM2: 500},
		Depreciation: DepreciationInput{
			BuildingCost:           60000000,
			BuildingStatutoryLife:  47,
			EquipmentStatutoryLife: 15,
		},
		Income:   IncomeParams{MonthlyRent: 80000, Units: 10, VacancyRates: []float64{0.05}},
		Expenses: ExpenseParams{ManagementFeeRate: 0.05, Repairs: 300000, Insurance: 100000},
	}
}

func TestBuildPlan(t *testing.T) {
	plan, err := BuildPlan(samplePlanInput())
	if err != nil {
		t.Fatal(err)
	}

	if plan.Summary.InitialCapital != 20000000 {
		t.Errorf("initial capital %f, want 20000000", plan.Summary.InitialCapital)
	}
	if plan.Summary.LoanPrincipal != 80000000 {
		t.Errorf("loan principal %f, want 80000000", plan.Summary.LoanPrincipal)
	}
	if len(plan.Cashflow) != 10 || len(plan.Taxes) != 10 || len(plan.Exit) != 10 {
		t.Fatalf("unexpected horizon: %d cashflow, %d taxes, %d exits", len(plan.Cashflow), len(plan.Taxes), len(plan.Exit))
	}

	// база здания по умолчанию - доля здания, земля - 20% стоимости здания, 10 квартир
	wantBuilding := 51000000 * DefaultFixedAssetRate
	if math.Abs(plan.Taxes[0].FixedTaxBuilding-wantBuilding) > 0.01 {
		t.Errorf("fixed building tax %f, want %f", plan.Taxes[0].FixedTaxBuilding, wantBuilding)
	}
	wantLand := 12000000.0 / 6 * DefaultFixedAssetRate
	if math.Abs(plan.Taxes[0].FixedTaxLand-wantLand) > 0.01 {
		t.Errorf("fixed land tax %f, want %f", plan.Taxes[0].FixedTaxLand, wantLand)
	}

	cum := 0.0
	for i, cf := range plan.Cashflow {
		cum += cf.NetCashflow
		if math.Abs(cf.CumulativeCashflow-cum) > 0.01 {
			t.Errorf("year %d cumulative %f, want %f", i+1, cf.CumulativeCashflow, cum)
		}
		if cf.Expenses != plan.Expenses[i].Total {
			t.Errorf("year %d expenses mismatch", i+1)
		}
	}

	exit := plan.Exit[0]
	wantSale := plan.Income[0].AnnualGross / DefaultGrossYield
	if math.Abs(exit.SalePrice-wantSale) > 0.5 {
		t.Errorf("sale price %f, want %f", exit.SalePrice, wantSale)
	}
	wantProfit := plan.Cashflow[0].CumulativeCashflow + exit.SalePrice - plan.Cashflow[0].LoanBalance - exit.TaxOnSale - 20000000
	if math.Abs(exit.NetProfit-wantProfit) > 0.01 {
		t.Errorf("net profit %f, want %f", exit.NetProfit, wantProfit)
	}
	if plan.Summary.BestExitYear < 1 || plan.Summary.BestExitYear > 10 {
		t.Errorf("best exit year %d", plan.Summary.BestExitYear)
	}

	again, err := BuildPlan(samplePlanInput())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(plan, again) {
		t.Error("identical inputs should give identical plans")
	}
}

func TestBuildPlanWithoutLoan(t *testing.T) {
	in := samplePlanInput()
	in.Loan = nil
	plan, err := BuildPlan(in)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Loan != nil {
		t.Error("loan should be absent")
	}
	for _, cf := range plan.Cashflow {
		if cf.LoanPrincipal != 0 || cf.APR != 0 {
			t.Errorf("year %d has loan flows", cf.Year)
		}
	}
}

func TestBuildPlanErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*PlanInput)
	}{
		{name: "Нулевой горизонт", modify: func(in *PlanInput) { in.Years = 0 }},
		{name: "Доля капитала больше 1", modify: func(in *PlanInput) { in.InitialCapitalRatio = 1.5 }},
		{name: "Неверный месяц кредита", modify: func(in *PlanInput) { in.Loan.StartMonth = 14 }},
		{name: "Нет срока здания", modify: func(in *PlanInput) { in.Depreciation.BuildingStatutoryLife = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := samplePlanInput()
			tt.modify(&in)
			if _, err := BuildPlan(in); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("expected invalid argument, got %v", err)
			}
		})
	}
}
