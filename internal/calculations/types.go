package calculations

// Method - способ погашения кредита
type Method string

const (
	// MethodEqualPrincipal - равные доли основного долга (дифференцированный)
	MethodEqualPrincipal Method = "equal_principal"
	// MethodEqualTotal - равные ежемесячные платежи (аннуитет)
	MethodEqualTotal Method = "equal_total"
)

// GroupBy - способ группировки месяцев в годы
type GroupBy string

const (
	// GroupAnniversary - блоки по 12 месяцев от первого платежа
	GroupAnniversary GroupBy = "anniversary"
	// GroupCalendar - календарные годы, первый год от start_month до декабря
	GroupCalendar GroupBy = "calendar"
)

// RatePeriod задает ставку для диапазона лет кредита
type RatePeriod struct {
	StartYear  int     `json:"start_year"`
	EndYear    int     `json:"end_year"`
	AnnualRate float64 `json:"annual_rate"`
}

// LoanTerms - условия кредита
type LoanTerms struct {
	Principal    float64      `json:"principal"`
	AnnualRate   float64      `json:"annual_rate"`
	Years        int          `json:"years"`
	StartMonth   int          `json:"start_month"`
	Method       Method       `json:"method"`
	GroupBy      GroupBy      `json:"group_by"`
	RateSchedule []RatePeriod `json:"rate_schedule,omitempty"`
}

// MonthlyPayment - одна строка помесячного графика
type MonthlyPayment struct {
	Month     int     `json:"month"`
	Payment   float64 `json:"payment"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

// AnnualLoanSummary - итоги по году кредита
type AnnualLoanSummary struct {
	YearIndex      int     `json:"year_index"`
	Months         int     `json:"months"`
	PrincipalPaid  float64 `json:"principal_paid"`
	InterestPaid   float64 `json:"interest_paid"`
	TotalPaid      float64 `json:"total_paid"`
	CumulativePaid float64 `json:"cumulative_paid"`
	BalanceEnd     float64 `json:"balance_end"`
}

// LoanSummary представляет сводку по кредиту
type LoanSummary struct {
	Principal                  float64 `json:"principal"`
	AnnualRatePercent          float64 `json:"annual_rate_percent"`
	Months                     int     `json:"months"`
	FirstMonthPayment          float64 `json:"first_month_payment"`
	LastMonthPayment           float64 `json:"last_month_payment"`
	TotalPaid                  float64 `json:"total_paid"`
	TotalInterest              float64 `json:"total_interest"`
	EffectiveAnnualRatePercent float64 `json:"effective_annual_rate_percent"`
}

// LoanSchedule - полный график кредита
type LoanSchedule struct {
	Terms   LoanTerms           `json:"terms"`
	Summary LoanSummary         `json:"summary"`
	Monthly []MonthlyPayment    `json:"monthly"`
	Annual  []AnnualLoanSummary `json:"annual"`
}

// MethodTotals - ключевые показатели одного способа погашения
type MethodTotals struct {
	TotalPaid          float64 `json:"total_paid"`
	TotalInterest      float64 `json:"total_interest"`
	FirstMonthPayment  float64 `json:"first_month_payment"`
	LastMonthPayment   float64 `json:"last_month_payment"`
	OverpaymentPercent float64 `json:"overpayment_percent"`
}

// MethodDifference - разница между способами погашения
type MethodDifference struct {
	TotalPaidDiff float64 `json:"total_paid_diff"`
	InterestDiff  float64 `json:"interest_diff"`
	Cheaper       string  `json:"cheaper"`
	Savings       float64 `json:"savings"`
}

// ComparisonResult представляет результат сравнения способов погашения
type ComparisonResult struct {
	Principal          float64          `json:"principal"`
	AnnualRatePercent  float64          `json:"annual_rate_percent"`
	Months             int              `json:"months"`
	EqualTotal         MethodTotals     `json:"equal_total"`
	EqualPrincipal     MethodTotals     `json:"equal_principal"`
	Difference         MethodDifference `json:"difference"`
	Recommendation     string           `json:"recommendation"`
	EqualTotalLoan     *LoanSchedule    `json:"equal_total_schedule,omitempty"`
	EqualPrincipalLoan *LoanSchedule    `json:"equal_principal_schedule,omitempty"`
}

// TaxParams - параметры расчета налога на имущество
type TaxParams struct {
	LandAssessedValue      float64 `json:"land_assessed_value"`
	BuildingAssessedValue  float64 `json:"building_assessed_value"`
	LandAreaM2             float64 `json:"land_area_m2"`
	Units                  int     `json:"units"`
	Years                  int     `json:"years"`
	FixedAssetRate         float64 `json:"fixed_asset_rate"`
	CityPlanRate           float64 `json:"city_plan_rate"`
	LandResidentialSpecial *bool   `json:"land_residential_special,omitempty"`
}

// TaxYearRecord - налоги за один год
type TaxYearRecord struct {
	Year             int     `json:"year"`
	FixedTaxLand     float64 `json:"fixed_tax_land"`
	CityTaxLand      float64 `json:"city_tax_land"`
	FixedTaxBuilding float64 `json:"fixed_tax_building"`
	CityTaxBuilding  float64 `json:"city_tax_building"`
	Total            float64 `json:"total"`
}

// DepreciationOptions - настройки амортизации
type DepreciationOptions struct {
	MinUsedLife   int     `json:"min_used_life"`
	ResidualValue float64 `json:"residual_value"`
	Years         int     `json:"years"`
}

// DepreciationInput - исходные данные для здания и оборудования
type DepreciationInput struct {
	BuildingCost           float64 `json:"building_cost"`
	BuildingStatutoryLife  int     `json:"building_statutory_life"`
	EquipmentCost          float64 `json:"equipment_cost"`
	EquipmentStatutoryLife int     `json:"equipment_statutory_life"`
	ElapsedYears           int     `json:"elapsed_years"`
}

// DepreciationComponent - амортизация одного компонента
type DepreciationComponent struct {
	Cost          float64   `json:"cost"`
	StatutoryLife int       `json:"statutory_life"`
	ElapsedYears  int       `json:"elapsed_years"`
	UsedLife      int       `json:"used_life"`
	Rate          float64   `json:"rate"`
	DecliningRate float64   `json:"declining_balance_rate,omitempty"`
	AnnualCharge  float64   `json:"annual_charge"`
	Schedule      []float64 `json:"schedule"`
	Total         float64   `json:"total"`
}

// DepreciationResult - амортизация здания и оборудования
type DepreciationResult struct {
	Building  DepreciationComponent `json:"building"`
	Equipment DepreciationComponent `json:"equipment"`
	Annual    []float64             `json:"annual"`
}

// Trend - ряд initial·(1+trend)^k
type Trend struct {
	Initial float64 `json:"initial"`
	Trend   float64 `json:"trend"`
}

// IncomeParams - параметры арендного дохода
type IncomeParams struct {
	MonthlyRent     float64   `json:"monthly_rent"`
	AnnualRent      float64   `json:"annual_rent"`
	Units           int       `json:"units"`
	Years           int       `json:"years"`
	RentChangeRates []float64 `json:"rent_change_rates,omitempty"`
	RentChange      *Trend    `json:"rent_change,omitempty"`
	VacancyRates    []float64 `json:"vacancy_rates,omitempty"`
	Vacancy         *Trend    `json:"vacancy,omitempty"`
}

// IncomeYear - доход за год
type IncomeYear struct {
	Year           int     `json:"year"`
	MonthlyRent    float64 `json:"monthly_rent"`
	RentChangeRate float64 `json:"rent_change_rate"`
	VacancyRate    float64 `json:"vacancy_rate"`
	AnnualGross    float64 `json:"annual_gross"`
	AnnualIncome   float64 `json:"annual_income"`
}

// ExpenseYear - операционные расходы за год
type ExpenseYear struct {
	Year             int     `json:"year"`
	ManagementFee    float64 `json:"management_fee"`
	Repairs          float64 `json:"repairs"`
	Insurance        float64 `json:"insurance"`
	Utilities        float64 `json:"utilities"`
	CapexLarge       float64 `json:"capex_large"`
	EquipmentRepairs float64 `json:"equipment_repairs"`
	Total            float64 `json:"total"`
}

// CashflowRecord - итоговая строка денежного потока за год
type CashflowRecord struct {
	Year               int     `json:"year"`
	Income             float64 `json:"income"`
	Expenses           float64 `json:"expenses"`
	Depreciation       float64 `json:"depreciation"`
	TaxTotal           float64 `json:"tax_total"`
	LoanPrincipal      float64 `json:"loan_principal"`
	LoanInterest       float64 `json:"loan_interest"`
	NetCashflow        float64 `json:"net_cashflow"`
	CumulativeCashflow float64 `json:"cumulative_cashflow"`
	TaxableIncome      float64 `json:"taxable_income"`
	LoanBalance        float64 `json:"loan_balance"`
	APR                float64 `json:"apr"`
}

// ExitEstimate - оценка результата при продаже в конце года
type ExitEstimate struct {
	Year           int     `json:"year"`
	SalePrice      float64 `json:"sale_price"`
	TaxOnSale      float64 `json:"tax_on_sale"`
	NetProfit      float64 `json:"net_profit"`
	ReturnOnEquity float64 `json:"return_on_equity"`
}

// GrowthMetrics представляет метрики доходности собственного капитала
type GrowthMetrics struct {
	ROIPercent              float64 `json:"roi_percent"`
	AnnualizedReturnPercent float64 `json:"annualized_return_percent"`
	CapitalGain             float64 `json:"capital_gain"`
	TotalInvested           float64 `json:"total_invested"`
	FinalValue              float64 `json:"final_value"`
	Years                   float64 `json:"years"`
}

// PlanSummary - итоги плана за весь горизонт
type PlanSummary struct {
	Years                   int           `json:"years"`
	PurchasePrice           float64       `json:"purchase_price"`
	InitialCapital          float64       `json:"initial_capital"`
	LoanPrincipal           float64       `json:"loan_principal"`
	TotalIncome             float64       `json:"total_income"`
	TotalExpenses           float64       `json:"total_expenses"`
	TotalTaxes              float64       `json:"total_taxes"`
	TotalInterest           float64       `json:"total_interest"`
	TotalDepreciation       float64       `json:"total_depreciation"`
	FinalCumulativeCashflow float64       `json:"final_cumulative_cashflow"`
	BestExitYear            int           `json:"best_exit_year"`
	BestExit                GrowthMetrics `json:"best_exit"`
}

// Plan - полный расчет объекта
type Plan struct {
	Summary      PlanSummary         `json:"summary"`
	Loan         *LoanSchedule       `json:"loan,omitempty"`
	Taxes        []TaxYearRecord     `json:"taxes"`
	Depreciation *DepreciationResult `json:"depreciation"`
	Income       []IncomeYear        `json:"income"`
	Expenses     []ExpenseYear       `json:"expenses"`
	Cashflow     []CashflowRecord    `json:"cashflow"`
	Exit         []ExitEstimate      `json:"exit"`
}
