// Package scenario описывает входной сценарий объекта недвижимости (JSON)
// и переводит его в параметры расчета.
package scenario

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/cloud-ru/mcp-realty-go/internal/calculations"
	"github.com/cloud-ru/mcp-realty-go/internal/config"
	"github.com/cloud-ru/mcp-realty-go/internal/validators"
	"github.com/cloud-ru/mcp-realty-go/pkg/utils"
)

const (
	// DefaultBuildingLife - нормативный срок здания (ж/б жилое здание, 47 лет), если не задан
	DefaultBuildingLife = 47
	// DefaultEquipmentLife - нормативный срок инженерного оборудования, если не задан
	DefaultEquipmentLife = 15
)

// Scenario - неизменяемое описание объекта
type Scenario struct {
	Name                string       `json:"name"`
	Years               int          `json:"years"`
	ElapsedYears        int          `json:"elapsed_years"`
	PurchasePrice       utils.Amount `json:"purchase_price"`
	InitialCapitalRatio float64      `json:"initial_capital_ratio"`
	GrossYield          float64      `json:"gross_yield"`

	Loan      *Loan    `json:"loan,omitempty"`
	Building  Asset    `json:"building"`
	Equipment Asset    `json:"equipment"`
	Tax       Tax      `json:"tax"`
	Income    Income   `json:"income"`
	Expenses  Expenses `json:"expenses"`
}

// Loan - условия кредита
type Loan struct {
	Principal    utils.Amount              `json:"principal"`
	AnnualRate   float64                   `json:"annual_rate"`
	Years        int                       `json:"years"`
	StartMonth   int                       `json:"start_month"`
	Method       string                    `json:"method"`
	GroupBy      string                    `json:"group_by"`
	RateSchedule []calculations.RatePeriod `json:"rate_schedule,omitempty"`
}

// Asset - стоимость и нормативный срок компонента
type Asset struct {
	Cost          utils.Amount `json:"cost"`
	StatutoryLife int          `json:"statutory_life"`
}

// Tax - параметры налога на имущество
type Tax struct {
	LandAssessedValue      utils.Amount `json:"land_assessed_value"`
	BuildingAssessedValue  utils.Amount `json:"building_assessed_value"`
	LandAreaM2             float64      `json:"land_area_m2"`
	Units                  int          `json:"units"`
	FixedAssetRate         float64      `json:"fixed_asset_rate"`
	CityPlanRate           float64      `json:"city_plan_rate"`
	LandResidentialSpecial *bool        `json:"land_residential_special,omitempty"`
	CorrectionRatesCSV     string       `json:"correction_rates_csv"`
}

// Income - параметры арендного дохода
type Income struct {
	MonthlyRent     utils.Amount        `json:"monthly_rent"`
	AnnualRent      utils.Amount        `json:"annual_rent"`
	Units           int                 `json:"units"`
	RentChangeRates []float64           `json:"rent_change_rates,omitempty"`
	RentChange      *calculations.Trend `json:"rent_change,omitempty"`
	VacancyRates    []float64           `json:"vacancy_rates,omitempty"`
	Vacancy         *calculations.Trend `json:"vacancy,omitempty"`
}

// Expenses - операционные расходы
type Expenses struct {
	ManagementFee       utils.Amount `json:"management_fee"`
	ManagementFeeRate   float64      `json:"management_fee_rate"`
	Repairs             utils.Amount `json:"repairs"`
	Insurance           utils.Amount `json:"insurance"`
	Utilities           utils.Amount `json:"utilities"`
	CapexLargeCSV       string       `json:"capex_large_csv"`
	EquipmentRepairsCSV string       `json:"equipment_repairs_csv"`
	RepairsPlanCSV      string       `json:"repairs_plan_csv"`
}

// Parse читает сценарий из JSON
func Parse(r io.Reader) (*Scenario, error) {
	var s Scenario
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("разбор сценария: %w", err)
	}
	return &s, nil
}

// Load читает сценарий из файла
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("открытие сценария: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// WithDefaults возвращает копию сценария с заполненными значениями по умолчанию
func (s Scenario) WithDefaults(cfg *config.Config) Scenario {
	s.Years = cfg.Horizon(s.Years)
	if s.Building.StatutoryLife == 0 {
		s.Building.StatutoryLife = DefaultBuildingLife
	}
	if s.Equipment.StatutoryLife == 0 {
		s.Equipment.StatutoryLife = DefaultEquipmentLife
	}
	if s.Income.Units == 0 {
		s.Income.Units = 1
	}
	if s.Tax.CorrectionRatesCSV == "" {
		s.Tax.CorrectionRatesCSV = cfg.CorrectionRatesCSV
	}
	if s.Loan != nil {
		loan := *s.Loan
		if loan.StartMonth == 0 {
			loan.StartMonth = 1
		}
		s.Loan = &loan
	}
	return s
}

// Validate проверяет сценарий против лимитов конфигурации
func (s Scenario) Validate(cfg *config.Config) error {
	checks := []error{
		validators.CheckHorizon(cfg, s.Years),
		validators.CheckElapsedYears(s.ElapsedYears),
		validators.CheckAmount(cfg, "purchase_price", s.PurchasePrice.Float64()),
		validators.ValidatePositiveNumber("initial_capital_ratio", s.InitialCapitalRatio, 0, 1),
		validators.ValidatePositiveNumber("gross_yield", s.GrossYield, 0, 1),
		validators.CheckAmount(cfg, "building.cost", s.Building.Cost.Float64()),
		validators.CheckAmount(cfg, "equipment.cost", s.Equipment.Cost.Float64()),
		validators.CheckLife("building.statutory_life", s.Building.StatutoryLife),
		validators.CheckLife("equipment.statutory_life", s.Equipment.StatutoryLife),
		validators.CheckAmount(cfg, "tax.land_assessed_value", s.Tax.LandAssessedValue.Float64()),
		validators.CheckAmount(cfg, "tax.building_assessed_value", s.Tax.BuildingAssessedValue.Float64()),
		validators.CheckUnits(s.Tax.Units),
		validators.CheckUnits(s.Income.Units),
		validators.CheckAmount(cfg, "income.monthly_rent", s.Income.MonthlyRent.Float64()),
		validators.CheckAmount(cfg, "expenses.management_fee", s.Expenses.ManagementFee.Float64()),
		validators.CheckAmount(cfg, "expenses.repairs", s.Expenses.Repairs.Float64()),
		validators.CheckAmount(cfg, "expenses.insurance", s.Expenses.Insurance.Float64()),
		validators.CheckAmount(cfg, "expenses.utilities", s.Expenses.Utilities.Float64()),
	}
	if s.Loan != nil && s.Loan.Years > 0 {
		checks = append(checks,
			validators.CheckLoanYears(cfg, s.Loan.Years),
			validators.CheckStartMonth(s.Loan.StartMonth),
			validators.CheckRate(cfg, "loan.annual_rate", s.Loan.AnnualRate),
			validators.CheckAmount(cfg, "loan.principal", s.Loan.Principal.Float64()),
		)
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

// Tables - таблицы, на которые ссылается сценарий
type Tables struct {
	CorrectionRatesCSV  string
	CapexLargeCSV       string
	EquipmentRepairsCSV string
	RepairsPlanCSV      string
}

// Tables возвращает пути к таблицам сценария
func (s Scenario) Tables() Tables {
	return Tables{
		CorrectionRatesCSV:  s.Tax.CorrectionRatesCSV,
		CapexLargeCSV:       s.Expenses.CapexLargeCSV,
		EquipmentRepairsCSV: s.Expenses.EquipmentRepairsCSV,
		RepairsPlanCSV:      s.Expenses.RepairsPlanCSV,
	}
}

// PlanInput переводит сценарий в параметры расчета. Таблицы в результате не заполняются.
func (s Scenario) PlanInput() calculations.PlanInput {
	in := calculations.PlanInput{
		Years:               s.Years,
		PurchasePrice:       s.PurchasePrice.Float64(),
		InitialCapitalRatio: s.InitialCapitalRatio,
		GrossYield:          s.GrossYield,
		Tax: calculations.TaxParams{
			LandAssessedValue:      s.Tax.LandAssessedValue.Float64(),
			BuildingAssessedValue:  s.Tax.BuildingAssessedValue.Float64(),
			LandAreaM2:             s.Tax.LandAreaM2,
			Units:                  s.Tax.Units,
			FixedAssetRate:         s.Tax.FixedAssetRate,
			CityPlanRate:           s.Tax.CityPlanRate,
			LandResidentialSpecial: s.Tax.LandResidentialSpecial,
		},
		Depreciation: calculations.DepreciationInput{
			BuildingCost:           s.Building.Cost.Float64(),
			BuildingStatutoryLife:  s.Building.StatutoryLife,
			EquipmentCost:          s.Equipment.Cost.Float64(),
			EquipmentStatutoryLife: s.Equipment.StatutoryLife,
			ElapsedYears:           s.ElapsedYears,
		},
		Income: calculations.IncomeParams{
			MonthlyRent:     s.Income.MonthlyRent.Float64(),
			AnnualRent:      s.Income.AnnualRent.Float64(),
			Units:           s.Income.Units,
			RentChangeRates: s.Income.RentChangeRates,
			RentChange:      s.Income.RentChange,
			VacancyRates:    s.Income.VacancyRates,
			Vacancy:         s.Income.Vacancy,
		},
		Expenses: calculations.ExpenseParams{
			ManagementFee:     s.Expenses.ManagementFee.Float64(),
			ManagementFeeRate: s.Expenses.ManagementFeeRate,
			Repairs:           s.Expenses.Repairs.Float64(),
			Insurance:         s.Expenses.Insurance.Float64(),
			Utilities:         s.Expenses.Utilities.Float64(),
		},
	}
	if s.Loan != nil {
		in.Loan = &calculations.LoanTerms{
			Principal:    s.Loan.Principal.Float64(),
			AnnualRate:   s.Loan.AnnualRate,
			Years:        s.Loan.Years,
			StartMonth:   s.Loan.StartMonth,
			Method:       calculations.Method(s.Loan.Method),
			GroupBy:      calculations.GroupBy(s.Loan.GroupBy),
			RateSchedule: s.Loan.RateSchedule,
		}
	}
	return in
}
