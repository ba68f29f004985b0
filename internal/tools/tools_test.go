package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/cloud-ru/mcp-realty-go/internal/calculations"
	"github.com/cloud-ru/mcp-realty-go/internal/config"
	"github.com/cloud-ru/mcp-realty-go/internal/ratetable"
	"github.com/cloud-ru/mcp-realty-go/internal/repository"
	"github.com/cloud-ru/mcp-realty-go/internal/service"
)

func testConfig() *config.Config {
	return &config.Config{
		MaxPrincipal:   1e11,
		MaxRate:        100,
		MaxYears:       50,
		MaxHorizon:     100,
		DefaultHorizon: 40,
		MinUsedLife:    2,
		ResidualValue:  1,
	}
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	cfg := testConfig()
	tables := ratetable.NewCache(time.Minute, t.TempDir())
	svc := service.NewPlanService(cfg, tables, repository.NewMemoryCache(time.Minute), repository.NewMemoryRunRepository())
	return NewRegistry(cfg, otel.Tracer("test"), tables, svc)
}

func TestRegistryTools(t *testing.T) {
	r := testRegistry(t)
	tools := r.Tools()
	if len(tools) != 8 {
		t.Fatalf("len(Tools) = %d, want 8", len(tools))
	}
	for i := 1; i < len(tools); i++ {
		if tools[i-1].Name >= tools[i].Name {
			t.Errorf("tools not sorted: %s before %s", tools[i-1].Name, tools[i].Name)
		}
	}
}

func TestUnknownTool(t *testing.T) {
	r := testRegistry(t)
	_, err := r.Call(context.Background(), "deposit_growth", nil)
	if !errors.Is(err, ErrUnknownTool) {
		t.Errorf("error = %v, want ErrUnknownTool", err)
	}
}

func TestToolErrors(t *testing.T) {
	r := testRegistry(t)

	tests := []struct {
		name       string
		tool       string
		params     map[string]interface{}
		wantClient bool
	}{
		{
			name:       "missing principal",
			tool:       "loan_schedule",
			params:     map[string]interface{}{"annual_rate": 1.5, "years": 35.0},
			wantClient: true,
		},
		{
			name:       "rate above limit",
			tool:       "loan_schedule",
			params:     map[string]interface{}{"principal": 1e7, "annual_rate": 150.0, "years": 35.0},
			wantClient: true,
		},
		{
			name:       "unknown method",
			tool:       "loan_schedule",
			params:     map[string]interface{}{"principal": 1e7, "annual_rate": 1.5, "years": 35.0, "method": "balloon"},
			wantClient: true,
		},
		{
			name:       "negative assessed value",
			tool:       "annual_taxes",
			params:     map[string]interface{}{"land_assessed_value": -1.0, "building_assessed_value": 1e7},
			wantClient: true,
		},
		{
			name:       "negative income series",
			tool:       "cashflow_aggregate",
			params:     map[string]interface{}{"income": []interface{}{100.0, -5.0}},
			wantClient: true,
		},
		{
			name:       "missing scenario",
			tool:       "real_estate_plan",
			params:     map[string]interface{}{},
			wantClient: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Call(context.Background(), tt.tool, tt.params)
			if err == nil {
				t.Fatal("expected error")
			}
			if IsClientError(err) != tt.wantClient {
				t.Errorf("IsClientError(%v) = %v, want %v", err, IsClientError(err), tt.wantClient)
			}
		})
	}
}

func TestLoanScheduleTool(t *testing.T) {
	r := testRegistry(t)
	out, err := r.Call(context.Background(), "loan_schedule", map[string]interface{}{
		"principal":       "1,200,000",
		"annual_rate":     0.0,
		"years":           1.0,
		"method":          "equal_principal",
		"include_monthly": false,
	})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	schedule := out.(*calculations.LoanSchedule)
	if schedule.Summary.TotalPaid != 1200000 {
		t.Errorf("TotalPaid = %v, want 1200000", schedule.Summary.TotalPaid)
	}
	if schedule.Monthly != nil {
		t.Error("monthly rows should be omitted")
	}
	if len(schedule.Annual) != 1 {
		t.Errorf("len(Annual) = %d, want 1", len(schedule.Annual))
	}
}

func TestCompareLoanMethodsTool(t *testing.T) {
	r := testRegistry(t)
	out, err := r.Call(context.Background(), "compare_loan_methods", map[string]interface{}{
		"principal":   30000000.0,
		"annual_rate": 2.0,
		"years":       30.0,
	})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	result := out.(*calculations.ComparisonResult)
	if result.Difference.Cheaper != "equal_principal" {
		t.Errorf("Cheaper = %q, want equal_principal", result.Difference.Cheaper)
	}
}

func TestAnnualTaxesTool(t *testing.T) {
	r := testRegistry(t)
	out, err := r.Call(context.Background(), "annual_taxes", map[string]interface{}{
		"land_assessed_value":     20000000.0,
		"building_assessed_value": 50000000.0,
		"land_area_m2":            150.0,
		"units":                   6.0,
		"years":                   5.0,
	})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	result := out.(map[string]interface{})
	if special, _ := result["residential_special"].(bool); !special {
		t.Error("expected residential special reduction to apply")
	}
	if records := result["years"].([]calculations.TaxYearRecord); len(records) != 5 {
		t.Errorf("len(years) = %d, want 5", len(records))
	}
}

func TestDepreciationTool(t *testing.T) {
	r := testRegistry(t)
	out, err := r.Call(context.Background(), "depreciation", map[string]interface{}{
		"building_cost":           100000000.0,
		"building_statutory_life": 47.0,
		"years":                   10.0,
	})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	result := out.(*calculations.DepreciationResult)
	if result.Building.Cost != 85000000 || result.Equipment.Cost != 15000000 {
		t.Errorf("split = %v/%v, want 85000000/15000000", result.Building.Cost, result.Equipment.Cost)
	}
	if result.Building.AnnualCharge != 1785000 {
		t.Errorf("building AnnualCharge = %v, want 1785000", result.Building.AnnualCharge)
	}
	if len(result.Annual) != 10 {
		t.Errorf("len(Annual) = %d, want 10", len(result.Annual))
	}
}

func TestIncomeProjectionTool(t *testing.T) {
	r := testRegistry(t)
	out, err := r.Call(context.Background(), "income_projection", map[string]interface{}{
		"monthly_rent":  100000.0,
		"units":         2.0,
		"years":         3.0,
		"vacancy_rates": []interface{}{0.1},
	})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	income := out.([]calculations.IncomeYear)
	if len(income) != 3 {
		t.Fatalf("len = %d, want 3", len(income))
	}
	if income[0].AnnualGross != 2400000 || income[0].AnnualIncome != 2160000 {
		t.Errorf("year 1 = %+v", income[0])
	}
}

func TestCashflowAggregateTool(t *testing.T) {
	r := testRegistry(t)
	out, err := r.Call(context.Background(), "cashflow_aggregate", map[string]interface{}{
		"income":   []interface{}{1000000.0, 1000000.0},
		"expenses": []interface{}{200000.0, 200000.0},
		"taxes":    []interface{}{100000.0},
	})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	records := out.([]calculations.CashflowRecord)
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].NetCashflow != 700000 || records[1].NetCashflow != 800000 {
		t.Errorf("net = %v, %v", records[0].NetCashflow, records[1].NetCashflow)
	}
	if records[1].CumulativeCashflow != 1500000 {
		t.Errorf("cumulative = %v, want 1500000", records[1].CumulativeCashflow)
	}
}

func TestRealEstatePlanAndHistory(t *testing.T) {
	r := testRegistry(t)
	ctx := context.Background()
	params := map[string]interface{}{
		"scenario": map[string]interface{}{
			"name":           "tool",
			"purchase_price": "60,000,000",
			"loan":           map[string]interface{}{"annual_rate": 1.8, "years": 30.0},
			"building":       map[string]interface{}{"cost": 40000000.0, "statutory_life": 47.0},
			"income":         map[string]interface{}{"monthly_rent": 70000.0, "units": 4.0},
		},
		"years": 12.0,
	}

	out, err := r.Call(ctx, "real_estate_plan", params)
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	result := out.(*service.PlanResult)
	if len(result.Plan.Cashflow) != 12 {
		t.Errorf("len(Cashflow) = %d, want 12", len(result.Plan.Cashflow))
	}

	out, err = r.Call(ctx, "plan_history", map[string]interface{}{"limit": 5.0})
	if err != nil {
		t.Fatalf("plan_history error = %v", err)
	}
	runs := out.([]repository.PlanRun)
	if len(runs) != 1 || runs[0].ScenarioName != "tool" {
		t.Errorf("history = %+v", runs)
	}
}
