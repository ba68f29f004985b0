package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloud-ru/mcp-realty-go/internal/scenario"
	"github.com/cloud-ru/mcp-realty-go/internal/service"
)

func planCmd() *cobra.Command {
	var (
		scenarioPath string
		years        int
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build a full plan from a scenario JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := scenario.Load(scenarioPath)
			if err != nil {
				return err
			}
			params, err := scenarioParams(sc, years)
			if err != nil {
				return err
			}
			out, err := callTool(cmd, "real_estate_plan", params)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), out)
			}

			result := out.(*service.PlanResult)
			plan := result.Plan
			s := plan.Summary
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Scenario: %s  Years: %d  Purchase: %s  Initial capital: %s  Loan: %s\n",
				sc.Name, s.Years, yen(s.PurchasePrice), yen(s.InitialCapital), yen(s.LoanPrincipal))
			fmt.Fprintf(w, "Income: %s  Expenses: %s  Taxes: %s  Interest: %s  Depreciation: %s\n",
				yen(s.TotalIncome), yen(s.TotalExpenses), yen(s.TotalTaxes), yen(s.TotalInterest), yen(s.TotalDepreciation))
			fmt.Fprintf(w, "Final cumulative cash flow: %s\n", yen(s.FinalCumulativeCashflow))
			if s.BestExitYear > 0 {
				fmt.Fprintf(w, "Best exit: year %d, ROI %.2f%%, annualized %.2f%%\n",
					s.BestExitYear, s.BestExit.ROIPercent, s.BestExit.AnnualizedReturnPercent)
			}
			fmt.Fprintln(w)

			t := newTable(w, "Year", "Income", "Expenses", "Tax", "Principal", "Interest", "Net", "Cumulative", "APR", "Exit ROE")
			for i, cf := range plan.Cashflow {
				roe := ""
				if i < len(plan.Exit) {
					roe = percent(plan.Exit[i].ReturnOnEquity)
				}
				t.row(cf.Year, cf.Income, cf.Expenses, cf.TaxTotal, cf.LoanPrincipal, cf.LoanInterest,
					cf.NetCashflow, cf.CumulativeCashflow, percent(cf.APR), roe)
			}
			return t.flush()
		},
	}
	cmd.Flags().StringVar(&scenarioPath, "scenario", "", "scenario JSON file")
	cmd.Flags().IntVar(&years, "years", 0, "override the scenario horizon")
	_ = cmd.MarkFlagRequired("scenario")
	return cmd
}

// scenarioParams передает сценарий инструменту в виде JSON-объекта
func scenarioParams(sc *scenario.Scenario, years int) (map[string]interface{}, error) {
	data, err := json.Marshal(sc)
	if err != nil {
		return nil, err
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	params := map[string]interface{}{"scenario": raw}
	if years > 0 {
		params["years"] = float64(years)
	}
	return params, nil
}

