package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloud-ru/mcp-realty-go/internal/calculations"
)

type loanFlags struct {
	principal  float64
	rate       float64
	years      int
	startMonth int
	method     string
	groupBy    string
}

func (f *loanFlags) register(cmd *cobra.Command, withMethod bool) {
	cmd.Flags().Float64Var(&f.principal, "principal", 0, "loan principal, yen")
	cmd.Flags().Float64Var(&f.rate, "rate", 0, "annual rate (1.5 = 1.5%, 0.015 = 1.5%)")
	cmd.Flags().IntVar(&f.years, "years", 35, "loan term in years")
	cmd.Flags().IntVar(&f.startMonth, "start-month", 1, "calendar month of the first payment")
	cmd.Flags().StringVar(&f.groupBy, "group-by", string(calculations.GroupAnniversary), "annual grouping: anniversary or calendar")
	if withMethod {
		cmd.Flags().StringVar(&f.method, "method", string(calculations.MethodEqualTotal), "equal_total or equal_principal")
	}
	_ = cmd.MarkFlagRequired("principal")
}

func (f *loanFlags) params() map[string]interface{} {
	params := map[string]interface{}{
		"principal":   f.principal,
		"annual_rate": f.rate,
		"years":       float64(f.years),
		"start_month": float64(f.startMonth),
		"group_by":    f.groupBy,
	}
	if f.method != "" {
		params["method"] = f.method
	}
	return params
}

func loanCmd() *cobra.Command {
	var flags loanFlags
	var monthly bool
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Print a loan repayment schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := flags.params()
			params["include_monthly"] = monthly
			out, err := callTool(cmd, "loan_schedule", params)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), out)
			}
			schedule := out.(*calculations.LoanSchedule)
			s := schedule.Summary
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Principal: %s  Rate: %.3f%%  Months: %d  Method: %s\n",
				yen(s.Principal), s.AnnualRatePercent, s.Months, schedule.Terms.Method)
			fmt.Fprintf(w, "First payment: %s  Last payment: %s\n", yen(s.FirstMonthPayment), yen(s.LastMonthPayment))
			fmt.Fprintf(w, "Total paid: %s  Interest: %s  Effective rate: %.4f%%\n\n",
				yen(s.TotalPaid), yen(s.TotalInterest), s.EffectiveAnnualRatePercent)

			t := newTable(w, "Year", "Months", "Principal", "Interest", "Total", "Balance")
			for _, a := range schedule.Annual {
				t.row(a.YearIndex, a.Months, a.PrincipalPaid, a.InterestPaid, a.TotalPaid, a.BalanceEnd)
			}
			if err := t.flush(); err != nil {
				return err
			}
			if monthly {
				fmt.Fprintln(w)
				t = newTable(w, "Month", "Payment", "Principal", "Interest", "Balance")
				for _, m := range schedule.Monthly {
					t.row(m.Month, m.Payment, m.Principal, m.Interest, m.Balance)
				}
				return t.flush()
			}
			return nil
		},
	}
	flags.register(cmd, true)
	cmd.Flags().BoolVar(&monthly, "monthly", false, "print monthly rows")
	return cmd
}

func compareCmd() *cobra.Command {
	var flags loanFlags
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare equal-total and equal-principal repayment",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := callTool(cmd, "compare_loan_methods", flags.params())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), out)
			}
			result := out.(*calculations.ComparisonResult)
			w := cmd.OutOrStdout()
			t := newTable(w, "Method", "First payment", "Last payment", "Total paid", "Interest")
			t.row(string(calculations.MethodEqualTotal), result.EqualTotal.FirstMonthPayment, result.EqualTotal.LastMonthPayment,
				result.EqualTotal.TotalPaid, result.EqualTotal.TotalInterest)
			t.row(string(calculations.MethodEqualPrincipal), result.EqualPrincipal.FirstMonthPayment, result.EqualPrincipal.LastMonthPayment,
				result.EqualPrincipal.TotalPaid, result.EqualPrincipal.TotalInterest)
			if err := t.flush(); err != nil {
				return err
			}
			fmt.Fprintf(w, "\nCheaper: %s (savings %s)\n%s\n",
				result.Difference.Cheaper, yen(result.Difference.Savings), result.Recommendation)
			return nil
		},
	}
	flags.register(cmd, false)
	return cmd
}
