package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cloud-ru/mcp-realty-go/internal/calculations"
	"github.com/cloud-ru/mcp-realty-go/internal/scenario"
)

func depreciationCmd() *cobra.Command {
	var (
		buildingCost  float64
		buildingLife  int
		equipmentCost float64
		equipmentLife int
		elapsed       int
		years         int
	)
	cmd := &cobra.Command{
		Use:   "depreciation",
		Short: "Print building and equipment depreciation",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]interface{}{
				"building_cost":            buildingCost,
				"building_statutory_life":  float64(buildingLife),
				"equipment_cost":           equipmentCost,
				"equipment_statutory_life": float64(equipmentLife),
				"elapsed_years":            float64(elapsed),
			}
			if years > 0 {
				params["years"] = float64(years)
			}
			out, err := callTool(cmd, "depreciation", params)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), out)
			}
			result := out.(*calculations.DepreciationResult)
			w := cmd.OutOrStdout()
			printComponent(w, "Building", result.Building)
			printComponent(w, "Equipment", result.Equipment)
			fmt.Fprintln(w)

			t := newTable(w, "Year", "Building", "Equipment", "Total")
			for i, total := range result.Annual {
				t.row(i+1, valueAt(result.Building.Schedule, i), valueAt(result.Equipment.Schedule, i), total)
			}
			return t.flush()
		},
	}
	cmd.Flags().Float64Var(&buildingCost, "building-cost", 0, "building cost, yen")
	cmd.Flags().IntVar(&buildingLife, "building-life", scenario.DefaultBuildingLife, "building statutory life, years")
	cmd.Flags().Float64Var(&equipmentCost, "equipment-cost", 0, "equipment cost, yen (0 splits building cost 85/15)")
	cmd.Flags().IntVar(&equipmentLife, "equipment-life", scenario.DefaultEquipmentLife, "equipment statutory life, years")
	cmd.Flags().IntVar(&elapsed, "elapsed", 0, "years since the asset was built")
	cmd.Flags().IntVar(&years, "years", 0, "horizon in years (default DEFAULT_HORIZON)")
	_ = cmd.MarkFlagRequired("building-cost")
	return cmd
}

func printComponent(w io.Writer, name string, c calculations.DepreciationComponent) {
	fmt.Fprintf(w, "%s: cost %s, statutory life %d, used life %d, rate %.3f, annual %s\n",
		name, yen(c.Cost), c.StatutoryLife, c.UsedLife, c.Rate, yen(c.AnnualCharge))
}

func valueAt(series []float64, i int) float64 {
	if i < 0 || i >= len(series) {
		return 0
	}
	return series[i]
}
