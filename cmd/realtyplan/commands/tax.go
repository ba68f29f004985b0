package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloud-ru/mcp-realty-go/internal/calculations"
)

func taxCmd() *cobra.Command {
	var (
		landValue     float64
		buildingValue float64
		landArea      float64
		units         int
		years         int
		correctionCSV string
	)
	cmd := &cobra.Command{
		Use:   "tax",
		Short: "Print annual fixed-asset and city-planning taxes",
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]interface{}{
				"land_assessed_value":     landValue,
				"building_assessed_value": buildingValue,
				"land_area_m2":            landArea,
				"units":                   float64(units),
				"years":                   float64(years),
			}
			if correctionCSV != "" {
				params["correction_rates_csv"] = correctionCSV
			}
			out, err := callTool(cmd, "annual_taxes", params)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), out)
			}
			result := out.(map[string]interface{})
			records := result["years"].([]calculations.TaxYearRecord)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Residential land reduction: %v\n\n", result["residential_special"])

			t := newTable(w, "Year", "Land fixed", "Land city", "Building fixed", "Building city", "Total")
			for _, r := range records {
				t.row(r.Year, r.FixedTaxLand, r.CityTaxLand, r.FixedTaxBuilding, r.CityTaxBuilding, r.Total)
			}
			return t.flush()
		},
	}
	cmd.Flags().Float64Var(&landValue, "land-value", 0, "land assessed value, yen")
	cmd.Flags().Float64Var(&buildingValue, "building-value", 0, "building assessed value, yen")
	cmd.Flags().Float64Var(&landArea, "land-area", 0, "land area, m²")
	cmd.Flags().IntVar(&units, "units", 0, "number of residential units")
	cmd.Flags().IntVar(&years, "years", calculations.DefaultTaxYears, "number of years")
	cmd.Flags().StringVar(&correctionCSV, "corrections", "", "building correction rates CSV (default CORRECTION_RATES_CSV)")
	return cmd
}
