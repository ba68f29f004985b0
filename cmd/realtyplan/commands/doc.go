// Package commands defines the realtyplan CLI.
//
// Commands
//
//   - serve         Run the HTTP tool server (/tools, /metrics, /healthz)
//   - plan          Build a full plan from a scenario JSON file
//   - loan          Print a loan repayment schedule
//   - compare       Compare equal-total and equal-principal repayment
//   - tax           Print annual property and city-planning taxes
//   - depreciation  Print building and equipment depreciation
//
// Calculation commands call the same tool registry as the server.
package commands
