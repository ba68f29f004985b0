package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cloud-ru/mcp-realty-go/internal/app"
	"github.com/cloud-ru/mcp-realty-go/internal/config"
	"github.com/cloud-ru/mcp-realty-go/internal/logger"
)

var (
	cfg        *config.Config
	jsonOutput bool
)

// Execute запускает CLI
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:           "realtyplan",
		Short:         "Real-estate investment calculator: loans, taxes, depreciation, cash flow",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if logLevel != "" {
				loaded.LogLevel = logLevel
			}
			cfg = loaded
			logger.InitLoggerTo(os.Stderr, cfg.LogLevel)
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	root.AddCommand(serveCmd(), planCmd(), loanCmd(), compareCmd(), taxCmd(), depreciationCmd())
	return root
}

// callTool строит зависимости и вызывает инструмент реестра
func callTool(cmd *cobra.Command, name string, params map[string]interface{}) (interface{}, error) {
	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.Registry.Call(cmd.Context(), name, params)
}
