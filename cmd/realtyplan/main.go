package main

import (
	"os"

	"github.com/cloud-ru/mcp-realty-go/cmd/realtyplan/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
