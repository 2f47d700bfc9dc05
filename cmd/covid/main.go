package main

import (
	"os"

	"github.com/wonny/covidtrend/cmd/covid/commands"
)

// main is the entry point for the covidtrend CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/covid [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
