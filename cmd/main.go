package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "portfolio-analytics",
	Short: "A CLI for managing the portfolio risk analytics services",
	Long:  `Portfolio Risk Analytics turns raw position data into quantitative metrics, risk scores and actionable alerts.`,
}

func main() {

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
