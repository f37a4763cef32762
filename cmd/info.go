package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Troublor/erebus-sandwich/analysis/sandwich"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe the detector",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printInfo(cmd.OutOrStdout())
	},
}

func printInfo(out io.Writer) error {
	_, err := fmt.Fprintf(out,
		"%s\n\nCheck:      %s\nHelp:       %s\nImpact:     %s\nConfidence: %s\nWiki:       %s\n\n%s\n\n%s\n\n%s\n",
		sandwich.WikiTitle,
		sandwich.Argument,
		sandwich.Help,
		sandwich.Impact,
		sandwich.Confidence,
		sandwich.Wiki,
		sandwich.WikiDescription,
		sandwich.WikiExploitScenario,
		sandwich.WikiRecommendation,
	)
	return err
}
