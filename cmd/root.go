package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Troublor/erebus-sandwich/config"
	"github.com/Troublor/erebus-sandwich/global"
)

var (
	rootCmd = &cobra.Command{
		Use:           "sandwich",
		Short:         "Static detector of sandwich-prone slippage checks in smart contracts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute executes the root command.
func Execute() error {
	defer global.Cleanup()
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().AddFlagSet(config.GlobalFlagSet)
	err := viper.BindPFlags(config.GlobalFlagSet)
	if err != nil {
		panic(fmt.Errorf("failed to bind global flags: %w", err))
	}

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(infoCmd)
}
