package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Troublor/erebus-sandwich/analysis/dependency"
	"github.com/Troublor/erebus-sandwich/analysis/sandwich"
	"github.com/Troublor/erebus-sandwich/config"
	"github.com/Troublor/erebus-sandwich/helpers"
	"github.com/Troublor/erebus-sandwich/ir"
)

// flags.
var (
	cGraphContract = config.Def{
		Key:      "contract",
		KeyShort: "c",
		Default:  "",
		Desc:     "contract to render, may be omitted if the export holds a single contract",
	}
	cGraphOut = config.Def{
		Key:      "out",
		KeyShort: "o",
		Default:  "",
		Desc:     "output dot file, stdout if empty",
	}
)

var cGraphGroup = config.NewDefGroup("graph",
	cGraphContract,
	cGraphOut,
)

var graphCmd = &cobra.Command{
	Use:   "graph <ir-file>",
	Short: "Render the dependency graph of a contract in dot format",
	Long: "Render the dependency graph of a contract in dot format.\n" +
		"Active sources and function parameters are filled.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dot, err := renderGraph(args[0], viper.GetString(cGraphGroup.KeyOf(cGraphContract)))
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), viper.GetString(cGraphGroup.KeyOf(cGraphOut)), dot)
	},
}

func init() {
	graphCmd.Flags().AddFlagSet(cGraphGroup.FlagSet())
	cGraphGroup.BindToViper()
}

func renderGraph(path, name string) ([]byte, error) {
	contracts, err := ir.LoadFile(path)
	if err != nil {
		return nil, err
	}
	contract, err := selectContract(contracts, name)
	if err != nil {
		return nil, err
	}

	oracle := dependency.NewGraphOracle(contract)
	g, err := oracle.Graph(contract)
	if err != nil {
		return nil, err
	}
	var marked []*ir.Variable
	for _, fn := range contract.Functions {
		marked = append(marked, fn.Parameters...)
		marked = append(marked, sandwich.CollectActiveSources(fn).Variables()...)
	}
	highlight, err := oracle.NodesOf(contract, marked...)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("contract", contract.Name).
		Int("nodes", g.Nodes().Len()).
		Int("highlighted", len(highlight)).
		Msg("Rendering dependency graph")
	return helpers.ToGraphvizDot(g, highlight...)
}

func selectContract(contracts []*ir.Contract, name string) (*ir.Contract, error) {
	if name == "" {
		if len(contracts) != 1 {
			return nil, fmt.Errorf("export holds %d contracts, select one with --%s", len(contracts), cGraphContract.Key)
		}
		return contracts[0], nil
	}
	for _, c := range contracts {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("contract %s not found", name)
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}
