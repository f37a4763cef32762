package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Troublor/erebus-sandwich/analysis/dependency"
	"github.com/Troublor/erebus-sandwich/analysis/sandwich"
	"github.com/Troublor/erebus-sandwich/config"
	"github.com/Troublor/erebus-sandwich/dataset"
	"github.com/Troublor/erebus-sandwich/global"
	"github.com/Troublor/erebus-sandwich/ir"
)

// flags.
var (
	cDetectSave = config.Def{
		Type:     config.Bool,
		Key:      "save",
		KeyShort: "s",
		Default:  false,
		Desc:     "save findings to MongoDB",
	}
	cDetectFormat = config.Def{
		Key:      "format",
		KeyShort: "f",
		Default:  "text",
		Desc:     "output format, text or json",
	}
	cDetectInflight = config.Def{
		Type:    config.Int64,
		Key:     "inflight",
		Default: int64(8),
		Desc:    "maximum concurrent writes to MongoDB",
	}
)

var cDetectGroup = config.NewDefGroup("detect",
	cDetectSave,
	cDetectFormat,
	cDetectInflight,
)

var detectCmd = &cobra.Command{
	Use:   "detect <ir-file>...",
	Short: "Detect sandwich opportunities in IR exports",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := viper.GetString(cDetectGroup.KeyOf(cDetectFormat))
		if format != "text" && format != "json" {
			return fmt.Errorf("unknown output format %q", format)
		}
		return detect(cmd.OutOrStdout(), args, format, viper.GetBool(cDetectGroup.KeyOf(cDetectSave)))
	},
}

func init() {
	detectCmd.Flags().AddFlagSet(cDetectGroup.FlagSet())
	cDetectGroup.BindToViper()
}

var errSomeFilesFailed = errors.New("some IR exports could not be analyzed")

// fileResult is the outcome of analyzing one IR export.
type fileResult struct {
	path     string
	findings []*sandwich.Finding
	err      error
}

func detect(out io.Writer, paths []string, format string, save bool) error {
	startTime := time.Now()
	results := make([]*fileResult, len(paths))

	pool := global.GoroutinePool()
	var wg sync.WaitGroup
	for i, path := range paths {
		i, path := i, path
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			results[i] = detectFile(path)
		})
		if err != nil {
			wg.Done()
			results[i] = &fileResult{path: path, err: err}
		}
	}
	wg.Wait()

	failed := lo.Filter(results, func(r *fileResult, _ int) bool { return r.err != nil })
	for _, r := range failed {
		log.Error().Err(r.err).Str("file", r.path).Msg("Failed to analyze IR export")
	}

	var err error
	switch format {
	case "json":
		err = printJSON(out, results)
	default:
		err = printText(out, results)
	}
	if err != nil {
		return err
	}

	if save {
		if err = saveFindings(results); err != nil {
			return err
		}
	}

	log.Info().
		Int("files", len(paths)).
		Int("failed", len(failed)).
		Int("findings", countFindings(results)).
		Dur("elapsed", time.Since(startTime)).
		Msg("Detection finished")
	if len(failed) > 0 {
		return errSomeFilesFailed
	}
	return nil
}

func countFindings(results []*fileResult) int {
	n := 0
	for _, r := range results {
		n += len(r.findings)
	}
	return n
}

func detectFile(path string) *fileResult {
	result := &fileResult{path: path}
	contracts, err := ir.LoadFile(path)
	if err != nil {
		result.err = err
		return result
	}

	var oracle dependency.Oracle = dependency.NewGraphOracle(contracts...)
	if viper.GetBool(config.COracleCache.Key) {
		cached, err := dependency.NewCachedOracle(oracle, viper.GetDuration(config.COracleCacheTTL.Key))
		if err != nil {
			result.err = err
			return result
		}
		defer func() {
			log.Debug().Str("file", path).Uint64("hits", cached.Hits()).Msg("Dependency oracle cache released")
			_ = cached.Close()
		}()
		oracle = cached
	}

	result.findings, result.err = sandwich.NewDetector(oracle).Detect(contracts)
	if result.err == nil {
		log.Info().
			Str("file", path).
			Int("contracts", len(contracts)).
			Int("findings", len(result.findings)).
			Msg("IR export analyzed")
	}
	return result
}

func printText(out io.Writer, results []*fileResult) error {
	for _, r := range results {
		for _, f := range r.findings {
			if _, err := fmt.Fprintf(out, "%s: %s\n%s\n\n", r.path, f, f.Description()); err != nil {
				return err
			}
		}
	}
	return nil
}

type jsonFinding struct {
	Check       string   `json:"check"`
	Impact      string   `json:"impact"`
	Confidence  string   `json:"confidence"`
	File        string   `json:"file"`
	Contract    string   `json:"contract"`
	Function    string   `json:"function"`
	Filename    string   `json:"filename"`
	Lines       []int    `json:"lines"`
	Parameters  []string `json:"parameters"`
	Sources     []string `json:"sources"`
	Description string   `json:"description"`
}

func printJSON(out io.Writer, results []*fileResult) error {
	report := make([]jsonFinding, 0)
	for _, r := range results {
		for _, f := range r.findings {
			report = append(report, jsonFinding{
				Check:       sandwich.Argument,
				Impact:      sandwich.Impact.String(),
				Confidence:  sandwich.Confidence.String(),
				File:        r.path,
				Contract:    f.Contract.Name,
				Function:    f.Function.Name,
				Filename:    f.Node.Source.Filename,
				Lines:       f.Node.Source.Lines,
				Parameters:  f.Parameters,
				Sources:     f.SourceNames(),
				Description: f.Description(),
			})
		}
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func saveFindings(results []*fileResult) error {
	store := dataset.NewStore(global.FindingCollection(), viper.GetInt64(cDetectGroup.KeyOf(cDetectInflight)))
	if err := store.EnsureIndexes(global.Ctx()); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	var records []*dataset.FindingBSON
	for _, r := range results {
		records = append(records, lo.Map(r.findings, func(f *sandwich.Finding, _ int) *dataset.FindingBSON {
			return dataset.NewFindingBSON(f, r.path)
		})...)
	}
	inserted, err := store.Save(global.Ctx(), records)
	if err != nil {
		return fmt.Errorf("failed to save findings: %w", err)
	}
	log.Info().Int("findings", len(records)).Int("inserted", inserted).Msg("Findings saved")
	return nil
}
