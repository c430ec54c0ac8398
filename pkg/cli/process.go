package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mchmarny/kinfeat/pkg/config"
	"github.com/mchmarny/kinfeat/pkg/data"
	"github.com/mchmarny/kinfeat/pkg/passenger"
	"github.com/mchmarny/kinfeat/pkg/pipeline"
	"github.com/urfave/cli/v3"
)

const (
	featureFileSuffix = ".features.csv"
)

var (
	inputFlag = &cli.StringSliceFlag{
		Name:     "input",
		Aliases:  []string{"i"},
		Usage:    "Passenger CSV file, repeat for several files",
		Required: true,
	}

	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output CSV file, or directory when several inputs are given",
	}

	storeFlag = &cli.BoolFlag{
		Name:  "store",
		Usage: "Persist the run in the database",
	}

	simplifiedFlag = &cli.BoolFlag{
		Name:  "simplified",
		Usage: "Use thresholded rates (0, 0.5, 1) instead of the continuous mean",
	}

	fillIfNotAnySurvivedFlag = &cli.BoolFlag{
		Name:  "fill-if-not-any-survived",
		Usage: "With --simplified, rate 1 when any other group member survived",
	}

	useFareFlag = &cli.BoolFlag{
		Name:  "use-fare",
		Usage: "Group families by identical fare and lastname",
	}

	familyFillerFlag = &cli.StringFlag{
		Name:  "family-filler",
		Usage: fmt.Sprintf("Family rate fallback [%s]", strings.Join(pipeline.FamilyFillers, ", ")),
	}

	titleFlag = &cli.StringSliceFlag{
		Name:  "title",
		Usage: "Title label list in index order, repeat for each label (default: Mr, Mrs, Miss, Master, Rare)",
	}

	imputeEmbarkedFlag = &cli.StringFlag{
		Name:  "impute-embarked",
		Usage: "Port used for rows without Embarked [C, Q, S], empty to reject them",
	}

	processCmd = &cli.Command{
		Name:    "process",
		Aliases: []string{"p"},
		Usage:   "Compute family, ticket and cabin features for passenger files",
		UsageText: `kinfeat process --input train.csv --output train.features.csv
   kinfeat process -i train.csv -i test.csv -o out/ --simplified --store`,
		HideHelpCommand: true,
		Action:          cmdProcess,
		Flags: []cli.Flag{
			inputFlag,
			outputFlag,
			storeFlag,
			simplifiedFlag,
			fillIfNotAnySurvivedFlag,
			useFareFlag,
			familyFillerFlag,
			titleFlag,
			imputeEmbarkedFlag,
		},
	}
)

type processReport struct {
	Input   string            `json:"input" yaml:"input"`
	Output  string            `json:"output,omitempty" yaml:"output,omitempty"`
	RunID   string            `json:"run_id,omitempty" yaml:"runId,omitempty"`
	Summary *pipeline.Summary `json:"summary" yaml:"summary"`
}

// engineOptions merges the config file with the flags set on cmd.
func engineOptions(cmd *cli.Command, cfg *config.Config) (pipeline.Options, passenger.ReadOptions) {
	o := cfg.Options()
	impute := cfg.ImputeEmbarked

	if cmd.IsSet(simplifiedFlag.Name) {
		o.Simplified = cmd.Bool(simplifiedFlag.Name)
	}
	if cmd.IsSet(fillIfNotAnySurvivedFlag.Name) {
		o.FillIfNotAnySurvived = cmd.Bool(fillIfNotAnySurvivedFlag.Name)
	}
	if cmd.IsSet(useFareFlag.Name) {
		o.UseFare = cmd.Bool(useFareFlag.Name)
	}
	if cmd.IsSet(familyFillerFlag.Name) {
		o.FamilyFiller = cmd.String(familyFillerFlag.Name)
	}
	if cmd.IsSet(titleFlag.Name) {
		o.Titles = cmd.StringSlice(titleFlag.Name)
	}
	if cmd.IsSet(imputeEmbarkedFlag.Name) {
		impute = cmd.String(imputeEmbarkedFlag.Name)
	}

	return o, passenger.ReadOptions{ImputeEmbarked: passenger.Port(strings.ToUpper(impute))}
}

func outputPath(output, input string, many bool) string {
	if !many {
		return output
	}
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(output, stem+featureFileSuffix)
}

func cmdProcess(ctx context.Context, cmd *cli.Command) error {
	inputs := cmd.StringSlice(inputFlag.Name)
	if len(inputs) == 0 {
		return cli.ShowSubcommandHelp(cmd)
	}

	cfg := getConfig(cmd)
	o, ro := engineOptions(cmd, cfg.Config)

	results, err := pipeline.RunFiles(ctx, inputs, ro, o)
	if err != nil {
		return fmt.Errorf("processing input: %w", err)
	}

	output := cmd.String(outputFlag.Name)
	many := len(inputs) > 1
	if output != "" && many {
		if err := os.MkdirAll(output, dirMode); err != nil {
			return fmt.Errorf("creating output dir %s: %w", output, err)
		}
	}

	reports := make([]*processReport, 0, len(results))
	for _, r := range results {
		rep := &processReport{Input: r.Input, Summary: r.Result.Summary}

		if output != "" {
			rep.Output = outputPath(output, r.Input, many)
			if err := passenger.WriteFile(rep.Output, r.Result.Table); err != nil {
				return fmt.Errorf("writing features: %w", err)
			}
			slog.Info("features written", "input", r.Input, "output", rep.Output)
		}

		if cmd.Bool(storeFlag.Name) {
			db, err := cfg.DB()
			if err != nil {
				return err
			}
			run, err := data.SaveRun(db, filepath.Base(r.Input), o, r.Result)
			if err != nil {
				return fmt.Errorf("saving run: %w", err)
			}
			rep.RunID = run.ID
		}

		reports = append(reports, rep)
	}

	if err := encode(cmd, reports); err != nil {
		return fmt.Errorf("error encoding result: %w", err)
	}

	return nil
}
