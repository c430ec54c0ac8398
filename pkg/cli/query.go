package cli

import (
	"context"
	"fmt"

	"github.com/mchmarny/kinfeat/pkg/data"
	"github.com/urfave/cli/v3"
)

const (
	queryResultLimitDefault = 500
)

var (
	queryLimitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "Limits number of result returned",
		Value: queryResultLimitDefault,
	}

	runIDFlag = &cli.StringFlag{
		Name:     "run",
		Usage:    "Run ID (see: kinfeat query runs)",
		Required: true,
	}

	liveFlag = &cli.BoolFlag{
		Name:  "live",
		Usage: "Only families that kept members after the merge pass",
	}

	queryCmd = &cli.Command{
		Name:            "query",
		Aliases:         []string{"q"},
		HideHelpCommand: true,
		Usage:           "List stored runs and their features",
		Commands: []*cli.Command{
			{
				Name:   "runs",
				Usage:  "List stored runs, most recent first",
				Action: cmdQueryRuns,
				Flags:  []cli.Flag{queryLimitFlag},
			},
			{
				Name:   "run",
				Usage:  "Show a single run",
				Action: cmdQueryRun,
				Flags:  []cli.Flag{runIDFlag},
			},
			{
				Name:   "features",
				Usage:  "List passenger features of a run in input order",
				Action: cmdQueryFeatures,
				Flags:  []cli.Flag{runIDFlag, queryLimitFlag},
			},
			{
				Name:   "families",
				Usage:  "List family groups of a run",
				Action: cmdQueryFamilies,
				Flags:  []cli.Flag{runIDFlag, liveFlag},
			},
			{
				Name:   "sizes",
				Usage:  "Survival by family size for a run",
				Action: cmdQuerySizes,
				Flags:  []cli.Flag{runIDFlag},
			},
			{
				Name:   "delete",
				Usage:  "Delete a run with its features",
				Action: cmdQueryDelete,
				Flags:  []cli.Flag{runIDFlag},
			},
		},
	}
)

func cmdQueryRuns(ctx context.Context, cmd *cli.Command) error {
	db, err := getConfig(cmd).DB()
	if err != nil {
		return err
	}

	list, err := data.ListRuns(db, cmd.Int(queryLimitFlag.Name))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	return encode(cmd, list)
}

func cmdQueryRun(ctx context.Context, cmd *cli.Command) error {
	db, err := getConfig(cmd).DB()
	if err != nil {
		return err
	}

	run, err := data.GetRun(db, cmd.String(runIDFlag.Name))
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	return encode(cmd, run)
}

func cmdQueryFeatures(ctx context.Context, cmd *cli.Command) error {
	db, err := getConfig(cmd).DB()
	if err != nil {
		return err
	}

	list, err := data.GetFeatures(db, cmd.String(runIDFlag.Name), cmd.Int(queryLimitFlag.Name))
	if err != nil {
		return fmt.Errorf("failed to get features: %w", err)
	}

	return encode(cmd, list)
}

func cmdQueryFamilies(ctx context.Context, cmd *cli.Command) error {
	db, err := getConfig(cmd).DB()
	if err != nil {
		return err
	}

	list, err := data.GetFamilies(db, cmd.String(runIDFlag.Name), cmd.Bool(liveFlag.Name))
	if err != nil {
		return fmt.Errorf("failed to get families: %w", err)
	}

	return encode(cmd, list)
}

func cmdQuerySizes(ctx context.Context, cmd *cli.Command) error {
	db, err := getConfig(cmd).DB()
	if err != nil {
		return err
	}

	list, err := data.GetSizeSummary(db, cmd.String(runIDFlag.Name))
	if err != nil {
		return fmt.Errorf("failed to get size summary: %w", err)
	}

	return encode(cmd, list)
}

func cmdQueryDelete(ctx context.Context, cmd *cli.Command) error {
	db, err := getConfig(cmd).DB()
	if err != nil {
		return err
	}

	id := cmd.String(runIDFlag.Name)
	if err := data.DeleteRun(db, id); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	return encode(cmd, map[string]string{"deleted": id})
}
