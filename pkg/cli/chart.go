package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mchmarny/kinfeat/pkg/chart"
	"github.com/mchmarny/kinfeat/pkg/data"
	"github.com/urfave/cli/v3"
)

var (
	chartOutFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "PNG file to write (default: <run>.png)",
	}

	chartCmd = &cli.Command{
		Name:            "chart",
		HideHelpCommand: true,
		Usage:           "Plot survival by family size for a stored run",
		Action:          cmdChart,
		Flags:           []cli.Flag{runIDFlag, chartOutFlag},
	}
)

func cmdChart(ctx context.Context, cmd *cli.Command) error {
	db, err := getConfig(cmd).DB()
	if err != nil {
		return err
	}

	id := cmd.String(runIDFlag.Name)
	run, err := data.GetRun(db, id)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	sizes, err := data.GetSizeSummary(db, id)
	if err != nil {
		return fmt.Errorf("failed to get size summary: %w", err)
	}

	out := cmd.String(chartOutFlag.Name)
	if out == "" {
		out = id + ".png"
	}

	if err := chart.Save(out, run.Source, sizes); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	slog.Info("chart saved", "run", id, "file", out)

	return encode(cmd, map[string]string{"run": id, "file": out})
}
