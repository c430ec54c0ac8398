package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mchmarny/kinfeat/pkg/data"
	"github.com/urfave/cli/v3"
)

var (
	yesFlag = &cli.BoolFlag{
		Name:  "yes",
		Usage: "Skip the confirmation prompt",
	}

	resetCmd = &cli.Command{
		Name:            "reset",
		Usage:           "Delete all stored runs and start fresh",
		HideHelpCommand: true,
		Flags:           []cli.Flag{yesFlag},
		Action:          cmdReset,
	}
)

func cmdReset(ctx context.Context, cmd *cli.Command) error {
	cfg := getConfig(cmd)

	if !cmd.Bool(yesFlag.Name) {
		fmt.Printf("This will permanently delete all runs in %s\n", cfg.DSN)
		fmt.Print("Are you sure? [y/N]: ")

		answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	// the store is re-created on a separate connection
	cfg.Close()

	if err := data.Reset(cfg.DSN); err != nil {
		return fmt.Errorf("resetting database: %w", err)
	}

	slog.Info("database reset", "dsn", cfg.DSN)
	return nil
}
