package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mchmarny/kinfeat/pkg/config"
	"github.com/mchmarny/kinfeat/pkg/data"
	"github.com/mchmarny/kinfeat/pkg/logging"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName      = "kinfeat"
	dirMode      = 0700
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	logLevel = &slog.LevelVar{}

	errMissingFlag = errors.New("missing required flag")

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	dbFlag = &cli.StringFlag{
		Name:    "db",
		Usage:   "Path to the Sqlite database file or a postgres:// URL",
		Sources: cli.EnvVars("KINFEAT_DB"),
	}

	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
		Value: formatJSON,
	}

	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to the config file (default: $HOME/.kinfeat/config.yaml)",
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	initLogging(os.Stderr)

	app := newApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	HomeDir string
	DSN     string
	Format  string
	Config  *config.Config
	db      *sql.DB
}

// DB opens and migrates the store on first use.
func (a *appConfig) DB() (*sql.DB, error) {
	if a.db != nil {
		return a.db, nil
	}

	if err := data.Init(a.DSN); err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	db, err := data.GetDB(a.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.db = db
	return db, nil
}

func (a *appConfig) Close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}

func getConfig(cmd *cli.Command) *appConfig {
	return cmd.Root().Metadata[appConfigKey].(*appConfig)
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "Family, ticket and cabin survival features for Titanic passenger data",
		Metadata:              map[string]any{},
		Flags: []cli.Flag{
			debugFlag,
			dbFlag,
			formatFlag,
			configFlag,
		},
		Commands: []*cli.Command{
			processCmd,
			fetchCmd,
			authCmd,
			queryCmd,
			chartCmd,
			serverCmd,
			resetCmd,
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			home := getHomeDir()

			cfgPath := cmd.String(configFlag.Name)
			var (
				cfg *config.Config
				err error
			)
			if cfgPath != "" {
				cfg, err = config.Read(cfgPath)
			} else {
				cfg, err = config.ReadOrCreate(home)
			}
			if err != nil {
				return ctx, fmt.Errorf("loading config: %w", err)
			}

			logLevel.Set(logging.ParseLogLevel(cfg.LogLevel))
			if cmd.Bool(debugFlag.Name) {
				logLevel.Set(slog.LevelDebug)
			}

			dsn := cmd.String(dbFlag.Name)
			if dsn == "" {
				dsn = cfg.DB
			}
			if dsn == "" {
				dsn = filepath.Join(home, data.DataFileName)
			}

			format := cmd.String(formatFlag.Name)
			if format == "yml" {
				format = formatYAML
			}
			if format != formatJSON && format != formatYAML {
				return ctx, fmt.Errorf("unsupported format %q", format)
			}

			cmd.Root().Metadata[appConfigKey] = &appConfig{
				HomeDir: home,
				DSN:     dsn,
				Format:  format,
				Config:  cfg,
			}
			return ctx, nil
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			if cfg, ok := cmd.Root().Metadata[appConfigKey].(*appConfig); ok {
				cfg.Close()
			}
			return nil
		},
	}
}

func initLogging(w io.Writer) {
	slog.SetDefault(slog.New(logging.NewCLIHandler(w, logLevel)))
}

func getHomeDir() string {
	dir, _, err := config.GetOrCreateHomeDir(appName)
	if err != nil {
		slog.Debug("error getting home dir, using current dir instead", "error", err)
		return "."
	}
	return dir
}

func encode(cmd *cli.Command, v any) error {
	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}

	if getConfig(cmd).Format == formatYAML {
		return yaml.NewEncoder(w).Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
