package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mchmarny/kinfeat/pkg/net"
	"github.com/mchmarny/kinfeat/pkg/passenger"
	"github.com/urfave/cli/v3"
)

var (
	urlFlag = &cli.StringFlag{
		Name:  "url",
		Usage: "URL of a passenger CSV file",
	}

	repoFlag = &cli.StringFlag{
		Name:  "repo",
		Usage: "GitHub repository holding the dataset (owner/name)",
	}

	pathFlag = &cli.StringFlag{
		Name:  "path",
		Usage: "Path of the dataset in the repository",
	}

	refFlag = &cli.StringFlag{
		Name:  "ref",
		Usage: "Branch, tag or commit of the repository (default: default branch)",
	}

	fetchOutFlag = &cli.StringFlag{
		Name:     "out",
		Usage:    "Local file to save the dataset to",
		Required: true,
	}

	fetchCmd = &cli.Command{
		Name:  "fetch",
		Usage: "Download a passenger dataset from a URL or a GitHub repository",
		UsageText: `kinfeat fetch --url https://example.com/train.csv --out train.csv
   kinfeat fetch --repo owner/datasets --path titanic/train.csv --out train.csv`,
		HideHelpCommand: true,
		Action:          cmdFetch,
		Flags: []cli.Flag{
			urlFlag,
			repoFlag,
			pathFlag,
			refFlag,
			fetchOutFlag,
			imputeEmbarkedFlag,
		},
	}
)

type fetchReport struct {
	Source string `json:"source" yaml:"source"`
	File   string `json:"file" yaml:"file"`
	Rows   int    `json:"rows" yaml:"rows"`
}

func cmdFetch(ctx context.Context, cmd *cli.Command) error {
	out := cmd.String(fetchOutFlag.Name)
	url := cmd.String(urlFlag.Name)
	repo := cmd.String(repoFlag.Name)

	var source string
	switch {
	case url != "" && repo != "":
		return fmt.Errorf("either --%s or --%s, not both", urlFlag.Name, repoFlag.Name)
	case url != "":
		source = url
		if err := net.Download(ctx, url, out); err != nil {
			return fmt.Errorf("downloading %s: %w", url, err)
		}
	case repo != "":
		f, err := repoFile(cmd)
		if err != nil {
			return err
		}
		source = fmt.Sprintf("%s/%s/%s", f.Owner, f.Repo, f.Path)

		token, err := getGitHubToken(getConfig(cmd).HomeDir)
		if err != nil {
			slog.Debug("no GitHub token, using anonymous access", "error", err)
		}

		client := net.NewGitHubClient(ctx, token)
		if err := net.DownloadRepoFile(ctx, client, f, out); err != nil {
			return fmt.Errorf("downloading %s: %w", source, err)
		}
	default:
		return cli.ShowSubcommandHelp(cmd)
	}

	_, ro := engineOptions(cmd, getConfig(cmd).Config)
	t, err := passenger.ReadFile(out, ro)
	if err != nil {
		return fmt.Errorf("checking downloaded dataset: %w", err)
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("checking downloaded dataset: %w", err)
	}

	slog.Info("dataset downloaded", "source", source, "file", out, "rows", t.Len())

	return encode(cmd, &fetchReport{Source: source, File: out, Rows: t.Len()})
}

func repoFile(cmd *cli.Command) (net.RepoFile, error) {
	owner, name, err := net.ParseRepo(cmd.String(repoFlag.Name))
	if err != nil {
		return net.RepoFile{}, err
	}

	path := cmd.String(pathFlag.Name)
	if path == "" {
		return net.RepoFile{}, fmt.Errorf("%w: --%s", errMissingFlag, pathFlag.Name)
	}

	return net.RepoFile{
		Owner: owner,
		Repo:  name,
		Path:  path,
		Ref:   cmd.String(refFlag.Name),
	}, nil
}
