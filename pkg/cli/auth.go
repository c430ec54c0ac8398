package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/zalando/go-keyring"
)

const (
	tokenFileName  = "github_token"
	keyringService = "kinfeat"
	keyringUser    = "github_token"
)

var (
	tokenFlag = &cli.StringFlag{
		Name:    "token",
		Usage:   "GitHub personal access token used to fetch datasets (prompted when empty)",
		Sources: cli.EnvVars("GITHUB_TOKEN"),
	}

	authCmd = &cli.Command{
		Name:            "auth",
		HideHelpCommand: true,
		Usage:           "Store a GitHub access token for dataset fetches",
		Action:          cmdAuth,
		Flags:           []cli.Flag{tokenFlag},
	}
)

func cmdAuth(ctx context.Context, cmd *cli.Command) error {
	token := cmd.String(tokenFlag.Name)
	if token == "" {
		fmt.Print("GitHub token: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading user input: %w", err)
		}
		token = strings.TrimSpace(line)
	}
	if token == "" {
		return fmt.Errorf("%w: --%s", errMissingFlag, tokenFlag.Name)
	}

	if err := saveGitHubToken(getConfig(cmd).HomeDir, token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	fmt.Println("Token saved")
	return nil
}

func saveGitHubToken(dir, token string) error {
	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return saveGitHubTokenFile(dir, token)
	}

	// the keychain copy wins, drop any file copy
	os.Remove(filepath.Join(dir, tokenFileName))

	return nil
}

func getGitHubToken(dir string) (string, error) {
	token, err := keyring.Get(keyringService, keyringUser)
	if err == nil && token != "" {
		return token, nil
	}

	token, err = getGitHubTokenFile(dir)
	if err != nil {
		return "", err
	}

	if migrateErr := keyring.Set(keyringService, keyringUser, token); migrateErr == nil {
		slog.Info("migrated token from file to OS keychain")
		os.Remove(filepath.Join(dir, tokenFileName))
	}

	return token, nil
}

func saveGitHubTokenFile(dir, token string) error {
	return os.WriteFile(filepath.Join(dir, tokenFileName), []byte(token), 0600)
}

func getGitHubTokenFile(dir string) (string, error) {
	tokenPath := filepath.Join(dir, tokenFileName)
	b, err := os.ReadFile(tokenPath)
	if err != nil {
		return "", fmt.Errorf("reading token file %s: %w", tokenPath, err)
	}
	return strings.TrimSpace(string(b)), nil
}
