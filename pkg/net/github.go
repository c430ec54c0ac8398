package net

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v83/github"
)

const rateLimitThreshold = 10

// RepoFile identifies a file in a GitHub repository.
type RepoFile struct {
	Owner string
	Repo  string
	Path  string
	Ref   string
}

// ParseRepo splits an owner/name repository reference.
func ParseRepo(s string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/name", s)
	}
	return owner, repo, nil
}

// NewGitHubClient returns a GitHub client, authenticated when token is set.
func NewGitHubClient(ctx context.Context, token string) *github.Client {
	if token == "" {
		return github.NewClient(nil)
	}
	return github.NewClient(GetOAuthClient(ctx, token))
}

// DownloadRepoFile saves the content of a repository file to filepath.
func DownloadRepoFile(ctx context.Context, client *github.Client, f RepoFile, filepath string) error {
	if client == nil {
		return fmt.Errorf("github client required")
	}

	var opts *github.RepositoryContentGetOptions
	if f.Ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: f.Ref}
	}

	rc, resp, err := client.Repositories.DownloadContents(ctx, f.Owner, f.Repo, f.Path, opts)
	checkRateLimit(resp)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return ErrorURLNotFound
		}
		return fmt.Errorf("error downloading %s from %s/%s: %w", f.Path, f.Owner, f.Repo, err)
	}
	defer rc.Close()

	return saveTo(filepath, rc)
}

// checkRateLimit warns when few API calls are left before the reset.
func checkRateLimit(resp *github.Response) {
	if resp == nil || resp.Rate.Limit == 0 || resp.Rate.Remaining > rateLimitThreshold {
		return
	}

	slog.Warn("GitHub rate limit approaching",
		"remaining", resp.Rate.Remaining,
		"reset_at", resp.Rate.Reset.Time.Format(time.RFC3339))
}
