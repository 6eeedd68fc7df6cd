package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	gh "github.com/google/go-github/v69/github"
	"golang.org/x/oauth2"
)

// Client answers repository metadata questions against the GitHub API.
// A GITHUB_PAT token raises rate limits and unlocks private repositories;
// without one the client works anonymously.
type Client struct {
	gh *gh.Client
}

func NewClient(ctx context.Context) *Client {
	token := os.Getenv("GITHUB_PAT")
	if token == "" {
		return &Client{gh: gh.NewClient(nil)}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{gh: gh.NewClient(oauth2.NewClient(ctx, ts))}
}

// NewClientWithHTTP creates a client against a custom API base URL (for testing).
func NewClientWithHTTP(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		client.BaseURL = parsed
	}
	return &Client{gh: client}, nil
}

// RepoInfo is the subset of repository metadata the CLI surfaces.
type RepoInfo struct {
	Owner         string
	Name          string
	Description   string
	DefaultBranch string
	Stars         int
}

var scpGitHub = regexp.MustCompile(`^[A-Za-z0-9._-]+@github\.com:([^/]+)/(.+)$`)

// SplitOwnerRepo extracts owner and repository name from an https or scp-like
// GitHub URL. Other hosts return an error so callers can fall back.
func SplitOwnerRepo(repoURL string) (string, string, error) {
	trimmed := strings.TrimSuffix(repoURL, "/")
	trimmed = strings.TrimSuffix(trimmed, ".git")

	if m := scpGitHub.FindStringSubmatch(trimmed); m != nil {
		return m[1], m[2], nil
	}

	for _, prefix := range []string{"https://github.com/", "http://github.com/"} {
		if rest, ok := strings.CutPrefix(trimmed, prefix); ok {
			parts := strings.SplitN(rest, "/", 3)
			if len(parts) >= 2 && parts[0] != "" && parts[1] != "" {
				return parts[0], parts[1], nil
			}
		}
	}

	return "", "", fmt.Errorf("not a GitHub repository URL: %s", repoURL)
}

// DefaultBranch resolves the repository's default branch, so generated
// supporting-file links point at the right tree.
func (c *Client) DefaultBranch(ctx context.Context, repoURL string) (string, error) {
	info, err := c.Describe(ctx, repoURL)
	if err != nil {
		return "", err
	}
	return info.DefaultBranch, nil
}

// Describe fetches repository metadata for display.
func (c *Client) Describe(ctx context.Context, repoURL string) (*RepoInfo, error) {
	owner, name, err := SplitOwnerRepo(repoURL)
	if err != nil {
		return nil, err
	}

	repo, _, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s/%s: %w", owner, name, err)
	}

	return &RepoInfo{
		Owner:         owner,
		Name:          name,
		Description:   repo.GetDescription(),
		DefaultBranch: repo.GetDefaultBranch(),
		Stars:         repo.GetStargazersCount(),
	}, nil
}
