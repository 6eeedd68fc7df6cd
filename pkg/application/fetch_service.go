package application

import (
	"context"
	"crypto/md5" // #nosec G501 -- cache key derivation only, matches the on-disk cache layout
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/runwhen-contrib/ccblogger/pkg/domain"
	"github.com/runwhen-contrib/ccblogger/pkg/domain/collection"
	"github.com/runwhen-contrib/ccblogger/pkg/domain/events"
)

// cloneTimeout bounds a single git clone.
const cloneTimeout = 300 * time.Second

// BranchResolver reports the default branch of a hosted repository.
// Implementations that cannot answer return an error and callers fall back
// to "main".
type BranchResolver interface {
	DefaultBranch(ctx context.Context, repoURL string) (string, error)
}

// FetchService clones code collection repositories and keeps the extracted
// tasks cached by repository URL.
type FetchService struct {
	repo      domain.Repository
	extract   *ExtractService
	branches  BranchResolver
	audit     domain.AuditLogger
	publisher events.Publisher
}

func NewFetchService(repo domain.Repository, extract *ExtractService, branches BranchResolver, audit domain.AuditLogger, publisher events.Publisher) *FetchService {
	return &FetchService{
		repo:      repo,
		extract:   extract,
		branches:  branches,
		audit:     audit,
		publisher: publisher,
	}
}

// CacheKey derives the cache file key for a repository URL.
func CacheKey(repoURL string) string {
	sum := md5.Sum([]byte(repoURL)) // #nosec G401 -- not used for security, keys the task cache
	return hex.EncodeToString(sum[:])
}

// BundleCacheKey derives the cache key for a single codebundle.
func BundleCacheKey(repoURL, bundle string) string {
	return CacheKey(repoURL) + "_" + bundle
}

var scpLikeURL = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9._-]+:[A-Za-z0-9._/-]+$`)

func validateRepoURL(repoURL string) error {
	if repoURL == "" {
		return fmt.Errorf("repository URL is empty")
	}
	if strings.HasPrefix(repoURL, "-") {
		return fmt.Errorf("invalid repository URL: %s", repoURL)
	}
	for _, scheme := range []string{"https://", "http://", "ssh://", "git://"} {
		if strings.HasPrefix(repoURL, scheme) {
			if _, err := url.Parse(repoURL); err != nil {
				return fmt.Errorf("invalid repository URL: %w", err)
			}
			return nil
		}
	}
	if scpLikeURL.MatchString(repoURL) {
		return nil
	}
	if filepath.IsAbs(repoURL) {
		if _, err := os.Stat(repoURL); err == nil {
			return nil
		}
	}
	return fmt.Errorf("unsupported repository URL: %s", repoURL)
}

// authenticatedCloneURL rewrites GitHub https URLs to carry the GITHUB_PAT
// token when one is set. The second return value is the secret to redact
// from any git output.
func authenticatedCloneURL(repoURL string) (string, string) {
	pat := os.Getenv("GITHUB_PAT")
	if pat == "" || !strings.HasPrefix(repoURL, "https://github.com/") {
		return repoURL, ""
	}
	return "https://x-access-token:" + pat + "@" + strings.TrimPrefix(repoURL, "https://"), pat
}

func redactSecret(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "***")
}

// EnsureCheckout clones the repository into a fresh temporary directory and
// returns its path together with a cleanup function.
func (s *FetchService) EnsureCheckout(ctx context.Context, repoURL string) (string, func(), error) {
	if err := validateRepoURL(repoURL); err != nil {
		return "", nil, err
	}

	dir, err := os.MkdirTemp("", "ccblogger-checkout-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create checkout directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }

	cloneURL, secret := authenticatedCloneURL(repoURL)

	ctx, cancel := context.WithTimeout(ctx, cloneTimeout)
	defer cancel()

	// #nosec G204 -- repoURL is validated above and passed as a single argument
	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", cloneURL, dir)
	out, err := cmd.CombinedOutput()
	if err != nil {
		cleanup()
		if ctx.Err() == context.DeadlineExceeded {
			return "", nil, fmt.Errorf("git clone timed out after %s", cloneTimeout)
		}
		msg := strings.TrimSpace(redactSecret(string(out), secret))
		if msg == "" {
			msg = err.Error()
		}
		return "", nil, fmt.Errorf("failed to clone %s: %s", repoURL, msg)
	}

	return dir, cleanup, nil
}

// GetAllTasks returns every task in the repository, served from the cache
// when possible. A corrupt cache entry is treated as a miss.
func (s *FetchService) GetAllTasks(ctx context.Context, repoURL string, useCache bool) ([]collection.Task, error) {
	key := CacheKey(repoURL)

	if useCache && s.repo.HasCachedTasks(key) {
		tasks, err := s.repo.LoadCachedTasks(key)
		if err == nil {
			return tasks, nil
		}
		fmt.Fprintf(os.Stderr, "Warning: ignoring corrupt cache for %s: %v\n", repoURL, err)
	}

	dir, cleanup, err := s.EnsureCheckout(ctx, repoURL)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if s.audit != nil {
		_ = s.audit.Log(domain.ActionFetch, "fetcher", map[string]interface{}{
			"repo_url": repoURL,
		})
	}

	base := supportingFilesBase(repoURL, s.defaultBranch(ctx, repoURL))
	tasks, err := s.extract.ExtractTasks(dir, base)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CacheTasks(key, tasks); err != nil {
		return nil, fmt.Errorf("failed to cache tasks: %w", err)
	}
	s.cacheByBundle(repoURL, tasks)

	if s.audit != nil {
		_ = s.audit.Log(domain.ActionExtract, "fetcher", map[string]interface{}{
			"repo_url": repoURL,
			"tasks":    len(tasks),
		})
	}
	if s.publisher != nil {
		_ = s.publisher.Publish(events.TaskExtracted(repoURL, len(tasks)))
	}

	return tasks, nil
}

// RefreshCache re-extracts the repository bypassing the cache.
func (s *FetchService) RefreshCache(ctx context.Context, repoURL string) ([]collection.Task, error) {
	return s.GetAllTasks(ctx, repoURL, false)
}

// cacheByBundle also writes one cache entry per codebundle, alongside the
// repository-level entry. Failures are warnings; the repo entry is the one
// reads depend on.
func (s *FetchService) cacheByBundle(repoURL string, tasks []collection.Task) {
	byBundle := map[string][]collection.Task{}
	for _, task := range tasks {
		if task.Bundle == "" {
			continue
		}
		byBundle[task.Bundle] = append(byBundle[task.Bundle], task)
	}
	for bundle, bundleTasks := range byBundle {
		if err := s.repo.CacheTasks(BundleCacheKey(repoURL, bundle), bundleTasks); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to cache bundle %s: %v\n", bundle, err)
		}
	}
}

// GetBundleTasks returns the cached tasks of one codebundle, falling back to
// a full repository fetch when the bundle has no cache entry yet.
func (s *FetchService) GetBundleTasks(ctx context.Context, repoURL, bundle string, useCache bool) ([]collection.Task, error) {
	key := BundleCacheKey(repoURL, bundle)

	if useCache && s.repo.HasCachedTasks(key) {
		tasks, err := s.repo.LoadCachedTasks(key)
		if err == nil {
			return tasks, nil
		}
		fmt.Fprintf(os.Stderr, "Warning: ignoring corrupt cache for bundle %s: %v\n", bundle, err)
	}

	all, err := s.GetAllTasks(ctx, repoURL, useCache)
	if err != nil {
		return nil, err
	}

	tasks := []collection.Task{}
	for _, task := range all {
		if task.Bundle == bundle {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (s *FetchService) defaultBranch(ctx context.Context, repoURL string) string {
	if s.branches == nil {
		return "main"
	}
	branch, err := s.branches.DefaultBranch(ctx, repoURL)
	if err != nil || branch == "" {
		return "main"
	}
	return branch
}

var scpLikeGitHub = regexp.MustCompile(`^[A-Za-z0-9._-]+@([A-Za-z0-9._-]+):(.+)$`)

// supportingFilesBase builds the web URL of the codebundles tree for a
// repository at a given branch.
func supportingFilesBase(repoURL, branch string) string {
	base := strings.TrimSuffix(strings.TrimSuffix(repoURL, "/"), ".git")
	if m := scpLikeGitHub.FindStringSubmatch(base); m != nil {
		base = "https://" + m[1] + "/" + m[2]
	}
	return base + "/tree/" + branch + "/codebundles"
}
