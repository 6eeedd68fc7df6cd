// Package storage persists ccblogger artifacts: the per-repository task
// cache, the audit trail, usage statistics, and generated posts.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/runwhen-contrib/ccblogger/pkg/domain"
	"github.com/runwhen-contrib/ccblogger/pkg/domain/collection"
)

const AppDirName = ".ccblogger"
const CacheDirName = "cache"
const EventsFile = "events.jsonl"
const UsageFile = "usage.json"
const ConfigFile = "config.yaml"
const DeadLetterFile = "deadletters.jsonl"

// DefaultRoot returns the directory under which the app dir lives. Tests and
// scripts can relocate it with CCBLOGGER_HOME.
func DefaultRoot() (string, error) {
	if home := os.Getenv("CCBLOGGER_HOME"); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return home, nil
}

type FilesystemStore struct {
	root        string
	retryConfig retry.Config
}

func NewFilesystemStore(root string) *FilesystemStore {
	return &FilesystemStore{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the directory holding the app dir.
func (r *FilesystemStore) Root() string {
	return r.root
}

// AppDir returns the application directory path.
func (r *FilesystemStore) AppDir() string {
	return filepath.Join(r.root, AppDirName)
}

// ResolvePath ensures the path is a direct child of the app directory and
// prevents traversal.
func (r *FilesystemStore) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := r.AppDir()
	fullPath := filepath.Join(baseDir, filename)
	cleanPath := filepath.Clean(fullPath)

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemStore) Initialize() error {
	// G301: Use 0700 for directories
	if err := os.MkdirAll(filepath.Join(r.AppDir(), CacheDirName), 0700); err != nil {
		return fmt.Errorf("failed to create app directory: %w", err)
	}
	return nil
}

func (r *FilesystemStore) IsInitialized() bool {
	_, err := os.Stat(r.AppDir())
	return err == nil
}

// cachePath validates a cache key and returns its file path. Keys are hex
// hashes with an optional bundle suffix, so a strict character check is
// enough to rule out traversal.
func (r *FilesystemStore) cachePath(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("cache key cannot be empty")
	}
	for _, c := range key {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') && c != '_' && c != '-' {
			return "", fmt.Errorf("invalid cache key: %s", key)
		}
	}
	return filepath.Join(r.AppDir(), CacheDirName, key+".json"), nil
}

// CacheTasks writes the task set for a cache key.
func (r *FilesystemStore) CacheTasks(key string, tasks []collection.Task) error {
	if err := r.Initialize(); err != nil {
		return err
	}
	path, err := r.cachePath(key)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}

	// G306: Use 0600 for files
	return os.WriteFile(path, data, 0600)
}

// LoadCachedTasks reads the task set for a cache key.
func (r *FilesystemStore) LoadCachedTasks(key string) ([]collection.Task, error) {
	retryer := retry.New[[]collection.Task](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) ([]collection.Task, error) {
		path, err := r.cachePath(key)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via cachePath
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read cache file: %w", err)
		}

		var tasks []collection.Task
		if err := json.Unmarshal(data, &tasks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cached tasks: %w", err)
		}

		return tasks, nil
	})
}

// HasCachedTasks reports whether a cache entry exists for the key.
func (r *FilesystemStore) HasCachedTasks(key string) bool {
	path, err := r.cachePath(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// CacheEntries lists the cache files currently on disk.
func (r *FilesystemStore) CacheEntries() ([]domain.CacheEntry, error) {
	cacheDir := filepath.Join(r.AppDir(), CacheDirName)
	dirEntries, err := os.ReadDir(cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}

	var entries []domain.CacheEntry
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		key := strings.TrimSuffix(de.Name(), ".json")
		path := filepath.Join(cacheDir, key+".json")

		count := 0
		if tasks, err := r.LoadCachedTasks(key); err == nil {
			count = len(tasks)
		}

		entries = append(entries, domain.CacheEntry{
			Key:        key,
			Path:       path,
			TaskCount:  count,
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}
	return entries, nil
}

// ClearCache removes all cached task sets.
func (r *FilesystemStore) ClearCache() error {
	cacheDir := filepath.Join(r.AppDir(), CacheDirName)
	dirEntries, err := os.ReadDir(cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(cacheDir, de.Name())); err != nil {
			return fmt.Errorf("failed to remove cache entry: %w", err)
		}
	}
	return nil
}

// WritePost writes one rendered post into the output directory and returns
// its path. The directory is created on first use.
func (r *FilesystemStore) WritePost(dir, filename, content string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("output directory cannot be empty")
	}
	if filename == "" || filename != filepath.Base(filename) {
		return "", fmt.Errorf("invalid post filename: %s", filename)
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return "", fmt.Errorf("failed to write post: %w", err)
	}
	return path, nil
}

func (r *FilesystemStore) UpdateUsage(stats domain.UsageStats) error {
	if err := r.Initialize(); err != nil {
		return err
	}
	path, err := r.ResolvePath(UsageFile)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal usage stats: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

func (r *FilesystemStore) LoadUsage() (*domain.UsageStats, error) {
	path, err := r.ResolvePath(UsageFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &domain.UsageStats{}, nil
		}
		return nil, fmt.Errorf("failed to read usage stats: %w", err)
	}

	var stats domain.UsageStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal usage stats: %w", err)
	}

	return &stats, nil
}
