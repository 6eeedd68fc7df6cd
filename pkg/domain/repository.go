package domain

import (
	"time"

	"github.com/runwhen-contrib/ccblogger/pkg/domain/collection"
)

// CacheEntry describes one cached task set in the app directory.
type CacheEntry struct {
	Key        string    `json:"key"`
	Path       string    `json:"path"`
	TaskCount  int       `json:"task_count"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Repository handles the persistence of ccblogger artifacts in the
// application directory (task cache, audit trail, usage stats) and of
// generated posts in the output directory.
type Repository interface {
	Initialize() error
	IsInitialized() bool
	CacheTasks(key string, tasks []collection.Task) error
	LoadCachedTasks(key string) ([]collection.Task, error)
	HasCachedTasks(key string) bool
	CacheEntries() ([]CacheEntry, error)
	ClearCache() error
	WritePost(dir, filename, content string) (string, error)
	RecordEvent(event Event) error
	LoadEvents() ([]Event, error)
	UpdateUsage(stats UsageStats) error
	LoadUsage() (*UsageStats, error)
}
