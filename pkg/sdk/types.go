package sdk

import "time"

// The SDK mirrors the server's wire types instead of importing its internal
// packages, so SDK consumers never pull in the server implementation.

// TaskSummary is a condensed troubleshooting task returned by ListTasks.
type TaskSummary struct {
	Name          string   `json:"name"`
	Slug          string   `json:"slug"`
	Bundle        string   `json:"bundle,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Documentation string   `json:"documentation,omitempty"`
}

// HasTag reports whether the task carries the given tag.
func (t TaskSummary) HasTag(tag string) bool {
	for _, candidate := range t.Tags {
		if candidate == tag {
			return true
		}
	}
	return false
}

// CacheEntry describes one cached task set on the server.
type CacheEntry struct {
	Key        string    `json:"key"`
	Path       string    `json:"path"`
	TaskCount  int       `json:"task_count"`
	SizeBytes  int64     `json:"size_bytes"`
	ModifiedAt time.Time `json:"modified_at"`
}

// UsageStats tracks the cost and telemetry of generation runs.
type UsageStats struct {
	TotalRuns      int            `json:"total_runs"`
	PostsGenerated int            `json:"posts_generated"`
	InputTokens    int            `json:"input_tokens"`
	OutputTokens   int            `json:"output_tokens"`
	LastRunAt      time.Time      `json:"last_run_at"`
	ProviderStats  map[string]int `json:"provider_stats"`
}

// TotalTokens returns the combined input and output token count.
func (u UsageStats) TotalTokens() int {
	return u.InputTokens + u.OutputTokens
}

// DeprecatedField records a field or tool the server has deprecated.
type DeprecatedField struct {
	Tool      string `json:"tool"`
	Field     string `json:"field"`
	Since     string `json:"since"`
	RemovedIn string `json:"removed_in"`
	Migration string `json:"migration"`
}

// SchemaInfo is the payload of the ccblogger://schema resource.
type SchemaInfo struct {
	SchemaVersion string            `json:"schema_version"`
	ServerVersion string            `json:"server_version"`
	Deprecated    []DeprecatedField `json:"deprecated"`
	Changelog     string            `json:"changelog"`
}
