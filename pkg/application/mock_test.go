package application_test

import (
	"fmt"
	"path/filepath"

	"github.com/runwhen-contrib/ccblogger/pkg/domain"
	"github.com/runwhen-contrib/ccblogger/pkg/domain/collection"
)

type MockRepo struct {
	Cached      map[string][]collection.Task
	Posts       map[string]string
	Events      []domain.Event
	Usage       *domain.UsageStats
	Initialized bool
	SaveError   error
	LoadError   error
}

func NewMockRepo() *MockRepo {
	return &MockRepo{
		Cached: map[string][]collection.Task{},
		Posts:  map[string]string{},
	}
}

func (m *MockRepo) Initialize() error   { m.Initialized = true; return nil }
func (m *MockRepo) IsInitialized() bool { return m.Initialized }

func (m *MockRepo) CacheTasks(key string, tasks []collection.Task) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Cached[key] = tasks
	return nil
}

func (m *MockRepo) LoadCachedTasks(key string) ([]collection.Task, error) {
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	tasks, ok := m.Cached[key]
	if !ok {
		return nil, fmt.Errorf("no cached tasks for key %s", key)
	}
	return tasks, nil
}

func (m *MockRepo) HasCachedTasks(key string) bool { _, ok := m.Cached[key]; return ok }

func (m *MockRepo) CacheEntries() ([]domain.CacheEntry, error) {
	entries := []domain.CacheEntry{}
	for key, tasks := range m.Cached {
		entries = append(entries, domain.CacheEntry{Key: key, TaskCount: len(tasks)})
	}
	return entries, m.LoadError
}

func (m *MockRepo) ClearCache() error {
	m.Cached = map[string][]collection.Task{}
	return m.SaveError
}

func (m *MockRepo) WritePost(dir, filename, content string) (string, error) {
	if m.SaveError != nil {
		return "", m.SaveError
	}
	path := filepath.Join(dir, filename)
	m.Posts[path] = content
	return path, nil
}

func (m *MockRepo) RecordEvent(e domain.Event) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Events = append(m.Events, e)
	return nil
}

func (m *MockRepo) LoadEvents() ([]domain.Event, error) { return m.Events, m.LoadError }

func (m *MockRepo) UpdateUsage(u domain.UsageStats) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Usage = &u
	return nil
}

func (m *MockRepo) LoadUsage() (*domain.UsageStats, error) { return m.Usage, m.LoadError }
