package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/runwhen-contrib/ccblogger/pkg/domain/collection"
)

func resetTasksFlags() {
	tasksRepoURL = DefaultRepoURL
	tasksTagFilter = ""
	tasksBundle = ""
	tasksNoCache = false
	tasksJSON = false
}

func TestTasksCmd_Text(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()
	defer resetTasksFlags()

	repoURL := "https://github.com/org/repo"
	seedCachedTasks(t, dir, repoURL)

	RootCmd.SetArgs([]string{"tasks", "--repo-url", repoURL})
	RootCmd.SilenceUsage = true
	output := captureStdout(t, func() {
		if err := RootCmd.Execute(); err != nil {
			t.Fatalf("tasks failed: %v", err)
		}
	})

	if !strings.Contains(output, "Tasks in "+repoURL) {
		t.Errorf("expected header, got:\n%s", output)
	}
	if !strings.Contains(output, "- Fetch Ingress Logs") {
		t.Errorf("expected task name, got:\n%s", output)
	}
	if !strings.Contains(output, "bundle: k8s-deployment-health") {
		t.Errorf("expected bundle line, got:\n%s", output)
	}
	if !strings.Contains(output, "2 tasks") {
		t.Errorf("expected count, got:\n%s", output)
	}
}

func TestTasksCmd_JSON(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()
	defer resetTasksFlags()

	repoURL := "https://github.com/org/repo"
	seedCachedTasks(t, dir, repoURL)

	RootCmd.SetArgs([]string{"tasks", "--repo-url", repoURL, "--json"})
	RootCmd.SilenceUsage = true
	output := captureStdout(t, func() {
		if err := RootCmd.Execute(); err != nil {
			t.Fatalf("tasks failed: %v", err)
		}
	})

	var tasks []collection.Task
	if err := json.Unmarshal([]byte(output), &tasks); err != nil {
		t.Fatalf("unmarshal output: %v\n%s", err, output)
	}
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
}

func TestTasksCmd_TagFilter(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()
	defer resetTasksFlags()

	repoURL := "https://github.com/org/repo"
	seedCachedTasks(t, dir, repoURL)

	RootCmd.SetArgs([]string{"tasks", "--repo-url", repoURL, "--tag-filter", "kubernetes"})
	RootCmd.SilenceUsage = true
	output := captureStdout(t, func() {
		if err := RootCmd.Execute(); err != nil {
			t.Fatalf("tasks failed: %v", err)
		}
	})

	if !strings.Contains(output, "1 tasks") {
		t.Errorf("expected filtered count, got:\n%s", output)
	}
	if strings.Contains(output, "Fetch Ingress Logs") {
		t.Errorf("ingress task should be filtered out, got:\n%s", output)
	}
}

func TestTasksCmd_BundleFilter(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()
	defer resetTasksFlags()

	repoURL := "https://github.com/org/repo"
	seedCachedTasks(t, dir, repoURL)

	RootCmd.SetArgs([]string{"tasks", "--repo-url", repoURL, "--bundle", "nginx-ingress-health"})
	RootCmd.SilenceUsage = true
	output := captureStdout(t, func() {
		if err := RootCmd.Execute(); err != nil {
			t.Fatalf("tasks failed: %v", err)
		}
	})

	if !strings.Contains(output, "Fetch Ingress Logs") {
		t.Errorf("expected the bundle's task, got:\n%s", output)
	}
	if strings.Contains(output, "Check Deployment Replicas") {
		t.Errorf("other bundles should be excluded, got:\n%s", output)
	}
	if !strings.Contains(output, "1 tasks") {
		t.Errorf("expected count, got:\n%s", output)
	}
}
