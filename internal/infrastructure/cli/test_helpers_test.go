package cli

import (
	"bytes"
	"os"
	"testing"

	"github.com/runwhen-contrib/ccblogger/pkg/application"
	"github.com/runwhen-contrib/ccblogger/pkg/domain/collection"
	"github.com/runwhen-contrib/ccblogger/pkg/storage"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	return buf.String()
}

// withTempDir moves the test into a fresh directory and points the app
// directory there, so commands never touch the real ~/.ccblogger.
func withTempDir(t *testing.T) (string, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "ccblogger-cli-test-*")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	old, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	prevHome, hadHome := os.LookupEnv("CCBLOGGER_HOME")
	_ = os.Setenv("CCBLOGGER_HOME", dir)

	return dir, func() {
		if hadHome {
			_ = os.Setenv("CCBLOGGER_HOME", prevHome)
		} else {
			_ = os.Unsetenv("CCBLOGGER_HOME")
		}
		_ = os.Chdir(old)
		_ = os.RemoveAll(dir)
	}
}

// seedCachedTasks fills the task cache for repoURL so commands can run
// without cloning anything.
func seedCachedTasks(t *testing.T, root, repoURL string) []collection.Task {
	t.Helper()

	tasks := []collection.Task{
		{
			Name:          "Check Deployment Replicas for `${DEPLOYMENT_NAME}`",
			Tags:          []string{"kubernetes", "deployment"},
			Documentation: "Checks replica counts.",
			SourceCode:    "*** Test Case ***\nCheck Deployment Replicas",
			Bundle:        "k8s-deployment-health",
		},
		{
			Name:          "Fetch Ingress Logs",
			Tags:          []string{"ingress"},
			Documentation: "Collects controller logs.",
			SourceCode:    "*** Test Case ***\nFetch Ingress Logs",
			Bundle:        "nginx-ingress-health",
		},
	}

	repo := storage.NewFilesystemStore(root)
	if err := repo.CacheTasks(application.CacheKey(repoURL), tasks); err != nil {
		t.Fatalf("cache tasks: %v", err)
	}
	return tasks
}
