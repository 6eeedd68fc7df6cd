package cli

import (
	"strings"
	"testing"
)

func TestAppRoot_HonorsHomeOverride(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()

	root, err := appRoot()
	if err != nil {
		t.Fatalf("appRoot() error: %v", err)
	}
	if root != dir {
		t.Fatalf("appRoot() = %q, want %q", root, dir)
	}
}

func TestLoadServices(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()

	services, err := loadServices(dir)
	if err != nil {
		t.Fatalf("loadServices() error: %v", err)
	}
	if services == nil || services.Fetch == nil || services.Blog == nil {
		t.Fatal("expected wired services")
	}
}

func TestLoadServicesWithProvider_EmptyFallsThrough(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()

	services, err := loadServicesWithProvider(dir, "", "")
	if err != nil {
		t.Fatalf("loadServicesWithProvider() error: %v", err)
	}
	if services == nil {
		t.Fatal("expected services")
	}
}

func TestLoadServicesWithProvider_Mock(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()

	services, err := loadServicesWithProvider(dir, "mock", "test-model")
	if err != nil {
		t.Fatalf("loadServicesWithProvider() error: %v", err)
	}
	if services.Provider == nil {
		t.Fatal("expected provider")
	}
}

func TestLoadServicesWithProvider_Unknown(t *testing.T) {
	dir, cleanup := withTempDir(t)
	defer cleanup()

	_, err := loadServicesWithProvider(dir, "nope", "")
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if !strings.Contains(err.Error(), "unsupported AI provider") {
		t.Fatalf("unexpected error: %v", err)
	}
}
