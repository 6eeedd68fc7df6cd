package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSplitOwnerRepo(t *testing.T) {
	tests := []struct {
		url       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"https://github.com/runwhen-contrib/rw-cli-codecollection", "runwhen-contrib", "rw-cli-codecollection", false},
		{"https://github.com/runwhen-contrib/rw-cli-codecollection.git", "runwhen-contrib", "rw-cli-codecollection", false},
		{"https://github.com/runwhen-contrib/rw-cli-codecollection/", "runwhen-contrib", "rw-cli-codecollection", false},
		{"git@github.com:runwhen-contrib/rw-cli-codecollection.git", "runwhen-contrib", "rw-cli-codecollection", false},
		{"https://gitlab.com/org/repo", "", "", true},
		{"not a url", "", "", true},
		{"https://github.com/onlyowner", "", "", true},
	}

	for _, tt := range tests {
		owner, repo, err := SplitOwnerRepo(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("SplitOwnerRepo(%q) expected error", tt.url)
			}
			continue
		}
		if err != nil {
			t.Errorf("SplitOwnerRepo(%q) failed: %v", tt.url, err)
			continue
		}
		if owner != tt.wantOwner || repo != tt.wantRepo {
			t.Errorf("SplitOwnerRepo(%q) = %q/%q, want %q/%q", tt.url, owner, repo, tt.wantOwner, tt.wantRepo)
		}
	}
}

func TestDescribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/runwhen-contrib/rw-cli-codecollection" {
			t.Errorf("unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"default_branch":"develop","description":"CLI codebundles","stargazers_count":42}`)
	}))
	defer server.Close()

	client, err := NewClientWithHTTP(server.Client(), server.URL)
	if err != nil {
		t.Fatalf("NewClientWithHTTP failed: %v", err)
	}

	info, err := client.Describe(context.Background(), "https://github.com/runwhen-contrib/rw-cli-codecollection")
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if info.DefaultBranch != "develop" {
		t.Errorf("DefaultBranch = %q, want develop", info.DefaultBranch)
	}
	if info.Description != "CLI codebundles" || info.Stars != 42 {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestDefaultBranch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"default_branch":"main"}`)
	}))
	defer server.Close()

	client, err := NewClientWithHTTP(server.Client(), server.URL)
	if err != nil {
		t.Fatalf("NewClientWithHTTP failed: %v", err)
	}

	branch, err := client.DefaultBranch(context.Background(), "https://github.com/org/repo")
	if err != nil {
		t.Fatalf("DefaultBranch failed: %v", err)
	}
	if branch != "main" {
		t.Errorf("DefaultBranch = %q, want main", branch)
	}
}

func TestDescribe_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client, err := NewClientWithHTTP(server.Client(), server.URL)
	if err != nil {
		t.Fatalf("NewClientWithHTTP failed: %v", err)
	}

	if _, err := client.Describe(context.Background(), "https://github.com/org/missing"); err == nil {
		t.Error("expected error for missing repository")
	}
}

func TestDescribe_NonGitHubURL(t *testing.T) {
	client := NewClient(context.Background())
	if _, err := client.Describe(context.Background(), "https://bitbucket.org/org/repo"); err == nil {
		t.Error("expected error for non-GitHub URL")
	}
}
