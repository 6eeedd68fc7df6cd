package sdk

import (
	"testing"
)

func TestListTasksRequest_Fields(t *testing.T) {
	req := ListTasksRequest{
		RepoURL: "https://github.com/runwhen-contrib/rw-cli-codecollection",
		Tag:     "kubernetes",
		NoCache: true,
	}
	if req.Tag != "kubernetes" {
		t.Errorf("unexpected tag: %s", req.Tag)
	}
	if !req.NoCache {
		t.Error("expected no_cache to be set")
	}
}

func TestGenerateRequest_Fields(t *testing.T) {
	req := GenerateRequest{
		RepoURL:   "https://github.com/runwhen-contrib/rw-cli-codecollection",
		OutputDir: "blog_posts",
		Limit:     3,
		Tag:       "ingress",
	}
	if req.OutputDir != "blog_posts" {
		t.Errorf("unexpected output dir: %s", req.OutputDir)
	}
	if req.Limit != 3 {
		t.Errorf("unexpected limit: %d", req.Limit)
	}
}
