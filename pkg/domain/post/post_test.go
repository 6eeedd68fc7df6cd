package post

import (
	"strings"
	"testing"
	"time"

	"github.com/runwhen-contrib/ccblogger/pkg/domain/collection"
)

func sampleTask() collection.Task {
	return collection.Task{
		Name:          "Check GCE Ingress Health",
		Tags:          []string{"kubernetes", "gce"},
		Documentation: "Checks ingress backend health.",
		SourceCode: "*** Test Case ***\nCheck GCE Ingress Health\n" +
			"    [Documentation]    Checks ingress backend health.\n" +
			"    [Tags]    kubernetes    gce\n" +
			"    Log    hello",
		SupportingFilesURL: "https://github.com/example/repo/tree/main/codebundles/gce-ingress",
	}
}

func TestPost_Render(t *testing.T) {
	p := New(sampleTask(), time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC))
	p.Append(Section{Kind: KindIntro, Header: "Overview", Body: "A hook. Some context. The value."})
	p.Append(Section{Kind: KindIssue, Header: "Impact", Body: "Users see errors."})

	got := p.Render()

	wantFragments := []string{
		"---\ntitle: \"Check GCE Ingress Health\"\ndate: 2025-03-14\ntags: [kubernetes, gce]\n---\n",
		"# Check GCE Ingress Health\n",
		"## Tags\n\n`kubernetes`, `gce`\n",
		"## Overview\n\nA hook. Some context. The value.\n",
		"## Impact\n\nUsers see errors.\n",
		"## Source Code\n\n```robotframework\n*** Test Case ***\n",
		"## Supporting Files\n\nThis task is part of the [RunWhen Code Collection](https://github.com/example/repo/tree/main/codebundles/gce-ingress).\n",
	}
	for _, frag := range wantFragments {
		if !strings.Contains(got, frag) {
			t.Errorf("rendered post missing fragment %q\n---\n%s", frag, got)
		}
	}
}

func TestPost_RenderEscapesTemplateMarkers(t *testing.T) {
	task := sampleTask()
	task.Name = "Check ${INGRESS} Health"
	p := New(task, time.Now())

	got := p.Render()
	if !strings.Contains(got, "# Check \\${INGRESS\\} Health") {
		t.Errorf("title not escaped in header:\n%s", got)
	}
	if p.Slug != "check-ingress-health" {
		t.Errorf("Slug = %q, want check-ingress-health", p.Slug)
	}
}

func TestPost_SectionWithoutHeader(t *testing.T) {
	p := New(sampleTask(), time.Now())
	p.Append(Section{Kind: KindIntro, Body: "Bare paragraph."})

	got := p.Render()
	if !strings.Contains(got, "\nBare paragraph.\n") {
		t.Errorf("headerless section should render as bare paragraph:\n%s", got)
	}
	if strings.Contains(got, "## \n") {
		t.Errorf("headerless section must not emit an empty header:\n%s", got)
	}
}

func TestParseFrontMatter(t *testing.T) {
	p := New(sampleTask(), time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))
	fm, err := ParseFrontMatter(p.Render())
	if err != nil {
		t.Fatalf("ParseFrontMatter() error: %v", err)
	}
	if fm.Title != "Check GCE Ingress Health" {
		t.Errorf("Title = %q", fm.Title)
	}
	if fm.Date != "2025-03-14" {
		t.Errorf("Date = %q", fm.Date)
	}
	if len(fm.Tags) != 2 || fm.Tags[0] != "kubernetes" {
		t.Errorf("Tags = %v", fm.Tags)
	}

	if _, err := ParseFrontMatter("# no front matter"); err == nil {
		t.Error("expected error for content without front matter")
	}
}
