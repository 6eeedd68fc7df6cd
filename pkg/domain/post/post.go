// Package post holds the blog post domain model: the sections produced by the
// generation pipeline and the Markdown rendering of a finished post.
package post

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/runwhen-contrib/ccblogger/pkg/domain/collection"
)

// SectionKind classifies where a section came from.
type SectionKind string

const (
	KindIntro SectionKind = "intro"
	KindIssue SectionKind = "issue"
)

// Section is one rendered block of the post body. A section with an empty
// header renders as a bare paragraph.
type Section struct {
	Kind   SectionKind `json:"kind"`
	Header string      `json:"header"`
	Body   string      `json:"body"`
}

// Post is a fully assembled blog post for one task.
type Post struct {
	Task     collection.Task
	Title    string
	Slug     string
	Sections []Section
	Date     time.Time
}

// New builds an empty post for a task, deriving the escaped title and the
// output slug from the task name.
func New(task collection.Task, now time.Time) *Post {
	return &Post{
		Task:  task,
		Title: task.Title(),
		Slug:  task.Slug(),
		Date:  now,
	}
}

// Append adds a section to the post body.
func (p *Post) Append(s Section) {
	p.Sections = append(p.Sections, s)
}

// Filename returns the output file name for the post.
func (p *Post) Filename() string {
	return p.Slug + ".md"
}

// Render produces the final Markdown document: YAML front matter, title and
// tag headers, the generated sections, the task source, and the
// supporting-files link.
func (p *Post) Render() string {
	tags := strings.Join(p.Task.Tags, ", ")

	backticked := make([]string, 0, len(p.Task.Tags))
	for _, tag := range p.Task.Tags {
		backticked = append(backticked, "`"+tag+"`")
	}
	tagsDisplay := strings.Join(backticked, ", ")

	sections := make([]string, 0, len(p.Sections))
	for _, s := range p.Sections {
		if s.Header != "" {
			sections = append(sections, fmt.Sprintf("## %s\n\n%s\n", s.Header, s.Body))
		} else {
			sections = append(sections, s.Body+"\n")
		}
	}
	content := strings.Join(sections, "\n")

	var b strings.Builder
	fmt.Fprintf(&b, "---\ntitle: \"%s\"\ndate: %s\ntags: [%s]\n---\n\n", p.Title, p.Date.Format("2006-01-02"), tags)
	fmt.Fprintf(&b, "# %s\n\n", p.Title)
	fmt.Fprintf(&b, "## Tags\n\n%s\n\n", tagsDisplay)
	fmt.Fprintf(&b, "%s\n\n", content)
	fmt.Fprintf(&b, "## Source Code\n\n```robotframework\n%s\n```\n\n", p.Task.SourceCode)
	fmt.Fprintf(&b, "## Supporting Files\n\nThis task is part of the [RunWhen Code Collection](%s).\n", p.Task.SupportingFilesURL)
	return b.String()
}

// FrontMatter is the YAML header of a rendered post.
type FrontMatter struct {
	Title string   `yaml:"title"`
	Date  string   `yaml:"date"`
	Tags  []string `yaml:"tags"`
}

// ParseFrontMatter reads the YAML header back out of a rendered post. Posts
// whose titles carry escaped template markers are not valid YAML; callers
// should fall back to the filename when this fails.
func ParseFrontMatter(content string) (*FrontMatter, error) {
	if !strings.HasPrefix(content, "---\n") {
		return nil, fmt.Errorf("no front matter delimiter")
	}
	rest := content[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, fmt.Errorf("unterminated front matter")
	}

	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return nil, fmt.Errorf("failed to parse front matter: %w", err)
	}
	return &fm, nil
}
