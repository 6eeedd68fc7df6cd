// Package collection holds the domain model for CodeCollection repositories:
// the task records extracted from Robot Framework runbooks and the helpers
// that derive titles, slugs, and supporting-file references from them.
package collection

import (
	"regexp"
	"strings"
)

// Task is one troubleshooting task extracted from a codebundle runbook.
// It is immutable after extraction; one Task drives one blog post.
type Task struct {
	Name               string            `json:"name" yaml:"name"`
	Tags               []string          `json:"tags" yaml:"tags"`
	Documentation      string            `json:"documentation" yaml:"documentation"`
	SourceCode         string            `json:"source_code" yaml:"source_code"`
	Bundle             string            `json:"bundle,omitempty" yaml:"bundle,omitempty"`
	SupportingFilesURL string            `json:"supporting_files_url,omitempty" yaml:"supporting_files_url,omitempty"`
	SupportingFiles    map[string]string `json:"supporting_files,omitempty" yaml:"supporting_files,omitempty"`
}

// HasTag reports whether the task carries the exact tag.
// Comparison is case-sensitive membership, not substring.
func (t Task) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// Title returns the task name with template markers escaped so they survive
// front matter and Markdown headers ("${" becomes "\${", "}" becomes "\}").
func (t Task) Title() string {
	title := strings.ReplaceAll(t.Name, "${", "\\${")
	return strings.ReplaceAll(title, "}", "\\}")
}

// Slug returns the output filename stem for the task.
func (t Task) Slug() string {
	return Slugify(t.Name)
}

var (
	slugStripPattern    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapsePattern = regexp.MustCompile(`[-\s]+`)
)

// Slugify lowercases a task name, drops everything outside word characters,
// whitespace, and hyphens, and collapses separator runs into single hyphens.
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugStripPattern.ReplaceAllString(slug, "")
	slug = slugCollapsePattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-_")
}

// FilterByTag returns the tasks carrying the tag. An empty tag returns the
// input unchanged. Zero matches yields an empty slice, never an error.
func FilterByTag(tasks []Task, tag string) []Task {
	if tag == "" {
		return tasks
	}
	filtered := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.HasTag(tag) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// Limit caps the task list at n entries. A negative n means no cap; zero
// yields an empty slice.
func Limit(tasks []Task, n int) []Task {
	if n < 0 || n >= len(tasks) {
		return tasks
	}
	return tasks[:n]
}

var bashFilePattern = regexp.MustCompile(`(?i)Run\s+Bash\s+File\s+(\S+)`)

// BashFileReferences lists the bash files the task's source invokes via the
// "Run Bash File" keyword.
func (t Task) BashFileReferences() []string {
	return BashFileReferences(t.SourceCode)
}

// BashFileReferences lists the bash files a runbook source invokes via the
// "Run Bash File" keyword, in order of first appearance.
func BashFileReferences(source string) []string {
	var files []string
	seen := make(map[string]bool)
	for _, m := range bashFilePattern.FindAllStringSubmatch(source, -1) {
		name := m[1]
		if !seen[name] {
			seen[name] = true
			files = append(files, name)
		}
	}
	return files
}
