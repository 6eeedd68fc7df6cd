package application

import (
	"regexp"
	"strings"
)

// robotTest is one test case (or RPA task) parsed from a runbook file.
type robotTest struct {
	Name          string
	Documentation string
	Tags          []string
	Steps         []string
}

var (
	sectionHeader = regexp.MustCompile(`^\*{3}\s*([^*]+?)\s*\*+\s*$`)
	cellSeparator = regexp.MustCompile(`\t+| {2,}`)
)

// sourceCode reconstructs a canonical Robot Framework rendition of the test,
// with cells joined by four spaces.
func (t robotTest) sourceCode() string {
	if len(t.Steps) == 0 {
		return "No source code available"
	}

	lines := []string{"*** Test Case ***", t.Name}
	if t.Documentation != "" {
		lines = append(lines, "    [Documentation]    "+t.Documentation)
	}
	if len(t.Tags) > 0 {
		lines = append(lines, "    [Tags]    "+strings.Join(t.Tags, "    "))
	}
	lines = append(lines, t.Steps...)

	return strings.Join(lines, "\n")
}

// parseRobotSource extracts the test cases from Robot Framework source text.
// It understands the subset of the syntax runbooks use: *** Test Cases *** and
// *** Tasks *** sections, [Documentation] and [Tags] settings, line
// continuations, and plain keyword calls. Other sections and settings are
// ignored.
func parseRobotSource(src string) []robotTest {
	var (
		tests     []robotTest
		current   *robotTest
		inTests   bool
		lastField string
	)

	flush := func() {
		if current != nil {
			tests = append(tests, *current)
			current = nil
		}
	}

	for _, raw := range strings.Split(src, "\n") {
		line := strings.TrimRight(raw, " \t\r")
		if line == "" {
			continue
		}

		if m := sectionHeader.FindStringSubmatch(line); m != nil {
			flush()
			section := strings.ToLower(strings.TrimSpace(m[1]))
			inTests = section == "test cases" || section == "test case" || section == "tasks" || section == "task"
			lastField = ""
			continue
		}

		if !inTests {
			continue
		}

		indented := line[0] == ' ' || line[0] == '\t'
		cells := splitCells(strings.TrimLeft(line, " \t"))
		if len(cells) == 0 {
			continue
		}

		if !indented {
			flush()
			current = &robotTest{Name: cells[0]}
			lastField = ""
			continue
		}

		if current == nil {
			continue
		}

		switch {
		case cells[0] == "...":
			appendContinuation(current, lastField, cells[1:])
		case strings.EqualFold(cells[0], "[Documentation]"):
			current.Documentation = strings.Join(cells[1:], " ")
			lastField = "documentation"
		case strings.EqualFold(cells[0], "[Tags]"):
			current.Tags = append(current.Tags, cells[1:]...)
			lastField = "tags"
		case strings.HasPrefix(cells[0], "["):
			// Other settings ([Setup], [Teardown], ...) are not part of
			// the reconstructed source.
			lastField = "ignored"
		default:
			current.Steps = append(current.Steps, "    "+strings.Join(cells, "    "))
			lastField = "step"
		}
	}
	flush()

	return tests
}

func appendContinuation(t *robotTest, field string, cells []string) {
	if len(cells) == 0 {
		return
	}
	switch field {
	case "documentation":
		t.Documentation += "\n" + strings.Join(cells, " ")
	case "tags":
		t.Tags = append(t.Tags, cells...)
	case "step":
		if n := len(t.Steps); n > 0 {
			t.Steps[n-1] += "    " + strings.Join(cells, "    ")
		}
	}
}

// splitCells splits a Robot Framework data row into cells on tab or two or
// more spaces, dropping anything after a comment cell.
func splitCells(line string) []string {
	var cells []string
	for _, cell := range cellSeparator.Split(line, -1) {
		if cell == "" {
			continue
		}
		if strings.HasPrefix(cell, "#") {
			break
		}
		cells = append(cells, cell)
	}
	return cells
}
