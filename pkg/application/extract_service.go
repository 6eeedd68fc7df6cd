package application

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/runwhen-contrib/ccblogger/pkg/domain/collection"
)

// ExtractService turns a checked-out code collection into task records.
type ExtractService struct{}

func NewExtractService() *ExtractService {
	return &ExtractService{}
}

// ExtractTasks walks codebundles/*/runbook.robot under root and returns the
// tasks they define. Bundles are visited in lexical order so repeated runs
// over the same checkout produce the same slice. supportingBase is the web
// URL of the codebundles tree, e.g.
// https://github.com/org/repo/tree/main/codebundles.
func (s *ExtractService) ExtractTasks(root string, supportingBase string) ([]collection.Task, error) {
	bundlesDir := filepath.Join(root, "codebundles")

	entries, err := os.ReadDir(bundlesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []collection.Task{}, nil
		}
		return nil, fmt.Errorf("failed to read codebundles directory: %w", err)
	}

	var bundles []string
	for _, entry := range entries {
		if entry.IsDir() {
			bundles = append(bundles, entry.Name())
		}
	}
	sort.Strings(bundles)

	tasks := []collection.Task{}
	for _, bundle := range bundles {
		bundleDir := filepath.Join(bundlesDir, bundle)
		runbook := filepath.Join(bundleDir, "runbook.robot")

		data, err := os.ReadFile(runbook) // #nosec G304 -- path is rooted in the checkout directory
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", runbook, err)
			continue
		}

		for _, parsed := range parseRobotSource(string(data)) {
			task := collection.Task{
				Name:               parsed.Name,
				Tags:               parsed.Tags,
				Documentation:      parsed.Documentation,
				SourceCode:         parsed.sourceCode(),
				Bundle:             bundle,
				SupportingFilesURL: supportingBase + "/" + bundle,
				SupportingFiles:    map[string]string{},
			}
			s.attachSupportingFiles(&task, bundleDir)
			tasks = append(tasks, task)
		}
	}

	return tasks, nil
}

// attachSupportingFiles reads the bash files the task's source references
// into the task record. Missing files are skipped.
func (s *ExtractService) attachSupportingFiles(task *collection.Task, bundleDir string) {
	for _, ref := range task.BashFileReferences() {
		name := normalizeScriptRef(ref)
		if name == "" {
			continue
		}

		path := filepath.Join(bundleDir, name)
		data, err := os.ReadFile(path) // #nosec G304 -- name is reduced to a base name inside the bundle
		if err != nil {
			continue
		}
		task.SupportingFiles[name] = string(data)
	}
}

// normalizeScriptRef reduces a "Run Bash File" argument to a plain file name.
// Runbooks pass scripts as bash_file=foo.sh or ${CURDIR}/foo.sh.
func normalizeScriptRef(ref string) string {
	name := ref
	if i := strings.IndexByte(name, '='); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimPrefix(name, "${CURDIR}/")
	name = filepath.Base(name)
	if name == "." || name == "/" || strings.HasPrefix(name, "$") {
		return ""
	}
	return name
}
