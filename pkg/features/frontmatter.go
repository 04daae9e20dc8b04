package features

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nojolabs/nojo/pkg/types"
)

// frontmatter is the YAML header the host assistant expects at the top of
// skill and subagent markdown files.
type frontmatter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// checkFrontmatter parses the YAML frontmatter of a markdown component and
// reports missing or garbled metadata. The assistant silently ignores
// components with bad frontmatter, so surfacing this at validate time is
// the only warning the user gets.
func checkFrontmatter(fs types.FS, feature, absPath string) []Issue {
	data, err := fs.ReadFile(absPath)
	if err != nil {
		return []Issue{{Feature: feature, Path: absPath, Message: "unreadable: " + err.Error()}}
	}

	raw, ok := splitFrontmatter(string(data))
	if !ok {
		return []Issue{{Feature: feature, Path: absPath, Message: "missing YAML frontmatter"}}
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
		return []Issue{{Feature: feature, Path: absPath, Message: "malformed YAML frontmatter: " + err.Error()}}
	}

	var issues []Issue
	if strings.TrimSpace(fm.Name) == "" {
		issues = append(issues, Issue{Feature: feature, Path: absPath, Message: "frontmatter is missing name"})
	}
	if strings.TrimSpace(fm.Description) == "" {
		issues = append(issues, Issue{Feature: feature, Path: absPath, Message: "frontmatter is missing description"})
	}
	return issues
}

// splitFrontmatter extracts the YAML block between the leading "---"
// fences. Returns ok=false when the document has no frontmatter.
func splitFrontmatter(doc string) (string, bool) {
	doc = strings.TrimPrefix(doc, "\ufeff") // strip BOM
	if !strings.HasPrefix(doc, "---\n") && doc != "---" {
		return "", false
	}
	rest := strings.TrimPrefix(doc, "---\n")
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}
