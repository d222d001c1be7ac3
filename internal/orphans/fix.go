package orphans

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// LineChange is one rewritten line.
type LineChange struct {
	Line int // 1-based
	Old  string
	New  string
}

// FileChange lists the rewritten lines of one schedule file.
type FileChange struct {
	Path  string
	Lines []LineChange
}

// ApplyFixes replaces each fix's performance name with its artist name in
// the event's schedule files. Only lines of the form "artist: NAME" and
// "- NAME" (optionally quoted) are touched, so this is a best-effort textual
// edit rather than a YAML rewrite. With dryRun the changes are computed but
// not written.
func ApplyFixes(fs afero.Fs, eventDir string, fixes []Warning, dryRun bool) ([]FileChange, error) {
	if len(fixes) == 0 {
		return nil, nil
	}
	dir := filepath.Join(eventDir, "schedules")
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, fmt.Errorf("orphans: read %s: %w", dir, err)
	}

	rules := make([]rule, 0, len(fixes))
	for _, f := range fixes {
		rules = append(rules, newRule(f.PerformanceName, f.ArtistName))
	}

	var changes []FileChange
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yml" && ext != ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("orphans: read %s: %w", path, err)
		}

		lines := strings.Split(string(data), "\n")
		fc := FileChange{Path: path}
		for i, line := range lines {
			for _, r := range rules {
				if repl, ok := r.apply(line); ok {
					fc.Lines = append(fc.Lines, LineChange{Line: i + 1, Old: line, New: repl})
					lines[i] = repl
					break
				}
			}
		}
		if len(fc.Lines) == 0 {
			continue
		}
		changes = append(changes, fc)
		if dryRun {
			continue
		}
		if err := afero.WriteFile(fs, path, []byte(strings.Join(lines, "\n")), e.Mode().Perm()); err != nil {
			return nil, fmt.Errorf("orphans: write %s: %w", path, err)
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}

// rule rewrites one name in the two supported line shapes.
type rule struct {
	re   *regexp.Regexp
	with string
}

func newRule(from, to string) rule {
	name := regexp.QuoteMeta(from)
	// prefix, optional opening quote, name, matching closing quote, trailing space.
	re := regexp.MustCompile(`^(\s*(?:-\s+)?(?:artist:\s*)?)(["']?)` + name + `(["']?)(\s*(?:#.*)?)$`)
	return rule{re: re, with: to}
}

func (r rule) apply(line string) (string, bool) {
	m := r.re.FindStringSubmatch(line)
	if m == nil || m[2] != m[3] {
		return "", false
	}
	prefix := m[1]
	if !strings.Contains(prefix, "artist:") && !strings.Contains(prefix, "-") {
		return "", false
	}
	return prefix + m[2] + r.with + m[3] + m[4], true
}
