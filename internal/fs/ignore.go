package fs

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"strings"
)

// IgnoreMatcher decides which wiki pages stay out of a migration, by
// decoded page name. A pattern containing '/' is matched against the whole
// name ("Help/*"); any other pattern only against the last segment, so
// "*Template" catches "Help/PageTemplate" as well.
type IgnoreMatcher struct {
	full []string
	leaf []string
}

// NewIgnoreMatcher builds a matcher from pattern lines. Blank lines,
// '#' comments and patterns path.Match rejects are dropped.
func NewIgnoreMatcher(lines []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, line := range lines {
		p := strings.TrimSpace(line)
		if p == "" || p[0] == '#' {
			continue
		}
		if _, err := path.Match(p, ""); err != nil {
			continue
		}
		if strings.Contains(p, "/") {
			m.full = append(m.full, p)
		} else {
			m.leaf = append(m.leaf, p)
		}
	}
	return m
}

// Len returns the number of usable patterns.
func (m *IgnoreMatcher) Len() int {
	return len(m.full) + len(m.leaf)
}

// Match reports whether pageName is ignored.
func (m *IgnoreMatcher) Match(pageName string) bool {
	for _, p := range m.full {
		if ok, _ := path.Match(p, pageName); ok {
			return true
		}
	}
	if len(m.leaf) == 0 {
		return false
	}
	leaf := path.Base(pageName)
	for _, p := range m.leaf {
		if ok, _ := path.Match(p, leaf); ok {
			return true
		}
	}
	return false
}

// ParseIgnoreFile returns the lines of an ignore file, unfiltered. A file
// that does not exist yields no lines.
func ParseIgnoreFile(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file %s: %w", filename, err)
	}
	return lines, nil
}
