package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"
)

// Parse validates and decodes manifest JSON. Entry paths are normalized to
// forward slashes without leading "./" or "/". Entries without a path are
// kept so callers can report them; duplicate paths are rejected.
func Parse(data []byte) (*Document, error) {
	result, err := Validate(data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, result
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}

	seen := make(map[string]int, len(doc.Files))
	for i := range doc.Files {
		doc.Files[i].Path = NormalizePath(doc.Files[i].Path)
		p := doc.Files[i].Path
		if p == "" {
			continue
		}
		if j, dup := seen[p]; dup {
			return nil, fmt.Errorf("duplicate manifest path %q (entries %d and %d)", p, j, i)
		}
		seen[p] = i
	}

	return &doc, nil
}

// ParseFile reads and parses a manifest from disk.
func ParseFile(filePath string) (*Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", filePath, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", filePath, err)
	}
	return doc, nil
}

// NormalizePath converts a manifest path to its canonical relative form.
func NormalizePath(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, `\`, "/"))
	if p == "" {
		return ""
	}
	p = path.Clean(p)
	p = strings.TrimLeft(p, "/")
	if p == "." {
		return ""
	}
	return p
}
