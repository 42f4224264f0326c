package compiler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var importPattern = regexp.MustCompile(`(?m)^\s*import\s+(?:[^;]*?\s+from\s+)?["']([^"']+)["']\s*;`)

// sourceSet collects Solidity sources keyed by source name, the path solc and
// explorers refer to them by ("contracts/Game.sol", "@chainlink/...").
type sourceSet struct {
	projectDir   string
	libraryPaths []string
	sources      map[string]string
}

func collectSources(projectDir, sourcesDir string, libraryPaths []string) (map[string]string, error) {
	set := &sourceSet{
		projectDir:   projectDir,
		libraryPaths: libraryPaths,
		sources:      make(map[string]string),
	}

	root := filepath.Join(projectDir, sourcesDir)
	var entries []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".sol") {
			rel, err := filepath.Rel(projectDir, p)
			if err != nil {
				return err
			}
			entries = append(entries, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan sources in %s: %w", root, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no Solidity sources found in %s", root)
	}

	sort.Strings(entries)
	for _, sourceName := range entries {
		if err := set.add(sourceName, ""); err != nil {
			return nil, err
		}
	}

	return set.sources, nil
}

func (s *sourceSet) add(sourceName, importedBy string) error {
	if _, ok := s.sources[sourceName]; ok {
		return nil
	}

	content, err := s.read(sourceName)
	if err != nil {
		if importedBy != "" {
			return fmt.Errorf("cannot resolve import '%s' in %s: %w", sourceName, importedBy, err)
		}
		return err
	}
	s.sources[sourceName] = content

	for _, match := range importPattern.FindAllStringSubmatch(content, -1) {
		if err := s.add(resolveImport(sourceName, match[1]), sourceName); err != nil {
			return err
		}
	}

	return nil
}

// read looks sourceName up in the project first, then in each library path.
func (s *sourceSet) read(sourceName string) (string, error) {
	candidates := []string{filepath.Join(s.projectDir, filepath.FromSlash(sourceName))}
	for _, lib := range s.libraryPaths {
		candidates = append(candidates, filepath.Join(s.projectDir, lib, filepath.FromSlash(sourceName)))
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to read %s: %w", candidate, err)
		}
	}

	return "", fmt.Errorf("%s not found in project or library paths %v", sourceName, s.libraryPaths)
}

func resolveImport(importer, imported string) string {
	if strings.HasPrefix(imported, "./") || strings.HasPrefix(imported, "../") {
		return path.Join(path.Dir(importer), imported)
	}
	return imported
}
