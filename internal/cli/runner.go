// Package cli orchestrates the scan and generate pipeline behind the
// dendrite command.
package cli

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/dendrite/internal/errors"
	"github.com/toyz/dendrite/internal/generator"
	"github.com/toyz/dendrite/internal/scanner"
	"github.com/toyz/dendrite/internal/utils"
)

// Summary reports what a generation run did
type Summary struct {
	ModulePath        string
	PackagesProcessed int
	SubscribersFound  int
	MembersFound      int
	GeneratedFiles    []string
}

// Runner drives scanning and generation over a set of directory patterns
type Runner struct {
	scanner     *scanner.Scanner
	generator   *generator.Generator
	diagnostics *utils.DiagnosticSystem
}

// NewRunner creates a Runner reporting through the given diagnostics
func NewRunner(diagnostics *utils.DiagnosticSystem) *Runner {
	return &Runner{
		scanner:     scanner.New(),
		generator:   generator.New(),
		diagnostics: diagnostics,
	}
}

// Run scans every matched directory and writes a registration file into each
// package that declares subscribers. Directory patterns follow the Go tool
// convention: "./internal/..." walks recursively, a plain path matches just
// that directory.
func (r *Runner) Run(patterns []string) (*Summary, error) {
	dirs, err := expandPatterns(patterns)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	if len(dirs) > 0 {
		// Generated registrations import the runtime by module path, so the
		// scan must run inside a module.
		goModPath, err := utils.FindGoMod(dirs[0])
		if err != nil {
			return nil, errors.Wrapf(errors.FileSystemErrorCode, err, "dendrite must run inside a Go module")
		}
		summary.ModulePath, err = utils.ModuleName(goModPath)
		if err != nil {
			return nil, errors.Wrapf(errors.FileSystemErrorCode, err, "cannot resolve module path")
		}
		r.diagnostics.Verbose("module: %s", summary.ModulePath)
	}

	for _, dir := range dirs {
		r.diagnostics.Verbose("scanning %s", dir)
		metadata, err := r.scanner.ScanDirectory(dir)
		if err != nil {
			return nil, err
		}
		summary.PackagesProcessed++
		if !metadata.HasSubscribers() {
			continue
		}

		summary.SubscribersFound += len(metadata.Subscribers)
		for _, subscriber := range metadata.Subscribers {
			summary.MembersFound += len(subscriber.Members)
			r.diagnostics.List("%s (%d services)", subscriber.StructName, len(subscriber.Members))
		}

		source, err := r.generator.Generate(metadata)
		if err != nil {
			return nil, err
		}

		target := filepath.Join(dir, scanner.GeneratedFileName)
		if err := os.WriteFile(target, source, 0o644); err != nil {
			return nil, errors.Wrapf(errors.FileSystemErrorCode, err, "failed to write %s", target)
		}
		summary.GeneratedFiles = append(summary.GeneratedFiles, target)
		r.diagnostics.Success("wrote %s", target)
	}

	return summary, nil
}

// Clean removes every generated registration file under the matched
// directories and returns the removed paths.
func (r *Runner) Clean(patterns []string) ([]string, error) {
	dirs, err := expandPatterns(patterns)
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, dir := range dirs {
		target := filepath.Join(dir, scanner.GeneratedFileName)
		if _, err := os.Stat(target); err != nil {
			continue
		}
		if err := os.Remove(target); err != nil {
			return removed, errors.Wrapf(errors.FileSystemErrorCode, err, "failed to remove %s", target)
		}
		removed = append(removed, target)
		r.diagnostics.Success("removed %s", target)
	}
	return removed, nil
}

// expandPatterns resolves directory arguments, expanding "/..." suffixes
// recursively. Hidden directories, vendor, testdata and underscore-prefixed
// directories are skipped during recursive walks.
func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string

	add := func(dir string) {
		clean := filepath.Clean(dir)
		if !seen[clean] {
			seen[clean] = true
			dirs = append(dirs, clean)
		}
	}

	for _, pattern := range patterns {
		if root, recursive := strings.CutSuffix(pattern, "/..."); recursive {
			if root == "" {
				root = "."
			}
			err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() {
					return nil
				}
				name := d.Name()
				if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
					name == "vendor" || name == "testdata") {
					return filepath.SkipDir
				}
				add(path)
				return nil
			})
			if err != nil {
				return nil, errors.Wrapf(errors.FileSystemErrorCode, err, "failed to walk %s", root)
			}
			continue
		}

		info, err := os.Stat(pattern)
		if err != nil {
			return nil, errors.Wrapf(errors.FileSystemErrorCode, err, "cannot access %s", pattern)
		}
		if !info.IsDir() {
			return nil, errors.Newf(errors.FileSystemErrorCode, "%s is not a directory", pattern)
		}
		add(pattern)
	}

	sort.Strings(dirs)
	return dirs, nil
}
