package router

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vango-dev/fsroute/internal/dev"
)

// DefaultExtension is the source extension of route files.
const DefaultExtension = ".go"

// Scanner lists route files under a root directory.
type Scanner struct {
	rootDir string
}

// NewScanner creates a new route scanner.
func NewScanner(rootDir string) *Scanner {
	return &Scanner{rootDir: rootDir}
}

// ScanOptions configures scanning behavior.
type ScanOptions struct {
	// Extension is the source file suffix (default ".go").
	Extension string

	// Ignore holds patterns for files and directories to skip, matched
	// relative to the root (see dev.MatchIgnore).
	Ignore []string
}

// Scan returns the route files under the root in lexical order.
func (s *Scanner) Scan() ([]RouteFile, error) {
	return s.ScanWithOptions(ScanOptions{})
}

// ScanWithOptions returns the route files under the root in lexical order.
// Test files (_test.go) are always skipped.
func (s *Scanner) ScanWithOptions(opts ScanOptions) ([]RouteFile, error) {
	ext := opts.Extension
	if ext == "" {
		ext = DefaultExtension
	}

	info, err := os.Stat(s.rootDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRootNotFound, s.rootDir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrRootNotFound, s.rootDir)
	}

	var files []RouteFile

	err = filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(s.rootDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && dev.MatchIgnore(rel, opts.Ignore) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(path, ext) {
			return nil
		}
		if strings.HasSuffix(path, "_test.go") {
			return nil
		}
		if dev.MatchIgnore(rel, opts.Ignore) {
			return nil
		}

		files = append(files, RouteFile{Path: path, Rel: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", s.rootDir, err)
	}

	return files, nil
}
