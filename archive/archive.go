/*
Copyright © 2026 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

// Package archive packs the files selected by glob patterns into the
// gzip-compressed tarball that Cloud Build uses as build input.
package archive

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mholt/archiver/v3"

	"github.com/cowdogmoo/cloudbuild-action/config"
	"github.com/cowdogmoo/cloudbuild-action/errors"
	"github.com/cowdogmoo/cloudbuild-action/logging"
)

// Builder creates build input archives from files below BaseDir. Nothing
// outside BaseDir is ever included.
type Builder struct {
	BaseDir string
}

// New returns a Builder rooted at the absolute form of baseDir.
func New(baseDir string) (*Builder, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", baseDir, err)
	}
	return &Builder{BaseDir: filepath.Clean(abs)}, nil
}

// Resolve expands the patterns and returns the matches as paths relative to
// BaseDir, in pattern order. Matches outside BaseDir are dropped and
// duplicates across patterns are kept.
func (b *Builder) Resolve(ctx context.Context, patterns []string) ([]string, error) {
	var sources []string

	for _, pattern := range patterns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logging.DebugContext(ctx, "Got the following pattern with base %s: %s", b.BaseDir, pattern)

		var kept []string
		var err error
		if rel, ok := baseRelative(pattern); ok {
			kept, err = b.globBase(rel)
		} else {
			kept, err = b.globPath(ctx, pattern)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}

		logging.DebugContext(ctx, "Found the following matching files:\n%s", strings.Join(kept, "\n"))
		sources = append(sources, kept...)
	}

	return sources, nil
}

// baseRelative returns pattern in slash form when it is relative and stays
// below the base directory.
func baseRelative(pattern string) (string, bool) {
	if filepath.IsAbs(pattern) {
		return "", false
	}
	rel := path.Clean(filepath.ToSlash(pattern))
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

// globBase matches a base relative pattern inside BaseDir. The base directory
// path itself is never interpreted as a pattern.
func (b *Builder) globBase(pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(b.BaseDir), pattern, doublestar.WithNoFollow())
	if err != nil {
		return nil, err
	}

	var kept []string
	for _, match := range matches {
		if match == "." {
			continue
		}
		kept = append(kept, filepath.FromSlash(match))
	}
	return kept, nil
}

// globPath matches an absolute or escaping pattern against the file system
// and keeps the matches below BaseDir.
func (b *Builder) globPath(ctx context.Context, pattern string) ([]string, error) {
	anchored := pattern
	if !filepath.IsAbs(anchored) {
		anchored = filepath.Join(b.BaseDir, pattern)
	}

	matches, err := doublestar.FilepathGlob(anchored, doublestar.WithNoFollow())
	if err != nil {
		return nil, err
	}

	prefix := b.BaseDir + string(filepath.Separator)
	var kept []string
	for _, match := range matches {
		match = filepath.Clean(match)
		if !strings.HasPrefix(match, prefix) {
			logging.DebugContext(ctx, "Skipping %s: outside of %s", match, b.BaseDir)
			continue
		}
		kept = append(kept, strings.TrimPrefix(match, prefix))
	}
	return kept, nil
}

// Build resolves patterns, copies every match flattened to its base name into
// stagingDir and writes a tar.gz of stagingDir to archivePath. All archive
// members are prefixed with the base name of stagingDir. The staging
// directory is removed on return, whether or not the build succeeded.
func (b *Builder) Build(ctx context.Context, patterns []string, archivePath, stagingDir string) (retErr error) {
	defer func() {
		if retErr != nil {
			retErr = errors.Wrap("create archive", archivePath, retErr)
		}
	}()

	sources, err := b.Resolve(ctx, patterns)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		logging.WarnContext(ctx, "No files matched the source patterns %v below %s", patterns, b.BaseDir)
	}

	if err := os.RemoveAll(stagingDir); err != nil {
		return fmt.Errorf("failed to reset staging directory: %w", err)
	}
	if err := os.MkdirAll(stagingDir, config.DirPermReadWriteExec); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(stagingDir); err != nil {
			logging.WarnContext(ctx, "Failed to remove staging directory %s: %v", stagingDir, err)
		}
	}()

	logging.DebugContext(ctx, "Copying all files and folders to %s", stagingDir)
	for _, rel := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		target := filepath.Join(stagingDir, filepath.Base(rel))
		logging.DebugContext(ctx, "Copying %s to %s", rel, target)
		if err := copyEntry(ctx, filepath.Join(b.BaseDir, rel), target); err != nil {
			return fmt.Errorf("failed to copy %s: %w", rel, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	tgz := archiver.NewTarGz()
	tgz.OverwriteExisting = true
	if err := tgz.Archive([]string{stagingDir}, archivePath); err != nil {
		return err
	}

	return nil
}
