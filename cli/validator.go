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

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// OutputFormats are the formats accepted by OutputFormatter.
var OutputFormats = []string{"text", "table", "json", "yaml"}

// Validator validates CLI input before passing to business logic.
type Validator struct{}

// NewValidator creates a new CLI validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRunOptions validates run command options.
func (v *Validator) ValidateRunOptions(opts RunCLIOptions) error {
	if opts.ConfigFile != "" {
		if err := requireFile("--config", opts.ConfigFile); err != nil {
			return err
		}
	}
	if opts.SummaryFile != "" {
		if err := requireParentDir("--summary-file", opts.SummaryFile); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTagsOptions validates tags command options.
func (v *Validator) ValidateTagsOptions(opts TagsCLIOptions) error {
	if !slices.Contains(OutputFormats, opts.Format) {
		return fmt.Errorf("invalid output format: %s (expected one of %s)", opts.Format, strings.Join(OutputFormats, ", "))
	}
	return nil
}

// ValidateArchiveOptions validates archive command options.
func (v *Validator) ValidateArchiveOptions(opts ArchiveCLIOptions) error {
	if opts.List {
		return nil
	}
	if opts.Output == "" {
		return fmt.Errorf("--output is required unless --list is set")
	}
	if !strings.HasSuffix(opts.Output, ".tgz") && !strings.HasSuffix(opts.Output, ".tar.gz") {
		return fmt.Errorf("invalid archive name: %s (expected a .tgz or .tar.gz file)", opts.Output)
	}
	return requireParentDir("--output", opts.Output)
}

func requireFile(flag, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", flag, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s %s is a directory", flag, path)
	}
	return nil
}

func requireParentDir(flag, path string) error {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%s: directory %s does not exist", flag, dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %s is not a directory", flag, dir)
	}
	return nil
}
