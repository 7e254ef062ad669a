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

package config

import (
	"fmt"
	"slices"
	"strings"
)

// RegistryHosts lists the Container Registry hosts images can be pushed to.
var RegistryHosts = []string{"gcr.io", "eu.gcr.io", "us.gcr.io", "asia.gcr.io"}

// DescriptionSizes lists the image name lengths accepted for commit statuses.
var DescriptionSizes = []string{"large", "medium", "small", "tiny"}

// ValidationError collects every problem found in a configuration.
type ValidationError struct {
	Problems []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "reading input parameters failed: " + e.Problems[0]
	}
	return "reading input parameters failed:\n  - " + strings.Join(e.Problems, "\n  - ")
}

func (e *ValidationError) add(format string, args ...interface{}) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Validate checks a loaded configuration for a full build run and returns a
// *ValidationError listing every problem, or nil.
func Validate(cfg *Config) error {
	verr := &ValidationError{}

	requireValue(verr, "gcp-project-id", cfg.GCP.ProjectID)
	requireValue(verr, "gcp-service-account-key", cfg.GCP.ServiceAccountKey)
	requireValue(verr, "image-name", cfg.Image.Name)
	if len(cfg.Image.Sources) == 0 {
		verr.add("input required and not supplied: image-sources")
	}

	validateTagging(verr, cfg)

	if !slices.Contains(RegistryHosts, cfg.GCP.RegistryHost) {
		verr.add("%s", invalidEnumArgument("gcp-gcr-region", RegistryHosts, cfg.GCP.RegistryHost))
	}

	if cfg.GitHub.Token == "" && !cfg.GitHub.Disabled {
		verr.add("you must either set github-disabled to true or set github-token")
	}
	if !cfg.GitHub.Disabled && !strings.Contains(cfg.Trigger.Repository, "/") {
		verr.add("invalid value passed for argument repository. Expected owner/name, but got %q", cfg.Trigger.Repository)
	}

	if !slices.Contains(DescriptionSizes, cfg.GitHub.CommitStatus.Description) {
		verr.add("%s", invalidEnumArgument("github-commit-status-description", DescriptionSizes, cfg.GitHub.CommitStatus.Description))
	}
	if cfg.GitHub.CommitStatus.Title == "" {
		verr.add("invalid value passed for argument github-commit-status-title. Expected non-empty string, but got empty string")
	}

	validateBuild(verr, cfg)

	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}

// ValidateTagging checks only the settings needed to compute image tags.
func ValidateTagging(cfg *Config) error {
	verr := &ValidationError{}
	validateTagging(verr, cfg)
	if len(verr.Problems) > 0 {
		return verr
	}
	return nil
}

func validateTagging(verr *ValidationError, cfg *Config) {
	if cfg.Trigger.Ref == "" {
		verr.add("git ref is unknown: set GITHUB_REF or run inside a git repository")
	}
	if cfg.Image.TagFormat == "" {
		verr.add("invalid value passed for argument image-tag-format. Expected non-empty string, but got empty string")
	}
}

func validateBuild(verr *ValidationError, cfg *Config) {
	if cfg.Build.Timeout <= 0 {
		verr.add("invalid value passed for argument build-timeout. Expected a positive duration, but got %s", cfg.Build.Timeout)
	}
	if cfg.Build.PollInterval <= 0 {
		verr.add("invalid value passed for argument build-poll-interval. Expected a positive duration, but got %s", cfg.Build.PollInterval)
	}
	if cfg.Build.ReportInterval <= 0 {
		verr.add("invalid value passed for argument build-report-interval. Expected a positive duration, but got %s", cfg.Build.ReportInterval)
	}
	if cfg.Build.RPCInterval <= 0 {
		verr.add("invalid value passed for argument build-rpc-interval. Expected a positive duration, but got %s", cfg.Build.RPCInterval)
	}
	if cfg.Build.StagingDir == "" || strings.ContainsAny(cfg.Build.StagingDir, `/\`) {
		verr.add("invalid value passed for argument build-staging-dir. Expected a plain directory name, but got %q", cfg.Build.StagingDir)
	}
}

func requireValue(verr *ValidationError, name, value string) {
	if value == "" {
		verr.add("input required and not supplied: %s", name)
	}
}

func invalidEnumArgument(argument string, expected []string, actual string) string {
	return fmt.Sprintf("invalid value passed for argument %s. Expected one of %s, but got %s",
		argument, strings.Join(expected, ", "), actual)
}
