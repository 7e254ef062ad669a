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

// Package config loads the action settings from flags, GitHub Actions inputs,
// environment variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// File and directory permissions used when the action writes to disk.
const (
	DirPermReadWriteExec = 0o755
	FilePermReadWrite    = 0o644
)

// Config represents the complete action configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log" yaml:"log" json:"log"`
	GCP     GCPConfig     `mapstructure:"gcp" yaml:"gcp" json:"gcp"`
	Image   ImageConfig   `mapstructure:"image" yaml:"image" json:"image"`
	GitHub  GitHubConfig  `mapstructure:"github" yaml:"github" json:"github"`
	Build   BuildConfig   `mapstructure:"build" yaml:"build" json:"build"`
	Trigger TriggerConfig `mapstructure:"trigger" yaml:"trigger" json:"trigger"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" json:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Format string `mapstructure:"format" yaml:"format" json:"format" jsonschema:"enum=text,enum=color,enum=json,enum=actions"`
}

// GCPConfig holds the Google Cloud project and credentials.
type GCPConfig struct {
	// ProjectID is the project that runs the build and owns the registry.
	ProjectID string `mapstructure:"project_id" yaml:"project_id" json:"project_id"`
	// ServiceAccountKey is the base64 encoded JSON key of the service account.
	ServiceAccountKey string `mapstructure:"service_account_key" yaml:"service_account_key" json:"service_account_key"`
	// Bucket receives the build input archive. Defaults to <project>_cloudbuild.
	Bucket string `mapstructure:"bucket" yaml:"bucket" json:"bucket"`
	// RegistryHost is the Container Registry host images are pushed to.
	RegistryHost string `mapstructure:"registry_host" yaml:"registry_host" json:"registry_host" jsonschema:"enum=gcr.io,enum=eu.gcr.io,enum=us.gcr.io,enum=asia.gcr.io"`
}

// ImageConfig describes the image to build and how it is tagged.
type ImageConfig struct {
	Name string `mapstructure:"name" yaml:"name" json:"name"`
	// Sources are glob patterns relative to the workspace packed into the build input.
	Sources         []string `mapstructure:"sources" yaml:"sources" json:"sources"`
	TagFormat       string   `mapstructure:"tag_format" yaml:"tag_format" json:"tag_format"`
	TagLatest       bool     `mapstructure:"tag_latest" yaml:"tag_latest" json:"tag_latest"`
	TagBranchLatest bool     `mapstructure:"tag_branch_latest" yaml:"tag_branch_latest" json:"tag_branch_latest"`
	AdditionalTags  []string `mapstructure:"additional_tags" yaml:"additional_tags" json:"additional_tags"`
}

// GitHubConfig controls reporting back to GitHub.
type GitHubConfig struct {
	Token        string             `mapstructure:"token" yaml:"token" json:"token"`
	APIURL       string             `mapstructure:"api_url" yaml:"api_url" json:"api_url"`
	Disabled     bool               `mapstructure:"disabled" yaml:"disabled" json:"disabled"`
	CommitStatus CommitStatusConfig `mapstructure:"commit_status" yaml:"commit_status" json:"commit_status"`
	Release      ReleaseConfig      `mapstructure:"release" yaml:"release" json:"release"`
}

// CommitStatusConfig controls the commit statuses created for a push build.
type CommitStatusConfig struct {
	Disabled    bool   `mapstructure:"disabled" yaml:"disabled" json:"disabled"`
	All         bool   `mapstructure:"all" yaml:"all" json:"all"`
	Description string `mapstructure:"description" yaml:"description" json:"description" jsonschema:"enum=large,enum=medium,enum=small,enum=tiny"`
	Title       string `mapstructure:"title" yaml:"title" json:"title"`
}

// ReleaseConfig controls the image list appended to release notes.
type ReleaseConfig struct {
	Disabled bool `mapstructure:"disabled" yaml:"disabled" json:"disabled"`
	All      bool `mapstructure:"all" yaml:"all" json:"all"`
}

// BuildConfig holds the timings and local paths of a build run.
type BuildConfig struct {
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval" yaml:"poll_interval" json:"poll_interval"`
	ReportInterval time.Duration `mapstructure:"report_interval" yaml:"report_interval" json:"report_interval"`
	RPCInterval    time.Duration `mapstructure:"rpc_interval" yaml:"rpc_interval" json:"rpc_interval"`
	StagingDir     string        `mapstructure:"staging_dir" yaml:"staging_dir" json:"staging_dir"`
	ArchiveName    string        `mapstructure:"archive_name" yaml:"archive_name" json:"archive_name"`
	SummaryFile    string        `mapstructure:"summary_file" yaml:"summary_file" json:"summary_file"`
}

// TriggerConfig describes the event that started the run. Inside GitHub
// Actions every field comes from the runner environment.
type TriggerConfig struct {
	Ref        string `mapstructure:"ref" yaml:"ref" json:"ref"`
	SHA        string `mapstructure:"sha" yaml:"sha" json:"sha"`
	Workspace  string `mapstructure:"workspace" yaml:"workspace" json:"workspace"`
	Repository string `mapstructure:"repository" yaml:"repository" json:"repository"`
	EventName  string `mapstructure:"event_name" yaml:"event_name" json:"event_name"`
	OutputFile string `mapstructure:"output_file" yaml:"output_file" json:"output_file"`
}

// setting maps a viper key to its action input, CLI flag and environment variables.
type setting struct {
	Key     string
	Input   string
	Default interface{}
	Usage   string
	Env     []string
}

// envNames returns the GitHub Actions input variable and the prefixed variable for an input.
func envNames(input string) []string {
	return []string{
		"INPUT_" + strings.ToUpper(input),
		"CLOUDBUILD_" + strings.ToUpper(strings.ReplaceAll(input, "-", "_")),
	}
}

var settings = []setting{
	{Key: "log.level", Input: "log-level", Default: "info"},
	{Key: "log.format", Input: "log-format", Default: ""},

	{Key: "gcp.project_id", Input: "gcp-project-id", Usage: "Google Cloud project running the build"},
	{Key: "gcp.service_account_key", Input: "gcp-service-account-key", Usage: "Base64 encoded service account key"},
	{Key: "gcp.bucket", Input: "gcp-cloud-storage-bucket", Usage: "Bucket for the build input (default <project>_cloudbuild)"},
	{Key: "gcp.registry_host", Input: "gcp-gcr-region", Default: "eu.gcr.io", Usage: "Container Registry host"},

	{Key: "image.name", Input: "image-name", Usage: "Name of the image to build"},
	{Key: "image.sources", Input: "image-sources", Default: []string{}, Usage: "Comma separated glob patterns packed into the build input"},
	{Key: "image.tag_format", Input: "image-tag-format", Default: DefaultTagFormat, Usage: "Template for the primary tag of branch builds"},
	{Key: "image.tag_latest", Input: "image-tag-latest", Default: false, Usage: "Also tag the image as latest"},
	{Key: "image.tag_branch_latest", Input: "image-tag-branch-latest", Default: false, Usage: "Also tag branch builds as <branch>-latest"},
	{Key: "image.additional_tags", Input: "image-tag-additional-tags", Default: []string{}, Usage: "Comma separated extra tags"},

	{Key: "github.token", Input: "github-token", Usage: "Token used to report to GitHub"},
	{Key: "github.api_url", Input: "github-api-url", Env: []string{"GITHUB_API_URL"}},
	{Key: "github.disabled", Input: "github-disabled", Default: false, Usage: "Skip all GitHub reporting"},
	{Key: "github.commit_status.disabled", Input: "github-commit-status-disabled", Default: false, Usage: "Skip commit statuses"},
	{Key: "github.commit_status.all", Input: "github-commit-status-all", Default: false, Usage: "Create a commit status for every tag"},
	{Key: "github.commit_status.description", Input: "github-commit-status-description", Default: "small", Usage: "Image name length in commit statuses (large, medium, small, tiny)"},
	{Key: "github.commit_status.title", Input: "github-commit-status-title", Default: "Docker Image", Usage: "Context of the commit status"},
	{Key: "github.release.disabled", Input: "github-release-information-disabled", Default: false, Usage: "Skip release notes"},
	{Key: "github.release.all", Input: "github-release-information-all", Default: false, Usage: "List every tag in release notes"},

	{Key: "build.timeout", Input: "build-timeout", Default: "1h", Usage: "Maximum time to wait for the build"},
	{Key: "build.poll_interval", Input: "build-poll-interval", Default: "100ms"},
	{Key: "build.report_interval", Input: "build-report-interval", Default: "5s"},
	{Key: "build.rpc_interval", Input: "build-rpc-interval", Default: "2s"},
	{Key: "build.staging_dir", Input: "build-staging-dir", Default: "cloud-build-input"},
	{Key: "build.archive_name", Input: "build-archive-name", Default: "build.tgz"},
	{Key: "build.summary_file", Input: "summary-file", Usage: "Write a YAML summary of the build to this file"},

	{Key: "trigger.ref", Input: "ref", Env: []string{"GITHUB_REF"}, Usage: "Git ref that triggered the build (default GITHUB_REF or HEAD)"},
	{Key: "trigger.sha", Input: "sha", Env: []string{"GITHUB_SHA"}, Usage: "Commit SHA (default GITHUB_SHA or HEAD)"},
	{Key: "trigger.workspace", Input: "workspace", Default: ".", Env: []string{"GITHUB_WORKSPACE"}, Usage: "Directory the sources are resolved against"},
	{Key: "trigger.repository", Input: "repository", Env: []string{"GITHUB_REPOSITORY"}, Usage: "owner/name of the GitHub repository"},
	{Key: "trigger.event_name", Input: "event-name", Env: []string{"GITHUB_EVENT_NAME"}},
	{Key: "trigger.output_file", Input: "output-file", Env: []string{"GITHUB_OUTPUT"}},
}

// DefaultTagFormat is the primary tag template for branch builds.
const DefaultTagFormat = "$BRANCH-$SHA-$YYYY.$MM.$DD-$HH.$mm.$SS"

// NewViper creates a Viper instance with the config file search paths,
// defaults and environment bindings of the action.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	for _, dir := range GetConfigDirs() {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	for _, s := range settings {
		if s.Default != nil {
			v.SetDefault(s.Key, s.Default)
		}
		env := s.Env
		if env == nil {
			env = envNames(s.Input)
		}
		_ = v.BindEnv(append([]string{s.Key}, env...)...)
	}

	if os.Getenv("GITHUB_ACTIONS") == "true" {
		v.SetDefault("log.format", "actions")
	} else {
		v.SetDefault("log.format", "color")
	}

	return v
}

// RegisterFlags adds a flag for every setting with a usage string that is
// not already defined on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	for _, s := range settings {
		if s.Usage == "" || fs.Lookup(s.Input) != nil {
			continue
		}
		switch d := s.Default.(type) {
		case bool:
			fs.Bool(s.Input, d, s.Usage)
		case []string:
			fs.StringSlice(s.Input, nil, s.Usage)
		default:
			fs.String(s.Input, "", s.Usage)
		}
	}
}

// BindFlags binds every known flag found in the flag sets to its viper key.
// Unchanged flags keep the lower precedence sources in effect.
func BindFlags(v *viper.Viper, sets ...*pflag.FlagSet) error {
	for _, s := range settings {
		for _, fs := range sets {
			if fs == nil {
				continue
			}
			f := fs.Lookup(s.Input)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(s.Key, f); err != nil {
				return fmt.Errorf("failed to bind %s flag: %w", s.Input, err)
			}
			break
		}
	}
	return nil
}

// Load reads the config file (path, or the first file found on the search
// path) and returns the merged configuration. A missing config file is not
// an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	normalizeBools(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDerivedDefaults(&cfg)
	return &cfg, nil
}

// normalizeBools applies the strict boolean semantics of action inputs:
// only "true" and "false" (any case) are recognized; every other value
// falls back to the default.
func normalizeBools(v *viper.Viper) {
	for _, s := range settings {
		def, ok := s.Default.(bool)
		if !ok {
			continue
		}
		raw, isString := v.Get(s.Key).(string)
		if !isString {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true":
			v.Set(s.Key, true)
		case "false":
			v.Set(s.Key, false)
		default:
			v.Set(s.Key, def)
		}
	}
}

func applyDerivedDefaults(cfg *Config) {
	if cfg.GCP.Bucket == "" && cfg.GCP.ProjectID != "" {
		cfg.GCP.Bucket = cfg.GCP.ProjectID + "_cloudbuild"
	}
	if cfg.Image.TagFormat == "" {
		cfg.Image.TagFormat = DefaultTagFormat
	}
	cfg.Image.Sources = dropEmpty(cfg.Image.Sources)
	cfg.Image.AdditionalTags = dropEmpty(cfg.Image.AdditionalTags)
}

func dropEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value != "" {
			out = append(out, value)
		}
	}
	return out
}

// Settings returns the effective settings as flat key/value pairs with
// sensitive values redacted by the supplied function.
func Settings(v *viper.Viper, redact func(key, value string) string) map[string]string {
	out := make(map[string]string, len(settings))
	for _, s := range settings {
		value := fmt.Sprint(v.Get(s.Key))
		if redact != nil {
			value = redact(s.Key, value)
		}
		out[s.Key] = value
	}
	return out
}
