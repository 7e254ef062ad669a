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

// Package runner executes a complete action run: it archives the sources,
// uploads them, builds the image on Cloud Build and reports the result to
// GitHub.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/cowdogmoo/cloudbuild-action/archive"
	"github.com/cowdogmoo/cloudbuild-action/builder"
	"github.com/cowdogmoo/cloudbuild-action/config"
	"github.com/cowdogmoo/cloudbuild-action/forge"
	"github.com/cowdogmoo/cloudbuild-action/logging"
	"github.com/cowdogmoo/cloudbuild-action/tags"
	"github.com/cowdogmoo/cloudbuild-action/trigger"
)

// cleanupTimeout bounds the removal of the uploaded archive after the build.
const cleanupTimeout = time.Minute

// Runner runs the build pipeline for one configuration.
type Runner struct {
	cfg     *config.Config
	svcs    *Services
	trigger *trigger.Context

	// ObjectName returns the storage key of the uploaded archive.
	ObjectName func() string
	// Now is the clock used for date tokens in tag templates.
	Now func() time.Time
}

// New creates a runner for the build triggered by tc, usually the context
// returned by ResolveTrigger. svcs must provide Store and Builder; the GitHub
// services are only used when reporting is enabled.
func New(cfg *config.Config, svcs *Services, tc *trigger.Context) *Runner {
	return &Runner{
		cfg:        cfg,
		svcs:       svcs,
		trigger:    tc,
		ObjectName: func() string { return "build-" + uuid.NewString() + ".tgz" },
		Now:        time.Now,
	}
}

// TriggerEnv maps the trigger configuration to a trigger environment.
func TriggerEnv(cfg *config.Config) trigger.Env {
	return trigger.Env{
		Ref:        cfg.Trigger.Ref,
		SHA:        cfg.Trigger.SHA,
		EventName:  cfg.Trigger.EventName,
		Repository: cfg.Trigger.Repository,
		Workspace:  cfg.Trigger.Workspace,
	}
}

// ResolveTrigger builds the trigger context for cfg and stores the values
// resolved from the local git repository back into cfg.Trigger.
func ResolveTrigger(ctx context.Context, cfg *config.Config) (*trigger.Context, error) {
	tc, err := trigger.New(ctx, TriggerEnv(cfg))
	if err != nil {
		return nil, err
	}
	cfg.Trigger.Ref = tc.Ref()
	cfg.Trigger.SHA = tc.SHA()
	cfg.Trigger.Repository = tc.Repository()
	return tc, nil
}

// ImageName returns the image configured in cfg.
func ImageName(cfg *config.Config) tags.ImageName {
	return tags.ImageName{Host: cfg.GCP.RegistryHost, ProjectID: cfg.GCP.ProjectID, Name: cfg.Image.Name}
}

// TagOptions returns the tag options configured in cfg for tc.
func TagOptions(cfg *config.Config, tc *trigger.Context, now func() time.Time) tags.Options {
	return tags.ForTrigger(tc, tags.Options{
		Template:            cfg.Image.TagFormat,
		IncludeLatest:       cfg.Image.TagLatest,
		IncludeBranchLatest: cfg.Image.TagBranchLatest,
		AdditionalTags:      cfg.Image.AdditionalTags,
		Now:                 now,
	})
}

// Run executes every step and returns the published outputs. Failures of the
// GitHub reporting steps are logged and do not fail the run.
func (r *Runner) Run(ctx context.Context) (*Outputs, error) {
	tc := r.trigger
	if tc == nil {
		return nil, fmt.Errorf("failed to read trigger: no trigger context")
	}

	logging.StartGroupContext(ctx, "Step 1: Prepare Cloud Build")
	logging.DebugContext(ctx, "Triggered by %s %s (%s) at %s", tc.Kind(), tc.RefName(), tc.Ref(), tc.SHA())

	image := ImageName(r.cfg)
	set := tags.Generate(TagOptions(r.cfg, tc, r.Now))
	if err := image.Validate(set.All); err != nil {
		logging.EndGroupContext(ctx)
		return nil, fmt.Errorf("failed to compute image tags: %w", err)
	}

	object, err := r.prepareInput(ctx, tc.Workspace())
	logging.EndGroupContext(ctx)
	if err != nil {
		return nil, err
	}

	result, err := r.build(ctx, image, set, object)
	if err != nil {
		return nil, err
	}

	r.report(ctx, tc, image, set)

	builder.LogImageSummary(ctx, result)

	outputs := &Outputs{FullImageName: image.Full(), ImageTags: set.All}
	if err := WriteOutputs(ctx, r.cfg.Trigger.OutputFile, outputs); err != nil {
		return outputs, err
	}

	if r.cfg.Build.SummaryFile != "" {
		summary := &builder.Summary{
			Image:      image.Full(),
			Tags:       set.All,
			PrimaryTag: set.Primary,
			Ref:        tc.Ref(),
			SHA:        tc.SHA(),
			Result:     result,
		}
		if err := builder.WriteSummaryFile(r.cfg.Build.SummaryFile, summary); err != nil {
			return outputs, err
		}
	}

	return outputs, nil
}

// prepareInput archives the sources and uploads the archive. It returns the
// storage key of the uploaded object.
func (r *Runner) prepareInput(ctx context.Context, workspace string) (string, error) {
	workDir, err := os.MkdirTemp("", "cloudbuild-action-")
	if err != nil {
		return "", fmt.Errorf("Could not create build input file: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logging.WarnContext(ctx, "Failed to remove %s: %v", workDir, err)
		}
	}()

	archivePath := filepath.Join(workDir, r.cfg.Build.ArchiveName)
	stagingDir := filepath.Join(workDir, r.cfg.Build.StagingDir)

	logging.DebugContext(ctx, "Creating input file %s", r.cfg.Build.ArchiveName)
	logging.DebugContext(ctx, "Build input base path: %s", workspace)

	archiver, err := archive.New(workspace)
	if err != nil {
		return "", fmt.Errorf("Could not create build input file: %w", err)
	}
	if err := archiver.Build(ctx, r.cfg.Image.Sources, archivePath, stagingDir); err != nil {
		return "", fmt.Errorf("Could not create build input file: %w", err)
	}

	object := r.ObjectName()
	logging.DebugContext(ctx, "Uploading input file to %s/%s", r.cfg.GCP.Bucket, object)
	if err := r.svcs.Store.Upload(ctx, r.cfg.GCP.Bucket, archivePath, object); err != nil {
		return "", fmt.Errorf("Could not upload build input file: %w", err)
	}
	if err := os.Remove(archivePath); err != nil {
		return "", fmt.Errorf("Could not upload build input file: %w", err)
	}

	return object, nil
}

// build runs the build and removes the uploaded archive afterwards. A failed
// build is returned as an error carrying the failure summary.
func (r *Runner) build(ctx context.Context, image tags.ImageName, set tags.Set, object string) (*builder.Result, error) {
	logging.StartGroupContext(ctx, "Step 2: Execute Cloud Build")
	defer logging.EndGroupContext(ctx)

	logging.InfoContext(ctx, "Starting cloud build of image %s with the following tags:", image.Full())
	for _, tag := range set.All {
		logging.InfoContext(ctx, "- %s", tag)
	}

	req := builder.Request{
		ProjectID:  r.cfg.GCP.ProjectID,
		Bucket:     r.cfg.GCP.Bucket,
		Object:     object,
		Image:      image.Full(),
		Tags:       set.All,
		RootFolder: r.cfg.Build.StagingDir,
		Timeout:    r.cfg.Build.Timeout,
	}

	buildCtx, cancel := context.WithTimeout(ctx, r.cfg.Build.Timeout)
	result := builder.Submit(buildCtx, r.svcs.Builder, req, builder.NewPoller(r.cfg.Build.PollInterval, r.cfg.Build.ReportInterval))
	cancel()

	cleanupCtx, cancelCleanup := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancelCleanup()
	logging.DebugContext(ctx, "Removing uploaded input file")
	if err := r.svcs.Store.Delete(cleanupCtx, r.cfg.GCP.Bucket, object); err != nil {
		return nil, fmt.Errorf("Removing uploaded input file failed: %w\nPlease remove the file %s/%s manually.", err, r.cfg.GCP.Bucket, object)
	}

	if !result.Succeeded() {
		return nil, errors.New(builder.FormatFailure(result))
	}

	logging.InfoContext(ctx, "Build was successful!")
	logging.InfoContext(ctx, "Build logs are available here: %s", result.LogsURL)
	return result, nil
}

// report updates commit statuses and release notes.
func (r *Runner) report(ctx context.Context, tc *trigger.Context, image tags.ImageName, set tags.Set) {
	gh := r.cfg.GitHub
	if gh.Disabled {
		logging.StartGroupContext(ctx, "Step 3: Updating GitHub (SKIPPED)")
	} else {
		logging.StartGroupContext(ctx, "Step 3: Updating GitHub")
	}
	defer logging.EndGroupContext(ctx)

	switch {
	case tc.Kind() != trigger.Commit:
		logging.InfoContext(ctx, "Not setting commit status since build was not caused by a commit.")
	case gh.Disabled || gh.CommitStatus.Disabled || r.svcs.Statuses == nil:
		logging.InfoContext(ctx, "Not setting commit status because it is disabled.")
	default:
		logging.InfoContext(ctx, "Setting commit status...")
		if err := r.setCommitStatus(ctx, tc, image, set); err != nil {
			logging.ErrorContext(ctx, "%v", err)
		}
	}

	switch {
	case !tc.IsRelease():
		logging.InfoContext(ctx, "Not updating release information because this build was not caused by a release.")
	case gh.Disabled || gh.Release.Disabled || r.svcs.Releases == nil:
		logging.InfoContext(ctx, "Not updating release information because it was disabled.")
	default:
		logging.InfoContext(ctx, "Updating release information...")
		if err := r.updateRelease(ctx, tc, image, set); err != nil {
			logging.ErrorContext(ctx, "%v", err)
		}
	}
}

func (r *Runner) setCommitStatus(ctx context.Context, tc *trigger.Context, image tags.ImageName, set tags.Set) error {
	repo, err := forge.ParseRepository(tc.Repository())
	if err != nil {
		return err
	}
	cs := r.cfg.GitHub.CommitStatus
	return forge.NewCommitStatusReporter(r.svcs.Statuses, repo, tc.SHA()).
		Update(ctx, set, cs.Title, tags.Length(cs.Description), cs.All, image)
}

func (r *Runner) updateRelease(ctx context.Context, tc *trigger.Context, image tags.ImageName, set tags.Set) error {
	repo, err := forge.ParseRepository(tc.Repository())
	if err != nil {
		return err
	}
	return forge.NewReleaseReporter(r.svcs.Releases, repo).
		AppendImages(ctx, tc.RefName(), r.cfg.GitHub.Release.All, set, image)
}
