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

package runner_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-github/v65/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cowdogmoo/cloudbuild-action/builder"
	"github.com/cowdogmoo/cloudbuild-action/config"
	"github.com/cowdogmoo/cloudbuild-action/logging"
	"github.com/cowdogmoo/cloudbuild-action/runner"
)

const (
	testSHA    = "0123456789abcdef0123456789abcdef01234567"
	testObject = "build-test.tgz"
	testBucket = "my-project_cloudbuild"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Upload(ctx context.Context, bucket, localFile, key string) error {
	return m.Called(ctx, bucket, localFile, key).Error(0)
}

func (m *mockStore) Delete(ctx context.Context, bucket, key string) error {
	return m.Called(ctx, bucket, key).Error(0)
}

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) Submit(ctx context.Context, req builder.Request) (builder.Handle, error) {
	args := m.Called(ctx, req)
	if h := args.Get(0); h != nil {
		return h.(builder.Handle), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockStatuses struct {
	mock.Mock
}

func (m *mockStatuses) CreateStatus(ctx context.Context, owner, repo, ref string, status *github.RepoStatus) (*github.RepoStatus, *github.Response, error) {
	return status, nil, m.Called(ctx, owner, repo, ref, status).Error(0)
}

type mockReleases struct {
	mock.Mock
}

func (m *mockReleases) GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*github.RepositoryRelease, *github.Response, error) {
	args := m.Called(ctx, owner, repo, tag)
	release, _ := args.Get(0).(*github.RepositoryRelease)
	return release, nil, args.Error(1)
}

func (m *mockReleases) EditRelease(ctx context.Context, owner, repo string, id int64, release *github.RepositoryRelease) (*github.RepositoryRelease, *github.Response, error) {
	return release, nil, m.Called(ctx, owner, repo, id, release).Error(0)
}

// settledHandle is a build that already finished with outcome.
type settledHandle struct {
	outcome *builder.Outcome
}

func (h settledHandle) Status() builder.Status { return builder.StatusSuccess }

func (h settledHandle) Wait(context.Context) (*builder.Outcome, error) { return h.outcome, nil }

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fixture struct {
	cfg      *config.Config
	store    *mockStore
	builds   *mockSubmitter
	statuses *mockStatuses
	releases *mockReleases
	logs     *syncBuffer
	ctx      context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	workspace := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workspace, "Dockerfile"), []byte("FROM scratch\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(workspace, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(workspace, "src", "main.go"), []byte("package main\n"), 0o644))

	out := t.TempDir()
	cfg := &config.Config{
		GCP: config.GCPConfig{ProjectID: "my-project", Bucket: testBucket, RegistryHost: "eu.gcr.io"},
		Image: config.ImageConfig{
			Name:      "app",
			Sources:   []string{"Dockerfile", "src"},
			TagFormat: "$BRANCH-$SHA",
			TagLatest: true,
		},
		GitHub: config.GitHubConfig{
			Token:        "token",
			CommitStatus: config.CommitStatusConfig{Description: "small", Title: "Docker Image"},
		},
		Build: config.BuildConfig{
			Timeout:        time.Minute,
			PollInterval:   time.Millisecond,
			ReportInterval: time.Second,
			RPCInterval:    time.Millisecond,
			StagingDir:     "cloud-build-input",
			ArchiveName:    "build.tgz",
			SummaryFile:    filepath.Join(out, "summary.yaml"),
		},
		Trigger: config.TriggerConfig{
			Ref:        "refs/heads/feature/login",
			SHA:        testSHA,
			Workspace:  workspace,
			Repository: "octo-org/hello-world",
			EventName:  "push",
			OutputFile: filepath.Join(out, "github_output"),
		},
	}

	logs := &syncBuffer{}
	logger := logging.NewCustomLogger(slog.LevelDebug)
	logger.ConsoleWriter = logs

	return &fixture{
		cfg:      cfg,
		store:    &mockStore{},
		builds:   &mockSubmitter{},
		statuses: &mockStatuses{},
		releases: &mockReleases{},
		logs:     logs,
		ctx:      logging.WithLogger(context.Background(), logger),
	}
}

func (f *fixture) runner(t *testing.T) *runner.Runner {
	t.Helper()
	tc, err := runner.ResolveTrigger(f.ctx, f.cfg)
	require.NoError(t, err)
	r := runner.New(f.cfg, &runner.Services{
		Store:    f.store,
		Builder:  f.builds,
		Statuses: f.statuses,
		Releases: f.releases,
	}, tc)
	r.ObjectName = func() string { return testObject }
	return r
}

func (f *fixture) expectUpload() {
	f.store.On("Upload", mock.Anything, testBucket, mock.MatchedBy(func(path string) bool {
		_, err := os.Stat(path)
		return filepath.Base(path) == "build.tgz" && err == nil
	}), testObject).Return(nil).Once()
}

func (f *fixture) expectBuild(outcome *builder.Outcome) {
	f.builds.On("Submit", mock.Anything, mock.MatchedBy(func(req builder.Request) bool {
		return req.ProjectID == "my-project" &&
			req.Bucket == testBucket &&
			req.Object == testObject &&
			req.Image == "eu.gcr.io/my-project/app" &&
			req.RootFolder == "cloud-build-input" &&
			req.Timeout == time.Minute
	})).Return(settledHandle{outcome: outcome}, nil).Once()
}

var successOutcome = &builder.Outcome{
	LogsURL: "https://logs/1",
	Images:  []builder.Image{{Name: "eu.gcr.io/my-project/app:feature_login-0123456", Digest: "sha256:abc"}},
}

func TestRun_CommitBuild(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.expectUpload()
	f.expectBuild(successOutcome)
	f.store.On("Delete", mock.Anything, testBucket, testObject).Return(nil).Once()
	f.statuses.On("CreateStatus", mock.Anything, "octo-org", "hello-world", testSHA, mock.MatchedBy(func(s *github.RepoStatus) bool {
		return s.GetContext() == "Docker Image" &&
			s.GetState() == "success" &&
			s.GetDescription() == "app:feature_login-0123456" &&
			s.GetTargetURL() == "https://eu.gcr.io/my-project/app:feature_login-0123456"
	})).Return(nil).Once()

	outputs, err := f.runner(t).Run(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, "eu.gcr.io/my-project/app", outputs.FullImageName)
	assert.Equal(t, []string{"feature_login-0123456", "latest"}, outputs.ImageTags)

	data, err := os.ReadFile(f.cfg.Trigger.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, "full-image-name=eu.gcr.io/my-project/app\nimage-tags=feature_login-0123456,latest\n", string(data))

	summary, err := os.ReadFile(f.cfg.Build.SummaryFile)
	require.NoError(t, err)
	var decoded builder.Summary
	require.NoError(t, yaml.Unmarshal(summary, &decoded))
	assert.Equal(t, "feature_login-0123456", decoded.PrimaryTag)
	assert.Equal(t, "https://logs/1", decoded.Result.LogsURL)

	logs := f.logs.String()
	assert.Contains(t, logs, "Starting cloud build of image eu.gcr.io/my-project/app with the following tags:")
	assert.Contains(t, logs, "- feature_login-0123456")
	assert.Contains(t, logs, "Build logs are available here: https://logs/1")
	assert.Contains(t, logs, "Setting commit status...")
	assert.Contains(t, logs, "Not updating release information because this build was not caused by a release.")
	assert.Contains(t, logs, "==> Step 3: Updating GitHub")

	f.store.AssertExpectations(t)
	f.builds.AssertExpectations(t)
	f.statuses.AssertExpectations(t)
	f.releases.AssertNotCalled(t, "GetReleaseByTag", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_ReleaseBuild(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.cfg.Trigger.Ref = "refs/tags/v1.2.0"
	f.cfg.Trigger.EventName = "release"
	f.expectUpload()
	f.expectBuild(successOutcome)
	f.store.On("Delete", mock.Anything, testBucket, testObject).Return(nil).Once()
	f.releases.On("GetReleaseByTag", mock.Anything, "octo-org", "hello-world", "v1.2.0").
		Return(&github.RepositoryRelease{ID: github.Int64(9), TagName: github.String("v1.2.0"), Body: github.String("Notes")}, nil).Once()
	f.releases.On("EditRelease", mock.Anything, "octo-org", "hello-world", int64(9), mock.MatchedBy(func(r *github.RepositoryRelease) bool {
		return strings.HasPrefix(r.GetBody(), "Notes\n\n---\n") &&
			strings.HasSuffix(r.GetBody(), "[eu.gcr.io/my-project/app:v1.2.0](https://eu.gcr.io/my-project/app:v1.2.0)**")
	})).Return(nil).Once()

	outputs, err := f.runner(t).Run(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1.2.0", "latest"}, outputs.ImageTags)
	assert.Contains(t, f.logs.String(), "Not setting commit status since build was not caused by a commit.")
	assert.Contains(t, f.logs.String(), "Updating release information...")

	f.releases.AssertExpectations(t)
	f.statuses.AssertNotCalled(t, "CreateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_GitHubDisabled(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.cfg.GitHub.Disabled = true
	f.cfg.Trigger.EventName = "release"
	f.expectUpload()
	f.expectBuild(successOutcome)
	f.store.On("Delete", mock.Anything, testBucket, testObject).Return(nil).Once()

	_, err := f.runner(t).Run(f.ctx)
	require.NoError(t, err)

	logs := f.logs.String()
	assert.Contains(t, logs, "Step 3: Updating GitHub (SKIPPED)")
	assert.Contains(t, logs, "Not setting commit status because it is disabled.")
	assert.Contains(t, logs, "Not updating release information because it was disabled.")
	f.statuses.AssertNotCalled(t, "CreateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_CommitStatusFailureIsNotFatal(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.cfg.GitHub.CommitStatus.All = true
	f.cfg.Trigger.OutputFile = ""
	f.expectUpload()
	f.expectBuild(successOutcome)
	f.store.On("Delete", mock.Anything, testBucket, testObject).Return(nil).Once()
	f.statuses.On("CreateStatus", mock.Anything, "octo-org", "hello-world", testSHA, mock.Anything).Return(errors.New("forbidden"))

	outputs, err := f.runner(t).Run(f.ctx)
	require.NoError(t, err)
	require.NotNil(t, outputs)
	assert.Contains(t, f.logs.String(), "forbidden")
	assert.Contains(t, f.logs.String(), "Output image-tags=feature_login-0123456,latest")
}

func TestRun_BuildFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.expectUpload()
	f.expectBuild(&builder.Outcome{LogsURL: "https://logs/2", Error: &builder.OutcomeError{Code: 2, Message: "step exited with 1"}})
	f.store.On("Delete", mock.Anything, testBucket, testObject).Return(nil).Once()

	outputs, err := f.runner(t).Run(f.ctx)
	require.Error(t, err)
	assert.Nil(t, outputs)
	assert.Equal(t, "Cloud Build failed.\n"+
		"Message:      step exited with 1\n"+
		"Code:         2\n"+
		"Build Logs:   https://logs/2", err.Error())

	f.store.AssertExpectations(t)
	f.statuses.AssertNotCalled(t, "CreateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.NoFileExists(t, f.cfg.Trigger.OutputFile)
}

func TestRun_SubmitFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.expectUpload()
	f.builds.On("Submit", mock.Anything, mock.Anything).Return(nil, errors.New("permission denied")).Once()
	f.store.On("Delete", mock.Anything, testBucket, testObject).Return(nil).Once()

	_, err := f.runner(t).Run(f.ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Message:      permission denied")
	assert.Contains(t, err.Error(), "Code:         -1")
	assert.Contains(t, err.Error(), "Build Logs:   Not Found")
	f.store.AssertExpectations(t)
}

func TestRun_UploadFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.store.On("Upload", mock.Anything, testBucket, mock.Anything, testObject).Return(errors.New("bucket not found")).Once()

	_, err := f.runner(t).Run(f.ctx)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Could not upload build input file: "))
	assert.Contains(t, err.Error(), "bucket not found")
	f.builds.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	f.store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_DeleteFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.expectUpload()
	f.expectBuild(successOutcome)
	f.store.On("Delete", mock.Anything, testBucket, testObject).Return(errors.New("forbidden")).Once()

	_, err := f.runner(t).Run(f.ctx)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Removing uploaded input file failed: forbidden"))
	assert.Contains(t, err.Error(), "Please remove the file my-project_cloudbuild/build-test.tgz manually.")
}

func TestRun_ArchiveFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.cfg.Image.Sources = []string{"[invalid"}

	_, err := f.runner(t).Run(f.ctx)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Could not create build input file: "))
	f.store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_InvalidTag(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.cfg.Image.AdditionalTags = []string{"not a tag"}

	_, err := f.runner(t).Run(f.ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compute image tags")
	f.store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_OtherRefWarnsOnce(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.cfg.Trigger.Ref = "refs/pull/42/merge"
	f.expectUpload()
	f.store.On("Delete", mock.Anything, testBucket, testObject).Return(nil).Once()
	f.builds.On("Submit", mock.Anything, mock.Anything).Return(settledHandle{outcome: successOutcome}, nil).Once()

	outputs, err := f.runner(t).Run(f.ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"refs_pull_42_merge", "latest"}, outputs.ImageTags)
	assert.Equal(t, 1, strings.Count(f.logs.String(), "Unrecognized GITHUB_REF found: refs/pull/42/merge"))
}

func TestRun_MissingTrigger(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	_, err := runner.New(f.cfg, &runner.Services{Store: f.store, Builder: f.builds}, nil).Run(f.ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no trigger context")
	f.store.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWriteOutputs(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out")
	require.NoError(t, os.WriteFile(path, []byte("existing=1\n"), 0o644))

	outputs := &runner.Outputs{FullImageName: "eu.gcr.io/p/app", ImageTags: []string{"a", "b"}}
	require.NoError(t, runner.WriteOutputs(context.Background(), path, outputs))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "existing=1\nfull-image-name=eu.gcr.io/p/app\nimage-tags=a,b\n", string(data))

	bad := &runner.Outputs{FullImageName: "a\nb"}
	assert.Error(t, runner.WriteOutputs(context.Background(), path, bad))

	assert.Error(t, runner.WriteOutputs(context.Background(), filepath.Join(t.TempDir(), "missing", "out"), outputs))
}
