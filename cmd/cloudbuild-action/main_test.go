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

package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cowdogmoo/cloudbuild-action/config"
	"github.com/cowdogmoo/cloudbuild-action/logging"
	"github.com/cowdogmoo/cloudbuild-action/runner"
)

// isolate clears the runner environment so only the test arguments apply.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, name := range []string{
		"GITHUB_ACTIONS", "GITHUB_REF", "GITHUB_SHA", "GITHUB_WORKSPACE", "GITHUB_REPOSITORY",
		"GITHUB_EVENT_NAME", "GITHUB_OUTPUT", "GITHUB_API_URL",
	} {
		t.Setenv(name, "")
	}
	t.Chdir(home)
	return home
}

// execute runs the CLI with args and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cloudbuild-action version")
	assert.Contains(t, out, "commit:")
	assert.Contains(t, out, "built:")
	assert.NotEmpty(t, version)
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, "schema")
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	props, ok := schema["properties"].(map[string]interface{})
	require.True(t, ok)
	for _, key := range []string{"gcp", "image", "github", "build", "trigger"} {
		assert.Contains(t, props, key)
	}

	path := filepath.Join(t.TempDir(), "schema", "config.json")
	out, err = execute(t, "schema", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)
}

func TestTagsCommand(t *testing.T) {
	ws := isolate(t)

	out, err := execute(t, "tags",
		"--workspace", ws,
		"--ref", "refs/heads/feature/login",
		"--sha", "0123456789abcdef",
		"--image-tag-format", "$BRANCH-$SHA",
		"--image-tag-latest",
		"--image-tag-additional-tags", "stable,,edge",
		"--format", "json",
	)
	require.NoError(t, err)

	var listing struct {
		Primary string   `json:"primary"`
		Tags    []string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listing))
	assert.Equal(t, "feature_login-0123456", listing.Primary)
	assert.Equal(t, []string{"feature_login-0123456", "latest", "stable", "edge"}, listing.Tags)
}

func TestTagsCommand_FromEnvironment(t *testing.T) {
	ws := isolate(t)
	t.Setenv("GITHUB_REF", "refs/tags/v1.0.0")
	t.Setenv("GITHUB_SHA", "0123456789abcdef")
	t.Setenv("INPUT_IMAGE-TAG-LATEST", "TRUE")

	out, err := execute(t, "tags", "--workspace", ws)
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0\nlatest\n", out)
}

func TestTagsCommand_InvalidFormat(t *testing.T) {
	isolate(t)
	_, err := execute(t, "tags", "--ref", "refs/heads/main", "--sha", "abc", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestArchiveCommand(t *testing.T) {
	ws := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(ws, "Dockerfile"), []byte("FROM scratch\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(ws, "README.md"), []byte("readme\n"), 0o644))

	out, err := execute(t, "archive", "--workspace", ws, "--image-sources", "Dockerfile", "--list")
	require.NoError(t, err)
	assert.Equal(t, "Dockerfile\n", out)

	archivePath := filepath.Join(t.TempDir(), "build.tgz")
	_, err = execute(t, "archive", "--workspace", ws, "--image-sources", "Dockerfile,README.md", "--output", archivePath)
	require.NoError(t, err)
	info, err := os.Stat(archivePath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	_, err = execute(t, "archive", "--workspace", ws, "--output", archivePath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image-sources")
}

func TestRunCommand_ValidationErrors(t *testing.T) {
	ws := isolate(t)

	_, err := execute(t, "run", "--workspace", ws, "--ref", "refs/heads/main", "--sha", "abc")
	require.Error(t, err)

	var verr *config.ValidationError
	require.True(t, errors.As(err, &verr))
	msg := err.Error()
	assert.Contains(t, msg, "gcp-project-id")
	assert.Contains(t, msg, "image-name")
	assert.Contains(t, msg, "github-token")
}

func TestRunCommand_MissingConfigFile(t *testing.T) {
	isolate(t)
	_, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestExecuteRun_ServicesError(t *testing.T) {
	cfg := &config.Config{}
	err := executeRun(context.Background(), cfg, nil, func(context.Context, *config.Config) (*runner.Services, error) {
		return nil, errors.New("no credentials")
	})
	require.Error(t, err)
	assert.Equal(t, "no credentials", err.Error())
}

func TestMaskSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewCustomLoggerWithOptions("info", "actions", false, false)
	logger.ConsoleWriter = &buf

	keyJSON := `{"type":"service_account","private_key_id":"abc123"}`
	cfg := &config.Config{
		GCP:    config.GCPConfig{ServiceAccountKey: base64.StdEncoding.EncodeToString([]byte(keyJSON))},
		GitHub: config.GitHubConfig{Token: "ghp_secret"},
	}
	maskSecrets(logger, cfg)

	out := buf.String()
	assert.Contains(t, out, "::add-mask::"+cfg.GCP.ServiceAccountKey)
	assert.Contains(t, out, "::add-mask::ghp_secret")
	assert.Contains(t, out, "::add-mask::"+keyJSON)
	assert.Equal(t, 3, strings.Count(out, "::add-mask::"))
}

func TestRedactSetting(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "***", redactSetting("gcp.service_account_key", "c2VjcmV0"))
	assert.Equal(t, "***", redactSetting("github.token", "ghp_secret"))
	assert.Equal(t, "", redactSetting("github.token", ""))
	assert.Equal(t, "app", redactSetting("image.name", "app"))
	assert.Equal(t, "password=***", redactSetting("image.name", "password=hunter2"))
}
