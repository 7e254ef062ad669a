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

package gcb_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/cloudbuild/v1"
	"google.golang.org/api/option"

	"github.com/cowdogmoo/cloudbuild-action/builder"
	"github.com/cowdogmoo/cloudbuild-action/builder/gcb"
)

const (
	testDigest = "sha256:9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"
	opName     = "operations/build-op"
)

func testRequest() builder.Request {
	return builder.Request{
		ProjectID:  "my-project",
		Bucket:     "my-project_cloudbuild",
		Object:     "build-123.tgz",
		Image:      "eu.gcr.io/my-project/app",
		Tags:       []string{"main-abc1234", "latest"},
		RootFolder: "cloud-build-input",
		Timeout:    time.Hour,
	}
}

func TestNewBuild(t *testing.T) {
	t.Parallel()

	build := gcb.NewBuild(testRequest())

	require.Len(t, build.Steps, 1)
	step := build.Steps[0]
	assert.Equal(t, "Build", step.Id)
	assert.Equal(t, "gcr.io/cloud-builders/docker", step.Name)
	assert.Equal(t, []string{
		"build",
		"-t", "eu.gcr.io/my-project/app:main-abc1234",
		"-t", "eu.gcr.io/my-project/app:latest",
		"cloud-build-input",
	}, step.Args)
	assert.Equal(t, []string{
		"eu.gcr.io/my-project/app:main-abc1234",
		"eu.gcr.io/my-project/app:latest",
	}, build.Images)
	require.NotNil(t, build.Source)
	require.NotNil(t, build.Source.StorageSource)
	assert.Equal(t, "my-project_cloudbuild", build.Source.StorageSource.Bucket)
	assert.Equal(t, "build-123.tgz", build.Source.StorageSource.Object)
	assert.Equal(t, "3600s", build.Timeout)
}

func TestNewBuild_NoTimeout(t *testing.T) {
	t.Parallel()
	req := testRequest()
	req.Timeout = 0
	assert.Empty(t, gcb.NewBuild(req).Timeout)

	req.Timeout = 10 * time.Millisecond
	assert.Equal(t, "1s", gcb.NewBuild(req).Timeout)
}

// fakeCloudBuild serves the Cloud Build REST endpoints used by the client.
type fakeCloudBuild struct {
	t         *testing.T
	mu        sync.Mutex
	created   *cloudbuild.Build
	project   string
	createErr int
	getErr    int
	// ops are returned by successive Operations.Get calls; the last one repeats.
	ops   []map[string]interface{}
	gets  atomic.Int32
	first map[string]interface{}
}

func metadata(status, logURL string) map[string]interface{} {
	return map[string]interface{}{
		"@type": "type.googleapis.com/google.devtools.cloudbuild.v1.BuildOperationMetadata",
		"build": map[string]interface{}{
			"id":     "build-id-1",
			"status": status,
			"logUrl": logURL,
		},
	}
}

func pending(status string) map[string]interface{} {
	return map[string]interface{}{
		"name":     opName,
		"metadata": metadata(status, "https://console.cloud.google.com/cloud-build/builds/build-id-1"),
	}
}

func (f *fakeCloudBuild) server() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/projects/{project}/builds", func(w http.ResponseWriter, r *http.Request) {
		if f.createErr != 0 {
			http.Error(w, `{"error":{"code":403,"message":"permission denied"}}`, f.createErr)
			return
		}
		var build cloudbuild.Build
		if !assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&build)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.created = &build
		f.project = r.PathValue("project")
		f.mu.Unlock()
		writeJSON(w, f.first)
	})
	mux.HandleFunc("GET /v1/operations/{id}", func(w http.ResponseWriter, r *http.Request) {
		if f.getErr != 0 {
			http.Error(w, `{"error":{"code":404,"message":"not found"}}`, f.getErr)
			return
		}
		n := int(f.gets.Add(1)) - 1
		if n >= len(f.ops) {
			n = len(f.ops) - 1
		}
		writeJSON(w, f.ops[n])
	})
	return httptest.NewServer(mux)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T, srv *httptest.Server) *gcb.Client {
	t.Helper()
	client, err := gcb.NewClient(context.Background(), time.Millisecond,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return client
}

func TestClient_SubmitSuccess(t *testing.T) {
	t.Parallel()

	fake := &fakeCloudBuild{
		t:     t,
		first: pending("QUEUED"),
		ops: []map[string]interface{}{
			pending("WORKING"),
			{
				"name":     opName,
				"done":     true,
				"metadata": metadata("SUCCESS", "https://console.cloud.google.com/cloud-build/builds/build-id-1"),
				"response": map[string]interface{}{
					"@type":  "type.googleapis.com/google.devtools.cloudbuild.v1.Build",
					"status": "SUCCESS",
					"logUrl": "https://console.cloud.google.com/cloud-build/builds/build-id-1",
					"results": map[string]interface{}{
						"images": []map[string]interface{}{
							{"name": "eu.gcr.io/my-project/app:main-abc1234", "digest": testDigest},
							{"name": "eu.gcr.io/my-project/app:latest", "digest": "not-a-digest"},
						},
					},
				},
			},
		},
	}
	srv := fake.server()
	defer srv.Close()

	client := newClient(t, srv)
	h, err := client.Submit(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, builder.StatusQueued, h.Status())

	outcome, err := h.Wait(context.Background())
	require.NoError(t, err)
	require.NotNil(t, outcome)
	assert.Nil(t, outcome.Error)
	assert.Equal(t, "https://console.cloud.google.com/cloud-build/builds/build-id-1", outcome.LogsURL)
	assert.Equal(t, []builder.Image{
		{Name: "eu.gcr.io/my-project/app:main-abc1234", Digest: testDigest},
		{Name: "eu.gcr.io/my-project/app:latest", Digest: ""},
	}, outcome.Images)
	assert.Equal(t, builder.StatusSuccess, h.Status())
	assert.GreaterOrEqual(t, fake.gets.Load(), int32(2))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, "my-project", fake.project)
	require.NotNil(t, fake.created)
	assert.Equal(t, "3600s", fake.created.Timeout)
	assert.Len(t, fake.created.Images, 2)
}

func TestClient_SubmitBuildFailure(t *testing.T) {
	t.Parallel()

	fake := &fakeCloudBuild{
		t:     t,
		first: pending("QUEUED"),
		ops: []map[string]interface{}{
			{
				"name":     opName,
				"done":     true,
				"metadata": metadata("FAILURE", "https://logs/build-id-1"),
				"error":    map[string]interface{}{"code": 2, "message": "Build failed; check build logs for details"},
			},
		},
	}
	srv := fake.server()
	defer srv.Close()

	h, err := newClient(t, srv).Submit(context.Background(), testRequest())
	require.NoError(t, err)

	outcome, err := h.Wait(context.Background())
	require.NoError(t, err)
	require.NotNil(t, outcome.Error)
	assert.Equal(t, 2, outcome.Error.Code)
	assert.Equal(t, "Build failed; check build logs for details", outcome.Error.Message)
	assert.Equal(t, "https://logs/build-id-1", outcome.LogsURL)
	assert.Equal(t, builder.StatusFailure, h.Status())
}

func TestClient_SubmitFailedBuildWithoutError(t *testing.T) {
	t.Parallel()

	fake := &fakeCloudBuild{
		t:     t,
		first: pending("WORKING"),
		ops: []map[string]interface{}{
			{
				"name":     opName,
				"done":     true,
				"response": map[string]interface{}{"status": "TIMEOUT", "logUrl": "https://logs"},
			},
		},
	}
	srv := fake.server()
	defer srv.Close()

	h, err := newClient(t, srv).Submit(context.Background(), testRequest())
	require.NoError(t, err)

	outcome, err := h.Wait(context.Background())
	require.NoError(t, err)
	require.NotNil(t, outcome.Error)
	assert.Equal(t, "Build has timed out!", outcome.Error.Message)
	assert.Equal(t, "https://logs", outcome.LogsURL)
}

func TestClient_SubmitCreateError(t *testing.T) {
	t.Parallel()

	fake := &fakeCloudBuild{t: t, createErr: http.StatusForbidden}
	srv := fake.server()
	defer srv.Close()

	h, err := newClient(t, srv).Submit(context.Background(), testRequest())
	require.Error(t, err)
	assert.Nil(t, h)
	assert.Contains(t, err.Error(), "failed to create build")
	assert.Contains(t, err.Error(), "403")
}

func TestClient_WaitGetError(t *testing.T) {
	t.Parallel()

	fake := &fakeCloudBuild{t: t, first: pending("QUEUED"), getErr: http.StatusNotFound}
	srv := fake.server()
	defer srv.Close()

	h, err := newClient(t, srv).Submit(context.Background(), testRequest())
	require.NoError(t, err)

	outcome, err := h.Wait(context.Background())
	require.Error(t, err)
	assert.Nil(t, outcome)
	assert.Contains(t, err.Error(), "get operation operations/build-op")
}

func TestClient_WaitContextDeadline(t *testing.T) {
	t.Parallel()

	fake := &fakeCloudBuild{t: t, first: pending("QUEUED"), ops: []map[string]interface{}{pending("WORKING")}}
	srv := fake.server()
	defer srv.Close()

	h, err := newClient(t, srv).Submit(context.Background(), testRequest())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = h.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_PollerIntegration(t *testing.T) {
	t.Parallel()

	fake := &fakeCloudBuild{
		t:     t,
		first: pending("QUEUED"),
		ops: []map[string]interface{}{
			{
				"name":     opName,
				"done":     true,
				"response": map[string]interface{}{"status": "SUCCESS"},
			},
		},
	}
	srv := fake.server()
	defer srv.Close()

	result := builder.Submit(context.Background(), newClient(t, srv), testRequest(), builder.NewPoller(time.Millisecond, time.Second))

	require.True(t, result.Succeeded())
	assert.Equal(t, "https://console.cloud.google.com/cloud-build/builds/build-id-1", result.LogsURL)
	assert.Empty(t, result.Output.Images)
}
