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

package gcb

import (
	"fmt"

	"google.golang.org/api/cloudbuild/v1"

	"github.com/cowdogmoo/cloudbuild-action/builder"
)

const (
	// DockerBuilder is the Cloud Build step image that runs docker build.
	DockerBuilder = "gcr.io/cloud-builders/docker"
	// StepID identifies the single build step.
	StepID = "Build"
)

// NewBuild assembles the Cloud Build request for req: one docker step tagging
// every image name, the uploaded archive as storage source and the build
// timeout.
func NewBuild(req builder.Request) *cloudbuild.Build {
	images := req.ImageNames()

	args := make([]string, 0, 2+2*len(images))
	args = append(args, "build")
	for _, image := range images {
		args = append(args, "-t", image)
	}
	args = append(args, req.RootFolder)

	build := &cloudbuild.Build{
		Steps: []*cloudbuild.BuildStep{
			{
				Id:   StepID,
				Name: DockerBuilder,
				Args: args,
			},
		},
		Images: images,
		Source: &cloudbuild.Source{
			StorageSource: &cloudbuild.StorageSource{
				Bucket: req.Bucket,
				Object: req.Object,
			},
		},
	}

	if req.Timeout > 0 {
		build.Timeout = formatDuration(int64(req.Timeout.Seconds()))
	}

	return build
}

// formatDuration renders seconds the way the REST API encodes durations.
func formatDuration(seconds int64) string {
	if seconds < 1 {
		seconds = 1
	}
	return fmt.Sprintf("%ds", seconds)
}
