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

// Package builder submits container image builds to a remote build service
// and follows them to completion.
//
// # Architecture
//
//   - Interfaces (builder.go): Submitter starts a build and returns a Handle
//   - Status (status.go): remote build states and their log lines
//   - Results (result.go): the settled outcome of a build as a Result
//   - Poller (poller.go): waits for a Handle while reporting progress
//   - Summaries (summary.go): failure messages, image tables and summary files
//
// The Cloud Build implementation of Submitter lives in the gcb subpackage.
//
// # Key Concepts
//
// A build settles either as a build failure (the remote build ran and did not
// succeed) or as a transport failure (the service could not be reached or
// answered with an error). Both are reported through Result.Error with a Kind
// telling them apart:
//
//	result := builder.Submit(ctx, submitter, req, poller)
//	if result.Error != nil && result.Error.Kind == builder.BuildFailure { ... }
package builder

import (
	"context"
	"time"
)

// Request describes one image build.
type Request struct {
	ProjectID string
	// Bucket and Object locate the uploaded build input archive.
	Bucket string
	Object string
	// Image is the image name without tag; Tags are appended as Image:tag.
	Image string
	Tags  []string
	// RootFolder is the directory inside the archive used as build context.
	RootFolder string
	Timeout    time.Duration
}

// ImageNames returns Image:tag for every tag.
func (r Request) ImageNames() []string {
	names := make([]string, 0, len(r.Tags))
	for _, tag := range r.Tags {
		names = append(names, r.Image+":"+tag)
	}
	return names
}

// Handle is a submitted build.
type Handle interface {
	// Status returns the last known remote status. It never blocks.
	Status() Status
	// Wait blocks until the build settles. A returned error means the
	// service could not be queried, not that the build failed.
	Wait(ctx context.Context) (*Outcome, error)
}

// Submitter starts builds on a remote build service.
type Submitter interface {
	Submit(ctx context.Context, req Request) (Handle, error)
}
