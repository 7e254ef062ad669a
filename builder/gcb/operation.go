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
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/opencontainers/go-digest"
	"google.golang.org/api/cloudbuild/v1"

	"github.com/cowdogmoo/cloudbuild-action/builder"
	"github.com/cowdogmoo/cloudbuild-action/logging"
)

// operation adapts a Cloud Build long-running operation to builder.Handle.
type operation struct {
	svc      *cloudbuild.Service
	current  *cloudbuild.Operation
	interval time.Duration
	status   atomic.Int64
	logsURL  string
}

func newOperation(svc *cloudbuild.Service, op *cloudbuild.Operation, interval time.Duration) *operation {
	o := &operation{svc: svc, current: op, interval: interval}
	o.observe(op)
	return o
}

func (o *operation) Status() builder.Status {
	return builder.Status(o.status.Load())
}

// observe records the build status and log URL carried by op's metadata.
func (o *operation) observe(op *cloudbuild.Operation) {
	meta, err := buildMetadata(op)
	if err != nil || meta.Build == nil {
		return
	}
	o.status.Store(int64(builder.ParseStatus(meta.Build.Status)))
	if meta.Build.LogUrl != "" {
		o.logsURL = meta.Build.LogUrl
	}
}

func (o *operation) Wait(ctx context.Context) (*builder.Outcome, error) {
	timer := time.NewTimer(o.interval)
	defer timer.Stop()

	op := o.current
	for !op.Done {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		next, err := o.svc.Operations.Get(op.Name).Context(ctx).Do()
		if err != nil {
			return nil, describeAPIError(fmt.Sprintf("get operation %s", op.Name), err)
		}
		o.observe(next)
		op = next
		timer.Reset(o.interval)
	}

	return o.outcome(ctx, op)
}

// outcome converts a finished operation.
func (o *operation) outcome(ctx context.Context, op *cloudbuild.Operation) (*builder.Outcome, error) {
	if op.Error != nil {
		return &builder.Outcome{
			LogsURL: o.logsURL,
			Error: &builder.OutcomeError{
				Code:    int(op.Error.Code),
				Message: op.Error.Message,
			},
		}, nil
	}

	var build cloudbuild.Build
	if len(op.Response) > 0 {
		if err := json.Unmarshal(op.Response, &build); err != nil {
			return nil, fmt.Errorf("failed to decode build from operation %s: %w", op.Name, err)
		}
	}

	logsURL := build.LogUrl
	if logsURL == "" {
		logsURL = o.logsURL
	}

	if build.Status != "" {
		status := builder.ParseStatus(build.Status)
		o.status.Store(int64(status))
		if status != builder.StatusSuccess {
			message := build.StatusDetail
			if message == "" {
				message = status.Describe()
			}
			return &builder.Outcome{
				LogsURL: logsURL,
				Error:   &builder.OutcomeError{Message: message},
			}, nil
		}
	}

	outcome := &builder.Outcome{LogsURL: logsURL}
	if build.Results != nil {
		for _, img := range build.Results.Images {
			if img == nil {
				continue
			}
			outcome.Images = append(outcome.Images, builder.Image{
				Name:   img.Name,
				Digest: validDigest(ctx, img.Digest),
			})
		}
	}
	return outcome, nil
}

// validDigest returns d when it parses as an OCI digest and "" otherwise.
func validDigest(ctx context.Context, d string) string {
	if d == "" {
		return ""
	}
	parsed, err := digest.Parse(d)
	if err != nil {
		logging.DebugContext(ctx, "Ignoring malformed image digest %q: %v", d, err)
		return ""
	}
	return parsed.String()
}
