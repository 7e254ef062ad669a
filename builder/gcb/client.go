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

// Package gcb submits builds to Google Cloud Build through its REST API and
// follows the returned long-running operation.
package gcb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/cloudbuild/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/cowdogmoo/cloudbuild-action/builder"
	"github.com/cowdogmoo/cloudbuild-action/logging"
)

// DefaultRPCInterval is the delay between two operation lookups.
const DefaultRPCInterval = 2 * time.Second

// Client is a builder.Submitter backed by Cloud Build.
type Client struct {
	svc *cloudbuild.Service
	// RPCInterval is the delay between two Operations.Get calls.
	RPCInterval time.Duration
}

var _ builder.Submitter = (*Client)(nil)

// NewClient creates a Cloud Build client. Authentication and endpoint come
// from opts.
func NewClient(ctx context.Context, rpcInterval time.Duration, opts ...option.ClientOption) (*Client, error) {
	svc, err := cloudbuild.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud Build client: %w", err)
	}
	if rpcInterval <= 0 {
		rpcInterval = DefaultRPCInterval
	}
	return &Client{svc: svc, RPCInterval: rpcInterval}, nil
}

// Submit starts the build described by req and returns a handle on the
// resulting operation.
func (c *Client) Submit(ctx context.Context, req builder.Request) (builder.Handle, error) {
	op, err := c.svc.Projects.Builds.Create(req.ProjectID, NewBuild(req)).Context(ctx).Do()
	if err != nil {
		return nil, describeAPIError("create build", err)
	}

	h := newOperation(c.svc, op, c.RPCInterval)
	if meta, err := buildMetadata(op); err == nil && meta.Build != nil {
		logging.InfoContext(ctx, "Requested build with id %s", meta.Build.Id)
		if meta.Build.LogUrl != "" {
			logging.DebugContext(ctx, "Build logs: %s", meta.Build.LogUrl)
		}
	} else if err != nil {
		logging.DebugContext(ctx, "Build operation %s carries no metadata: %v", op.Name, err)
	}
	return h, nil
}

// describeAPIError flattens a googleapi error into code and message.
func describeAPIError(action string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Body
		}
		return fmt.Errorf("failed to %s: Cloud Build API returned %d: %s", action, apiErr.Code, message)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func buildMetadata(op *cloudbuild.Operation) (*cloudbuild.BuildOperationMetadata, error) {
	if len(op.Metadata) == 0 {
		return nil, fmt.Errorf("missing metadata in operation %s", op.Name)
	}
	var meta cloudbuild.BuildOperationMetadata
	if err := json.Unmarshal(op.Metadata, &meta); err != nil {
		return nil, fmt.Errorf("failed to decode operation metadata: %w", err)
	}
	return &meta, nil
}
