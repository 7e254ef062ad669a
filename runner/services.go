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

package runner

import (
	"context"
	"fmt"

	"github.com/google/go-github/v65/github"

	"github.com/cowdogmoo/cloudbuild-action/builder"
	"github.com/cowdogmoo/cloudbuild-action/builder/gcb"
	"github.com/cowdogmoo/cloudbuild-action/config"
	"github.com/cowdogmoo/cloudbuild-action/forge"
	"github.com/cowdogmoo/cloudbuild-action/logging"
	"github.com/cowdogmoo/cloudbuild-action/storage"
)

// Services are the remote APIs a run talks to.
type Services struct {
	Store    storage.ObjectStore
	Builder  builder.Submitter
	Statuses forge.StatusService
	Releases forge.ReleaseService

	closers []func() error
}

// NewServices creates Cloud Storage and Cloud Build clients authenticated
// with the configured service account key, and GitHub clients unless GitHub
// reporting is disabled.
func NewServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	creds, err := storage.CredentialsOption(cfg.GCP.ServiceAccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account key: %w", err)
	}

	store, err := storage.NewGCS(ctx, creds)
	if err != nil {
		return nil, err
	}

	submitter, err := gcb.NewClient(ctx, cfg.Build.RPCInterval, creds)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	svcs := &Services{
		Store:   store,
		Builder: submitter,
		closers: []func() error{store.Close},
	}

	if !cfg.GitHub.Disabled {
		var client *github.Client
		client, err = forge.NewClient(cfg.GitHub.Token, cfg.GitHub.APIURL)
		if err != nil {
			svcs.Close(ctx)
			return nil, err
		}
		svcs.Statuses = client.Repositories
		svcs.Releases = client.Repositories
	}

	return svcs, nil
}

// Close releases the clients created by NewServices.
func (s *Services) Close(ctx context.Context) {
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			logging.WarnContext(ctx, "Failed to close client: %v", err)
		}
	}
}
