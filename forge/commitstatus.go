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

package forge

import (
	"context"
	"fmt"

	"github.com/google/go-github/v65/github"
	"golang.org/x/sync/errgroup"

	"github.com/cowdogmoo/cloudbuild-action/logging"
	"github.com/cowdogmoo/cloudbuild-action/tags"
)

// StatusState is the state every image status is created with.
const StatusState = "success"

// CommitStatusReporter links built images to the commit that triggered the
// build.
type CommitStatusReporter struct {
	Service StatusService
	Repo    Repository
	SHA     string
}

// NewCommitStatusReporter creates a reporter for sha in repo.
func NewCommitStatusReporter(svc StatusService, repo Repository, sha string) *CommitStatusReporter {
	return &CommitStatusReporter{Service: svc, Repo: repo, SHA: sha}
}

// Update creates one successful status per used tag. The status context is
// title, numbered from 1 when more than one tag is reported; the description
// is the image name at length and the target URL points to the image.
func (r *CommitStatusReporter) Update(ctx context.Context, set tags.Set, title string, length tags.Length, all bool, image tags.ImageName) error {
	used := set.Used(all)

	g, ctx := errgroup.WithContext(ctx)
	for i, tag := range used {
		status := &github.RepoStatus{
			State:       github.String(StatusState),
			Context:     github.String(statusContext(title, i, len(used))),
			Description: github.String(image.ForTag(tag, length)),
			TargetURL:   github.String(image.URL(tag)),
		}

		g.Go(func() error {
			logging.DebugContext(ctx, "Putting commit status %s on %s: %s", status.GetContext(), r.SHA, status.GetDescription())
			if _, _, err := r.Service.CreateStatus(ctx, r.Repo.Owner, r.Repo.Name, r.SHA, status); err != nil {
				return fmt.Errorf("failed to create commit status %q on %s: %w", status.GetContext(), r.SHA, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func statusContext(title string, index, total int) string {
	if total > 1 {
		return fmt.Sprintf("%s %d", title, index+1)
	}
	return title
}
