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
	"strings"

	"github.com/google/go-github/v65/github"

	"github.com/cowdogmoo/cloudbuild-action/logging"
	"github.com/cowdogmoo/cloudbuild-action/tags"
)

const (
	// ReleaseMessage marks a release body that already lists images.
	ReleaseMessage = "The following Docker Images have been built for this release:"
	// ReleaseBodyPrefix separates the image list from the release notes.
	ReleaseBodyPrefix = "\n\n---\n\n*" + ReleaseMessage + "*\n"

	releaseEntrySeparator = " \\"
)

// ReleaseReporter appends built images to release notes.
type ReleaseReporter struct {
	Service ReleaseService
	Repo    Repository
}

// NewReleaseReporter creates a reporter for releases of repo.
func NewReleaseReporter(svc ReleaseService, repo Repository) *ReleaseReporter {
	return &ReleaseReporter{Service: svc, Repo: repo}
}

// AppendImages adds an entry per used tag to the body of the release for
// releaseTag. The separator and heading are only written once per release.
func (r *ReleaseReporter) AppendImages(ctx context.Context, releaseTag string, all bool, set tags.Set, image tags.ImageName) error {
	release, _, err := r.Service.GetReleaseByTag(ctx, r.Repo.Owner, r.Repo.Name, releaseTag)
	if err != nil {
		return fmt.Errorf("failed to load release %s of %s: %w", releaseTag, r.Repo, err)
	}

	oldBody := release.GetBody()
	logging.DebugContext(ctx, "Loaded existing release with body: %s", oldBody)

	body := ReleaseBody(oldBody, set.Used(all), image)
	logging.DebugContext(ctx, "Setting new release body: %s", body)

	update := &github.RepositoryRelease{
		TagName:         release.TagName,
		TargetCommitish: release.TargetCommitish,
		Name:            release.Name,
		Body:            github.String(body),
		Draft:           release.Draft,
		Prerelease:      release.Prerelease,
	}
	if _, _, err := r.Service.EditRelease(ctx, r.Repo.Owner, r.Repo.Name, release.GetID(), update); err != nil {
		return fmt.Errorf("failed to update release %s of %s: %w", releaseTag, r.Repo, err)
	}
	return nil
}

// ReleaseBody returns oldBody followed by one entry per tag.
func ReleaseBody(oldBody string, used []string, image tags.ImageName) string {
	entries := make([]string, 0, len(used))
	for _, tag := range used {
		entries = append(entries, fmt.Sprintf("\n:package: **[%s](%s)**", image.ForTag(tag, tags.Large), image.URL(tag)))
	}

	var b strings.Builder
	b.WriteString(oldBody)
	if !strings.Contains(oldBody, ReleaseMessage) {
		b.WriteString(ReleaseBodyPrefix)
	}
	b.WriteString(strings.Join(entries, releaseEntrySeparator))
	return b.String()
}
