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

// Package forge reports build results back to GitHub: commit statuses on the
// built commit and an image list in the release notes.
package forge

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v65/github"
)

// StatusService is the part of the GitHub repositories API used for commit
// statuses.
type StatusService interface {
	CreateStatus(ctx context.Context, owner, repo, ref string, status *github.RepoStatus) (*github.RepoStatus, *github.Response, error)
}

// ReleaseService is the part of the GitHub repositories API used for
// releases.
type ReleaseService interface {
	GetReleaseByTag(ctx context.Context, owner, repo, tag string) (*github.RepositoryRelease, *github.Response, error)
	EditRelease(ctx context.Context, owner, repo string, id int64, release *github.RepositoryRelease) (*github.RepositoryRelease, *github.Response, error)
}

// Repository identifies a GitHub repository.
type Repository struct {
	Owner string
	Name  string
}

// ParseRepository splits "owner/name".
func ParseRepository(s string) (Repository, error) {
	owner, name, ok := strings.Cut(s, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repository{}, fmt.Errorf("invalid repository %q: expected owner/name", s)
	}
	return Repository{Owner: owner, Name: name}, nil
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// NewClient returns a GitHub client authenticated with token. A non-empty
// apiURL other than the public API points the client at a GitHub Enterprise
// Server.
func NewClient(token, apiURL string) (*github.Client, error) {
	client := github.NewClient(nil).WithAuthToken(token)

	apiURL = strings.TrimRight(apiURL, "/")
	if apiURL == "" || apiURL == "https://api.github.com" {
		return client, nil
	}

	client, err := client.WithEnterpriseURLs(apiURL+"/", apiURL+"/")
	if err != nil {
		return nil, fmt.Errorf("failed to configure GitHub API URL %s: %w", apiURL, err)
	}
	return client, nil
}
