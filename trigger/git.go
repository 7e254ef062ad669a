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

package trigger

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

// ResolveFromGit reads the current ref, commit and origin repository from the
// git repository containing dir. A detached HEAD yields the commit hash as ref.
func ResolveFromGit(dir string) (Env, error) {
	if dir == "" {
		dir = "."
	}

	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Env{}, fmt.Errorf("failed to open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return Env{}, fmt.Errorf("failed to read HEAD: %w", err)
	}

	env := Env{
		SHA: head.Hash().String(),
		Ref: head.Hash().String(),
	}
	if head.Name().IsBranch() || head.Name().IsTag() {
		env.Ref = head.Name().String()
	}

	if remote, err := repo.Remote("origin"); err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			env.Repository = RepositoryFromURL(urls[0])
		}
	}

	return env, nil
}

// RepositoryFromURL extracts "owner/name" from a git remote URL in SSH or
// HTTPS form. It returns an empty string when the path has no owner.
func RepositoryFromURL(remoteURL string) string {
	ep, err := transport.NewEndpoint(remoteURL)
	if err != nil {
		return ""
	}

	path := strings.Trim(strings.TrimSuffix(ep.Path, ".git"), "/")
	parts := strings.Split(path, "/")
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
