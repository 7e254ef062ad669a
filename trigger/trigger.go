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

// Package trigger describes the git event that started a build: which kind
// of ref was pushed, its name, and the name normalized for use in image tags.
package trigger

import (
	"context"
	"fmt"
	"strings"

	"github.com/cowdogmoo/cloudbuild-action/logging"
)

// ActionKind classifies the ref that triggered a run.
type ActionKind int

// Kinds of triggering refs.
const (
	Other ActionKind = iota
	Commit
	Tag
)

const (
	headsPrefix = "refs/heads/"
	tagsPrefix  = "refs/tags/"
)

// String returns the lowercase name of the kind.
func (k ActionKind) String() string {
	switch k {
	case Commit:
		return "commit"
	case Tag:
		return "tag"
	default:
		return "other"
	}
}

// Classify splits a fully qualified git ref into its kind and raw name.
// Branch and tag refs lose their prefix; any other ref is returned unchanged
// as kind Other and a warning is logged.
func Classify(ctx context.Context, ref string) (ActionKind, string) {
	switch {
	case strings.HasPrefix(ref, headsPrefix):
		return Commit, ref[len(headsPrefix):]
	case strings.HasPrefix(ref, tagsPrefix):
		return Tag, ref[len(tagsPrefix):]
	default:
		logging.WarnContext(ctx, "Unrecognized GITHUB_REF found: %s", ref)
		return Other, ref
	}
}

// Normalize replaces every character outside [A-Za-z0-9._-] with an
// underscore. Each rune is replaced by exactly one underscore.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}

// Env carries the runner provided description of the triggering event.
type Env struct {
	Ref        string
	SHA        string
	EventName  string
	Repository string
	Workspace  string
}

// Context is the immutable description of the current run's trigger.
type Context struct {
	ref               string
	kind              ActionKind
	refName           string
	normalizedRefName string
	sha               string
	eventName         string
	repository        string
	workspace         string
}

// New builds the trigger context for a run. Missing ref or SHA values are
// resolved from the git repository containing the workspace.
func New(ctx context.Context, env Env) (*Context, error) {
	if env.Ref == "" || env.SHA == "" || env.Repository == "" {
		resolved, err := ResolveFromGit(env.Workspace)
		switch {
		case err == nil:
			env = mergeEnv(env, resolved)
		case env.Ref == "" || env.SHA == "":
			return nil, fmt.Errorf("failed to resolve trigger from git: %w", err)
		default:
			logging.DebugContext(ctx, "Could not read git repository in %s: %v", env.Workspace, err)
		}
	}

	if env.Ref == "" {
		return nil, fmt.Errorf("git ref is unknown: set GITHUB_REF or run inside a git repository")
	}

	kind, name := Classify(ctx, env.Ref)
	return &Context{
		ref:               env.Ref,
		kind:              kind,
		refName:           name,
		normalizedRefName: Normalize(name),
		sha:               env.SHA,
		eventName:         env.EventName,
		repository:        env.Repository,
		workspace:         env.Workspace,
	}, nil
}

func mergeEnv(env, resolved Env) Env {
	if env.Ref == "" {
		env.Ref = resolved.Ref
	}
	if env.SHA == "" {
		env.SHA = resolved.SHA
	}
	if env.Repository == "" {
		env.Repository = resolved.Repository
	}
	return env
}

// Ref returns the fully qualified ref.
func (c *Context) Ref() string { return c.ref }

// Kind returns the ref classification.
func (c *Context) Kind() ActionKind { return c.kind }

// RefName returns the branch or tag name without its prefix.
func (c *Context) RefName() string { return c.refName }

// NormalizedRefName returns RefName with unsafe characters replaced.
func (c *Context) NormalizedRefName() string { return c.normalizedRefName }

// SHA returns the commit hash.
func (c *Context) SHA() string { return c.sha }

// EventName returns the GitHub event name, empty for local runs.
func (c *Context) EventName() string { return c.eventName }

// Repository returns the owner/name of the repository.
func (c *Context) Repository() string { return c.repository }

// Workspace returns the checkout directory.
func (c *Context) Workspace() string { return c.workspace }

// ShortSHA returns the first seven characters of the commit hash.
func (c *Context) ShortSHA() string {
	if len(c.sha) > 7 {
		return c.sha[:7]
	}
	return c.sha
}

// IsRelease reports whether the run was triggered by a release event.
func (c *Context) IsRelease() bool {
	return c.eventName == "release"
}

// OwnerRepo splits the repository into owner and name.
func (c *Context) OwnerRepo() (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(c.repository, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/name", c.repository)
	}
	return owner, repo, nil
}
