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

// Package tags computes the image tags of a build from the triggering ref.
package tags

import (
	"fmt"
	"strings"
	"time"

	"github.com/cowdogmoo/cloudbuild-action/trigger"
)

// Set is the ordered list of tags for one build. Primary is always All[0].
type Set struct {
	All     []string `yaml:"all" json:"all"`
	Primary string   `yaml:"primary" json:"primary"`
}

// Used returns every tag when all is set, otherwise only the primary tag.
func (s Set) Used(all bool) []string {
	if all {
		return s.All
	}
	return []string{s.Primary}
}

// Options controls tag generation.
type Options struct {
	Kind           trigger.ActionKind
	NormalizedName string
	// ShortSHA is the seven character commit prefix substituted for $SHA.
	ShortSHA            string
	Template            string
	IncludeLatest       bool
	IncludeBranchLatest bool
	AdditionalTags      []string
	// Now returns the time used for date tokens. Defaults to time.Now.
	Now func() time.Time
}

// Generate returns the tag set for a build. Branch pushes get the expanded
// template as primary tag; tags and other refs use the normalized name.
func Generate(opts Options) Set {
	var all []string

	switch opts.Kind {
	case trigger.Commit:
		all = append(all, expandTemplate(opts))
		if opts.IncludeBranchLatest {
			all = append(all, opts.NormalizedName+"-latest")
		}
	default:
		all = append(all, opts.NormalizedName)
	}

	if opts.IncludeLatest {
		all = append(all, "latest")
	}
	all = append(all, opts.AdditionalTags...)

	return Set{All: all, Primary: all[0]}
}

// expandTemplate substitutes the template tokens in a fixed order.
func expandTemplate(opts Options) string {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	t := now()

	replacements := []struct {
		token string
		value string
	}{
		{"$BRANCH", opts.NormalizedName},
		{"$SHA", opts.ShortSHA},
		{"$YYYY", fmt.Sprintf("%d", t.Year())},
		{"$MM", fmt.Sprintf("%02d", int(t.Month()))},
		{"$DD", fmt.Sprintf("%02d", t.Day())},
		{"$HH", fmt.Sprintf("%02d", t.Hour())},
		{"$mm", fmt.Sprintf("%02d", t.Minute())},
		{"$SS", fmt.Sprintf("%02d", t.Second())},
	}

	out := opts.Template
	for _, r := range replacements {
		out = strings.ReplaceAll(out, r.token, r.value)
	}
	return out
}

// ForTrigger fills the ref dependent options from a trigger context.
func ForTrigger(tc *trigger.Context, opts Options) Options {
	opts.Kind = tc.Kind()
	opts.NormalizedName = tc.NormalizedRefName()
	opts.ShortSHA = tc.ShortSHA()
	return opts
}
