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

package tags

import (
	"fmt"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
)

// Length selects how much of an image reference is rendered.
type Length string

// Image name lengths, from fully qualified to the bare tag.
const (
	Large  Length = "large"
	Medium Length = "medium"
	Small  Length = "small"
	Tiny   Length = "tiny"
)

// ImageName identifies an image in a Container Registry project.
type ImageName struct {
	Host      string
	ProjectID string
	Name      string
}

// Full returns host/project/name without a tag.
func (n ImageName) Full() string {
	return fmt.Sprintf("%s/%s/%s", n.Host, n.ProjectID, n.Name)
}

// ForTag renders the image reference for tag at the given length. Unknown
// lengths render the bare tag.
func (n ImageName) ForTag(tag string, length Length) string {
	switch length {
	case Large:
		return fmt.Sprintf("%s/%s/%s:%s", n.Host, n.ProjectID, n.Name, tag)
	case Medium:
		return fmt.Sprintf("%s/%s:%s", n.ProjectID, n.Name, tag)
	case Small:
		return fmt.Sprintf("%s:%s", n.Name, tag)
	default:
		return tag
	}
}

// ForTags renders every tag at the given length.
func (n ImageName) ForTags(tags []string, length Length) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, n.ForTag(tag, length))
	}
	return out
}

// URL returns the lowercase registry URL of the tagged image.
func (n ImageName) URL(tag string) string {
	return strings.ToLower("https://" + n.ForTag(tag, Large))
}

// Validate checks that every tag forms a valid image reference.
func (n ImageName) Validate(tags []string) error {
	for _, tag := range tags {
		ref := n.ForTag(tag, Large)
		if _, err := name.NewTag(ref, name.StrictValidation); err != nil {
			return fmt.Errorf("invalid image reference %q: %w", ref, err)
		}
	}
	return nil
}
