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

package builder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cowdogmoo/cloudbuild-action/config"
	"github.com/cowdogmoo/cloudbuild-action/logging"
)

const digestWidth = 15

// FormatFailure renders the error of a failed result as a multi-line message.
func FormatFailure(r *Result) string {
	if r == nil || r.Error == nil {
		return ""
	}
	logsURL := r.LogsURL
	if logsURL == "" {
		logsURL = NotFound
	}
	return "Cloud Build failed.\n" +
		fmt.Sprintf("%-14s%s\n", "Message: ", r.Error.Message) +
		fmt.Sprintf("%-14s%d\n", "Code: ", r.Error.Code) +
		fmt.Sprintf("%-14s%s", "Build Logs: ", logsURL)
}

// ImageSummary renders the images of a successful result as a table of
// names and shortened digests.
func ImageSummary(r *Result) []string {
	if r == nil || r.Output == nil || len(r.Output.Images) == 0 {
		return []string{"No images built."}
	}

	longest := 0
	for _, img := range r.Output.Images {
		if len(img.Name) > longest {
			longest = len(img.Name)
		}
	}
	nameWidth := longest + 4

	lines := []string{
		"Built the following images:",
		"",
		fmt.Sprintf("%-*s%-*s", nameWidth, "IMAGE", digestWidth, "DIGEST"),
		strings.Repeat("=", nameWidth+digestWidth),
	}
	for _, img := range r.Output.Images {
		digest := img.Digest
		if len(digest) > digestWidth {
			digest = digest[:digestWidth]
		}
		lines = append(lines, fmt.Sprintf("%-*s%-*s", nameWidth, img.Name, digestWidth, digest))
	}
	return lines
}

// LogImageSummary logs the build logs location and the image table.
func LogImageSummary(ctx context.Context, r *Result) {
	logging.InfoContext(ctx, "Build was successful!")
	logging.InfoContext(ctx, "Build logs are available here: %s", r.LogsURL)
	for _, line := range ImageSummary(r) {
		logging.InfoContext(ctx, "%s", line)
	}
}

// Summary is the machine readable record of a run.
type Summary struct {
	Image      string   `yaml:"image" json:"image"`
	Tags       []string `yaml:"tags" json:"tags"`
	PrimaryTag string   `yaml:"primary_tag" json:"primary_tag"`
	Ref        string   `yaml:"ref" json:"ref"`
	SHA        string   `yaml:"sha" json:"sha"`
	Result     *Result  `yaml:"result" json:"result"`
}

// WriteSummaryFile writes the summary as YAML to path.
func WriteSummaryFile(path string, s *Summary) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.WriteFile(path, data, config.FilePermReadWrite); err != nil {
		return fmt.Errorf("failed to write summary file %s: %w", path, err)
	}
	return nil
}
