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
	"os"
	"strings"

	"github.com/cowdogmoo/cloudbuild-action/config"
	"github.com/cowdogmoo/cloudbuild-action/logging"
)

// Output names published to the workflow.
const (
	OutputFullImageName = "full-image-name"
	OutputImageTags     = "image-tags"
)

// Outputs are the values a successful run publishes.
type Outputs struct {
	FullImageName string
	ImageTags     []string
}

// Pairs returns the outputs as ordered name/value pairs.
func (o *Outputs) Pairs() [][2]string {
	return [][2]string{
		{OutputFullImageName, o.FullImageName},
		{OutputImageTags, strings.Join(o.ImageTags, ",")},
	}
}

// WriteOutputs appends name=value lines to the GitHub output file at path.
// Without a path the outputs are only logged.
func WriteOutputs(ctx context.Context, path string, o *Outputs) error {
	if path == "" {
		for _, kv := range o.Pairs() {
			logging.InfoContext(ctx, "Output %s=%s", kv[0], kv[1])
		}
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, config.FilePermReadWrite)
	if err != nil {
		return fmt.Errorf("failed to open output file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	for _, kv := range o.Pairs() {
		if strings.ContainsAny(kv[1], "\r\n") {
			return fmt.Errorf("output %s contains a line break", kv[0])
		}
		if _, err := fmt.Fprintf(f, "%s=%s\n", kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to write output %s: %w", kv[0], err)
		}
		logging.DebugContext(ctx, "Set output %s=%s", kv[0], kv[1])
	}
	return nil
}
