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

// Package cli holds the option types, validation and output formatting shared
// by the command-line entry points.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/cowdogmoo/cloudbuild-action/tags"
)

// OutputFormatter prints command results in the selected format.
type OutputFormatter struct {
	format string
	w      io.Writer
}

// NewOutputFormatter creates a formatter writing to stdout.
func NewOutputFormatter(format string) *OutputFormatter {
	return &OutputFormatter{format: format, w: os.Stdout}
}

// WithWriter redirects the formatter output.
func (f *OutputFormatter) WithWriter(w io.Writer) *OutputFormatter {
	f.w = w
	return f
}

// TagListing is the printable form of a computed tag set.
type TagListing struct {
	Image   string   `json:"image" yaml:"image"`
	Primary string   `json:"primary" yaml:"primary"`
	Tags    []string `json:"tags" yaml:"tags"`
	Images  []string `json:"images" yaml:"images"`
}

// NewTagListing describes set for image.
func NewTagListing(image tags.ImageName, set tags.Set) TagListing {
	return TagListing{
		Image:   image.Full(),
		Primary: set.Primary,
		Tags:    set.All,
		Images:  image.ForTags(set.All, tags.Large),
	}
}

// DisplayTags prints the tags of a listing.
func (f *OutputFormatter) DisplayTags(listing TagListing) error {
	switch f.format {
	case "json":
		enc := json.NewEncoder(f.w)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	case "yaml":
		enc := yaml.NewEncoder(f.w)
		enc.SetIndent(2)
		if err := enc.Encode(listing); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		tw := tabwriter.NewWriter(f.w, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "TAG\tPRIMARY\tIMAGE")
		for i, tag := range listing.Tags {
			primary := ""
			if tag == listing.Primary {
				primary = "yes"
			}
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", tag, primary, listing.Images[i])
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(f.w, "\nTotal tags: %d\n", len(listing.Tags))
		return err
	default:
		for _, tag := range listing.Tags {
			if _, err := fmt.Fprintln(f.w, tag); err != nil {
				return err
			}
		}
		return nil
	}
}

// DisplayFiles prints one path per line, or a JSON/YAML list.
func (f *OutputFormatter) DisplayFiles(files []string) error {
	switch f.format {
	case "json":
		return json.NewEncoder(f.w).Encode(files)
	case "yaml":
		return yaml.NewEncoder(f.w).Encode(files)
	default:
		for _, file := range files {
			if _, err := fmt.Fprintln(f.w, file); err != nil {
				return err
			}
		}
		return nil
	}
}
