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

package cli

// RunCLIOptions defines command-line options for the run command that are
// checked before the configuration is loaded.
type RunCLIOptions struct {
	// ConfigFile specifies the path to the configuration file.
	ConfigFile string

	// SummaryFile specifies where the YAML build summary is written.
	SummaryFile string
}

// TagsCLIOptions defines command-line options for the tags command.
type TagsCLIOptions struct {
	// Format selects how the tags are printed: text, table, json or yaml.
	Format string
}

// ArchiveCLIOptions defines command-line options for the archive command.
type ArchiveCLIOptions struct {
	// Output is the path of the archive to write.
	Output string

	// List only prints the matched sources without writing an archive.
	List bool
}
