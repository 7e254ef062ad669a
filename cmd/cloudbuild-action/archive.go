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

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cowdogmoo/cloudbuild-action/archive"
	"github.com/cowdogmoo/cloudbuild-action/cli"
	"github.com/cowdogmoo/cloudbuild-action/logging"
)

func newArchiveCmd() *cobra.Command {
	opts := cli.ArchiveCLIOptions{}
	var format string
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Build the Cloud Build input archive locally",
		Long: `Archive resolves the image-sources patterns against the workspace and
writes the same tar.gz that a run would upload, without contacting Google
Cloud. Use --list to only print the matched paths.`,
		Example: `  cloudbuild-action archive --image-sources 'Dockerfile,src' --output build.tgz
  cloudbuild-action archive --image-sources '**/*.go' --list`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runArchive(cmd, opts, format)
		},
	}
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "build.tgz", "Path of the archive to write")
	cmd.Flags().BoolVar(&opts.List, "list", false, "Only list the matched sources")
	cmd.Flags().StringVar(&format, "format", "text", "List format (text, json, yaml)")
	return cmd
}

func runArchive(cmd *cobra.Command, opts cli.ArchiveCLIOptions, format string) error {
	if err := cli.NewValidator().ValidateArchiveOptions(opts); err != nil {
		return err
	}

	cfg := configFromContext(cmd)
	if cfg == nil {
		return fmt.Errorf("configuration not initialized")
	}
	if len(cfg.Image.Sources) == 0 {
		return fmt.Errorf("input required and not supplied: image-sources")
	}

	ctx := cmd.Context()
	builder, err := archive.New(cfg.Trigger.Workspace)
	if err != nil {
		return err
	}

	if opts.List {
		matches, err := builder.Resolve(ctx, cfg.Image.Sources)
		if err != nil {
			return err
		}
		return cli.NewOutputFormatter(format).WithWriter(cmd.OutOrStdout()).DisplayFiles(matches)
	}

	workDir, err := os.MkdirTemp("", "cloudbuild-action-")
	if err != nil {
		return fmt.Errorf("failed to create work directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	if err := builder.Build(ctx, cfg.Image.Sources, opts.Output, filepath.Join(workDir, cfg.Build.StagingDir)); err != nil {
		return err
	}

	logging.InfoContext(ctx, "Wrote %s", opts.Output)
	return nil
}
