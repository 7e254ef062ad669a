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
	"time"

	"github.com/spf13/cobra"

	"github.com/cowdogmoo/cloudbuild-action/cli"
	"github.com/cowdogmoo/cloudbuild-action/config"
	"github.com/cowdogmoo/cloudbuild-action/runner"
	"github.com/cowdogmoo/cloudbuild-action/tags"
)

func newTagsCmd() *cobra.Command {
	opts := cli.TagsCLIOptions{}
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Print the tags a build of the current ref would get",
		Example: `  # Tags for the checked out branch
  cloudbuild-action tags --image-name app --gcp-project-id my-project

  # Tags for a release
  cloudbuild-action tags --ref refs/tags/v1.2.0 --image-tag-latest --format table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTags(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Format, "format", "text", "Output format (text, table, json, yaml)")
	return cmd
}

func runTags(cmd *cobra.Command, opts cli.TagsCLIOptions) error {
	if err := cli.NewValidator().ValidateTagsOptions(opts); err != nil {
		return err
	}

	cfg := configFromContext(cmd)
	if cfg == nil {
		return fmt.Errorf("configuration not initialized")
	}

	tc, err := runner.ResolveTrigger(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if err := config.ValidateTagging(cfg); err != nil {
		return err
	}

	image := runner.ImageName(cfg)
	set := tags.Generate(runner.TagOptions(cfg, tc, time.Now))
	if cfg.Image.Name != "" && cfg.GCP.ProjectID != "" {
		if err := image.Validate(set.All); err != nil {
			return err
		}
	}

	return cli.NewOutputFormatter(opts.Format).
		WithWriter(cmd.OutOrStdout()).
		DisplayTags(cli.NewTagListing(image, set))
}
