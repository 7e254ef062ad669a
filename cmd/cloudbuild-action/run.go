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
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cowdogmoo/cloudbuild-action/cli"
	"github.com/cowdogmoo/cloudbuild-action/config"
	"github.com/cowdogmoo/cloudbuild-action/logging"
	"github.com/cowdogmoo/cloudbuild-action/runner"
	"github.com/cowdogmoo/cloudbuild-action/trigger"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Build the image on Cloud Build and report to GitHub",
		Long: `Run packs the configured sources, uploads them to Cloud Storage, builds
the image on Cloud Build and, depending on the trigger, sets commit statuses
or appends the images to the release notes. This is also what the root
command does when no subcommand is given.`,
		Args: cobra.NoArgs,
		RunE: runBuild,
	}
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg := configFromContext(cmd)
	if cfg == nil {
		return fmt.Errorf("configuration not initialized")
	}

	if err := cli.NewValidator().ValidateRunOptions(cli.RunCLIOptions{
		ConfigFile:  cfgFile,
		SummaryFile: cfg.Build.SummaryFile,
	}); err != nil {
		return err
	}
	tc, triggerErr := runner.ResolveTrigger(cmd.Context(), cfg)
	if triggerErr != nil {
		logging.DebugContext(cmd.Context(), "Could not resolve trigger: %v", triggerErr)
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if triggerErr != nil {
		return triggerErr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return executeRun(ctx, cfg, tc, runner.NewServices)
}

// servicesFactory creates the remote clients of a run.
type servicesFactory func(ctx context.Context, cfg *config.Config) (*runner.Services, error)

func executeRun(ctx context.Context, cfg *config.Config, tc *trigger.Context, newServices servicesFactory) error {
	svcs, err := newServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svcs.Close(ctx)

	_, err = runner.New(cfg, svcs, tc).Run(ctx)
	return err
}
