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

// Package main implements the cloudbuild-action CLI. It builds container
// images on Google Cloud Build from a GitHub Actions workflow or a local
// checkout and reports the result back to GitHub.
package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cowdogmoo/cloudbuild-action/config"
	"github.com/cowdogmoo/cloudbuild-action/logging"
	"github.com/cowdogmoo/cloudbuild-action/storage"
)

// Context key type for storing config
type configKeyType struct{}

var (
	// configKey is the context key for storing the config
	configKey = configKeyType{}

	// Root command options
	cfgFile string
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cloudbuild-action",
		Short: "Build container images on Google Cloud Build",
		Long: `cloudbuild-action packs the selected sources of a repository, builds a
container image from them on Google Cloud Build and reports the pushed
images to GitHub as commit statuses and release notes.

Inside GitHub Actions every setting is read from the action inputs. Locally
the same settings can be passed as flags, CLOUDBUILD_* environment variables
or a config.yaml file.`,
		Version:           version,
		PersistentPreRunE: initConfig,
		RunE:              runBuild,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "Config file (default is $HOME/.config/cloudbuild-action/config.yaml)")
	pf.String("log-level", "", "Log level (debug, info, warn, error)")
	pf.String("log-format", "", "Log format (text, color, json, actions)")
	pf.BoolP("quiet", "q", false, "Quiet mode - only show errors")
	pf.BoolP("verbose", "v", false, "Verbose mode - show debug output")
	config.RegisterFlags(pf)

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newTagsCmd())
	cmd.AddCommand(newArchiveCmd())
	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// configFromContext retrieves the config from the command context.
// Returns nil if no config is stored in context.
func configFromContext(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey).(*config.Config); ok {
		return cfg
	}
	return nil
}

// initConfig initializes configuration with proper precedence:
// CLI Flags > Environment Variables > Config File > Defaults
func initConfig(cmd *cobra.Command, _ []string) error {
	v := config.NewViper()
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return err
	}

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	verbose, _ := cmd.Flags().GetBool("verbose")
	if err := logging.Initialize(cfg.Log.Level, cfg.Log.Format, quiet, verbose); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	logger := logging.Default()
	maskSecrets(logger, cfg)
	logSettings(logger, config.Settings(v, redactSetting))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = logging.WithLogger(ctx, logger)
	cmd.SetContext(ctx)

	return nil
}

// maskSecrets keeps credentials out of the workflow log.
func maskSecrets(logger *logging.CustomLogger, cfg *config.Config) {
	secrets := []string{cfg.GCP.ServiceAccountKey, cfg.GitHub.Token}
	if decoded, err := storage.DecodeServiceAccountKey(cfg.GCP.ServiceAccountKey); err == nil {
		secrets = append(secrets, string(decoded))
	}
	logger.Mask(secrets...)
}

func redactSetting(key, value string) string {
	return logging.RedactSensitivePatterns(logging.RedactSensitiveValue(key, value))
}

func logSettings(logger *logging.CustomLogger, settings map[string]string) {
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	logger.Debug("Effective settings:")
	for _, key := range keys {
		logger.Debug("  %s = %s", key, settings[key])
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
