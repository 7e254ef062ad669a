//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	// mage utility functions
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

func init() {
	os.Setenv("GO111MODULE", "on")
}

// InstallDeps downloads the module dependencies and tidies go.mod.
func InstallDeps() error {
	fmt.Println(color.YellowString("Installing dependencies."))

	cwd, err := changeToRepoRoot()
	if err != nil {
		return err
	}
	defer os.Chdir(cwd)

	if err := sh.RunV("go", "mod", "download"); err != nil {
		return fmt.Errorf(color.RedString("failed to download modules: %v", err))
	}
	if err := sh.RunV("go", "mod", "tidy"); err != nil {
		return fmt.Errorf(color.RedString("failed to tidy go.mod: %v", err))
	}
	return nil
}

// GenerateSchema writes the JSON schema of the config file to
// schema/config.json.
//
// Example usage:
//
// ```go
// mage generateschema
// ```
func GenerateSchema() error {
	mg.Deps(InstallDeps)

	cwd, err := changeToRepoRoot()
	if err != nil {
		return err
	}
	defer os.Chdir(cwd)

	output := filepath.Join("schema", "config.json")
	fmt.Println(color.YellowString("Generating %s.", output))
	return sh.RunV("go", "run", "./cmd/cloudbuild-action", "schema", "--output", output)
}
