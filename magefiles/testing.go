//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/l50/goutils/v2/git"
	"github.com/l50/goutils/v2/sys"

	// mage utility functions
	"github.com/magefile/mage/sh"
)

type compileParams struct {
	GOOS   string
	GOARCH string
}

var repoRoot string

func init() {
	var err error
	repoRoot, err = git.RepoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get repo root: %v\n", err)
		os.Exit(1)
	}
}

func (p *compileParams) populateFromEnv() {
	if p.GOOS == "" {
		p.GOOS = os.Getenv("GOOS")
		if p.GOOS == "" {
			p.GOOS = runtime.GOOS
		}
	}

	if p.GOARCH == "" {
		p.GOARCH = os.Getenv("GOARCH")
		if p.GOARCH == "" {
			p.GOARCH = runtime.GOARCH
		}
	}
}

// Compile builds the cloudbuild-action binary into bin/ for the target
// platform. GOOS and GOARCH default to the current system.
//
// Example usage:
//
// ```go
// mage compile
// GOOS=linux GOARCH=amd64 mage compile
// ```
//
// **Returns:**
//
// error: An error if any issue occurs during compilation.
func Compile() error {
	cwd, err := changeToRepoRoot()
	if err != nil {
		return err
	}
	defer os.Chdir(cwd)

	var p compileParams
	p.populateFromEnv()

	commit, err := sh.Output("git", "rev-parse", "HEAD")
	if err != nil {
		commit = "none"
	}
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}

	ldflags := fmt.Sprintf("-s -w -X main.version=%s -X main.commit=%s -X main.date=%s",
		version, commit, time.Now().UTC().Format(time.RFC3339))
	output := filepath.Join("bin", fmt.Sprintf("cloudbuild-action-%s-%s", p.GOOS, p.GOARCH))

	fmt.Printf("Compiling cloudbuild-action for %s/%s, please wait.\n", p.GOOS, p.GOARCH)
	env := map[string]string{"GOOS": p.GOOS, "GOARCH": p.GOARCH, "CGO_ENABLED": "0"}
	if err := sh.RunWithV(env, "go", "build", "-ldflags", ldflags, "-o", output, "./cmd/cloudbuild-action"); err != nil {
		return fmt.Errorf("go build failed: %v", err)
	}
	return nil
}
func changeToRepoRoot() (originalCwd string, err error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %v", err)
	}

	if cwd != repoRoot {
		if err := os.Chdir(repoRoot); err != nil {
			return "", fmt.Errorf("failed to change directory to repo root: %v", err)
		}
	}

	return cwd, nil
}

// RunTests executes all unit tests.
//
// Example usage:
//
// ```go
// mage runtests
// ```
//
// **Returns:**
//
// error: An error if any issue occurs while running the tests.
func RunTests() error {
	fmt.Println("Running unit tests.")
	if !sys.CmdExists("go") {
		return fmt.Errorf("go is not installed")
	}

	cwd, err := changeToRepoRoot()
	if err != nil {
		return err
	}
	defer os.Chdir(cwd)

	if err := sh.RunV("go", "test", "-race", "-count=1", "./..."); err != nil {
		return fmt.Errorf("failed to run unit tests: %v", err)
	}
	return nil
}
