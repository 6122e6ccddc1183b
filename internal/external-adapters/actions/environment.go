package actions

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sethvargo/go-githubactions"
)

// Environment implements interfaces.Environment on top of the runner's
// INPUT_* variables and GITHUB_OUTPUT / GITHUB_PATH files
type Environment struct {
	action *githubactions.Action
}

// NewEnvironment creates an environment backed by action
func NewEnvironment(action *githubactions.Action) *Environment {
	return &Environment{action: action}
}

// Input returns the trimmed value of the named action input
func (e *Environment) Input(name string) string {
	return e.action.GetInput(name)
}

// Getenv reads a variable through the action, so tests can inject the environment
func (e *Environment) Getenv(key string) string {
	return e.action.Getenv(key)
}

// SetOutput publishes a step output
func (e *Environment) SetOutput(name, value string) error {
	if name == "" {
		return fmt.Errorf("output name must not be empty")
	}
	e.action.SetOutput(name, value)
	return nil
}

// AddPath makes dir visible on PATH to later steps and to this process
func (e *Environment) AddPath(dir string) error {
	if !filepath.IsAbs(dir) {
		return fmt.Errorf("path %s must be absolute", dir)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to add %s to PATH: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("failed to add %s to PATH: not a directory", dir)
	}

	e.action.AddPath(dir)

	if err := os.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH")); err != nil {
		return fmt.Errorf("failed to update PATH: %w", err)
	}
	return nil
}
