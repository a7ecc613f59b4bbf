// ABOUTME: Standard filesystem paths for intentd configuration
// ABOUTME: Resolves ~/.intentd/ for global and .intentd/ for project-local config.yaml or config.toml

package config

import (
	"os"
	"path/filepath"
)

const (
	globalDirName  = ".intentd"
	projectDirName = ".intentd"
	configFileName = "config.yaml"
	tomlFileName   = "config.toml"
)

// GlobalDir returns the user-global config directory (~/.intentd/).
func GlobalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", globalDirName)
	}
	return filepath.Join(home, globalDirName)
}

// ProjectDir returns the project-local config directory (.intentd/ in root).
func ProjectDir(projectRoot string) string {
	return filepath.Join(projectRoot, projectDirName)
}

// GlobalConfigFile returns the path to the global config file.
func GlobalConfigFile() string {
	return filepath.Join(GlobalDir(), configFileName)
}

// ProjectConfigFile returns the path to the project-local config file.
func ProjectConfigFile(projectRoot string) string {
	return filepath.Join(ProjectDir(projectRoot), configFileName)
}

// Files returns every config file Load considers, lowest precedence first:
// global YAML, global TOML, project YAML, project TOML.
func Files(projectRoot string) []string {
	global, project := GlobalDir(), ProjectDir(projectRoot)
	return []string{
		filepath.Join(global, configFileName),
		filepath.Join(global, tomlFileName),
		filepath.Join(project, configFileName),
		filepath.Join(project, tomlFileName),
	}
}
