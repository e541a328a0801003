package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ProjectsRegistry holds the list of repositories that have a board
type ProjectsRegistry struct {
	Projects []Project `json:"projects"`
}

// Project represents a registered repository
type Project struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	LastOpened time.Time `json:"lastOpened"`
}

var (
	// ErrProjectNotFound is returned when a project doesn't exist in the registry
	ErrProjectNotFound = errors.New("project not found")
	// ErrEmptyName is returned when the project name is empty
	ErrEmptyName = errors.New("project name cannot be empty")
	// ErrEmptyPath is returned when the project path is empty
	ErrEmptyPath = errors.New("project path cannot be empty")
)

// LoadProjectsRegistry loads the projects registry from disk
// Returns an empty registry if the file doesn't exist
func LoadProjectsRegistry() (*ProjectsRegistry, error) {
	path, err := registryPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &ProjectsRegistry{Projects: []Project{}}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var registry ProjectsRegistry
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse projects registry: %w", err)
	}

	return &registry, nil
}

// SaveProjectsRegistry saves the projects registry to disk
func SaveProjectsRegistry(reg *ProjectsRegistry) error {
	path, err := registryPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Register records repoRoot as opened at now. Unknown repositories are added
// under their directory name, suffixed when the name is taken.
func (r *ProjectsRegistry) Register(repoRoot string, now time.Time) (*Project, error) {
	if repoRoot == "" {
		return nil, ErrEmptyPath
	}

	clean := filepath.Clean(repoRoot)
	for i := range r.Projects {
		if filepath.Clean(r.Projects[i].Path) == clean {
			r.Projects[i].LastOpened = now.UTC()
			return &r.Projects[i], nil
		}
	}

	r.Projects = append(r.Projects, Project{
		Name:       r.uniqueName(filepath.Base(clean)),
		Path:       clean,
		LastOpened: now.UTC(),
	})
	return &r.Projects[len(r.Projects)-1], nil
}

func (r *ProjectsRegistry) uniqueName(base string) string {
	name := base
	for n := 2; ; n++ {
		if _, err := r.Get(name); errors.Is(err, ErrProjectNotFound) {
			return name
		}
		name = fmt.Sprintf("%s-%d", base, n)
	}
}

// Remove removes a project from the registry
func (r *ProjectsRegistry) Remove(name string) error {
	if name == "" {
		return ErrEmptyName
	}

	for i, p := range r.Projects {
		if p.Name == name {
			r.Projects = append(r.Projects[:i], r.Projects[i+1:]...)
			return nil
		}
	}

	return ErrProjectNotFound
}

// Get retrieves a project by name
func (r *ProjectsRegistry) Get(name string) (*Project, error) {
	for _, p := range r.Projects {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, ErrProjectNotFound
}

// FindByPath finds the project containing path
func (r *ProjectsRegistry) FindByPath(path string) *Project {
	cleanPath := filepath.Clean(path)

	for _, p := range r.Projects {
		cleanProjectPath := filepath.Clean(p.Path)
		if cleanProjectPath == cleanPath || strings.HasPrefix(cleanPath, cleanProjectPath+string(filepath.Separator)) {
			return &p
		}
	}
	return nil
}

// registryPath is a variable holding the function that returns the path to the projects registry file
// This allows it to be overridden in tests
var registryPath = func() (string, error) {
	root, err := RootDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "projects.json"), nil
}
