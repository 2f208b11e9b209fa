// Package registry manages the set of named projects time can be tracked
// against, including the metadata carried into CSV exports.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marender/immertrack/internal/model"
	"github.com/marender/immertrack/internal/timeutil"
)

// Registry holds the project list backed by a single JSON file.
type Registry struct {
	path     string
	projects []model.Project
}

func defaultProjects(now time.Time) []model.Project {
	return []model.Project{
		{ID: timeutil.GenerateID(now), Name: "Project 1", Color: "#F87171", Icon: "Briefcase"},
		{ID: timeutil.GenerateID(now), Name: "Project 2", Color: "#A78BFA", Icon: "Code"},
		{ID: timeutil.GenerateID(now), Name: "Project 3", Color: "#86EFAC", Icon: "Palette"},
	}
}

// Load reads the project list from path, seeding and saving a default set
// on first run.
func Load(path string) (*Registry, error) {
	r := &Registry{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		r.projects = defaultProjects(time.Now())
		if saveErr := r.Save(); saveErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create project file %s: %v\n", path, saveErr)
		}
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading project file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &r.projects); err != nil {
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return nil, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return r, nil
}

// Save atomically writes the project list.
func (r *Registry) Save() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(r.projects, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	tmpPath := r.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, r.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// Projects returns all projects in registry order, archived ones included.
func (r *Registry) Projects() []model.Project {
	return append([]model.Project(nil), r.projects...)
}

// Active returns the non-archived projects in registry order.
func (r *Registry) Active() []model.Project {
	var out []model.Project
	for _, p := range r.projects {
		if !p.Archived {
			out = append(out, p)
		}
	}
	return out
}

// Get returns the project with the given ID.
func (r *Registry) Get(id string) (model.Project, bool) {
	for _, p := range r.projects {
		if p.ID == id {
			return p, true
		}
	}
	return model.Project{}, false
}

// Resolve finds a project by ID or, failing that, by case-insensitive name.
func (r *Registry) Resolve(ref string) (model.Project, bool) {
	if p, ok := r.Get(ref); ok {
		return p, true
	}
	for _, p := range r.projects {
		if strings.EqualFold(p.Name, ref) {
			return p, true
		}
	}
	return model.Project{}, false
}

// Add appends a new project, assigning it an ID, and returns it.
func (r *Registry) Add(p model.Project) model.Project {
	p.ID = timeutil.GenerateID(time.Now())
	r.projects = append(r.projects, p)
	return p
}

// Update replaces the stored project with the same ID. Unknown IDs are a
// no-op and report false.
func (r *Registry) Update(p model.Project) bool {
	for i := range r.projects {
		if r.projects[i].ID == p.ID {
			r.projects[i] = p
			return true
		}
	}
	return false
}

// Remove deletes the project with the given ID.
func (r *Registry) Remove(id string) bool {
	for i := range r.projects {
		if r.projects[i].ID == id {
			r.projects = append(r.projects[:i], r.projects[i+1:]...)
			return true
		}
	}
	return false
}

// SetArchived flips a project's archived flag.
func (r *Registry) SetArchived(id string, archived bool) bool {
	for i := range r.projects {
		if r.projects[i].ID == id {
			r.projects[i].Archived = archived
			return true
		}
	}
	return false
}
