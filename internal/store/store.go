// Package store persists the plan file: the trips and constraints the
// planning engine operates on. The engine never calls back into this
// package; callers load a Plan and hand its slices to the engine.
package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"tripcal/internal/model"
)

// Plan is the on-disk document.
type Plan struct {
	Trips       []model.Event      `yaml:"trips" json:"trips"`
	Constraints []model.Constraint `yaml:"constraints" json:"constraints"`
}

// ActiveEvents returns the trips the engine should consider, excluding
// archived ones. Archiving is a caller convention; the engine itself
// never filters.
func (p *Plan) ActiveEvents() []model.Event {
	out := make([]model.Event, 0, len(p.Trips))
	for _, t := range p.Trips {
		if t.Archived {
			continue
		}
		out = append(out, t)
	}
	return out
}

// NewID returns a fresh opaque id for trips/constraints created through
// the API or CLI.
func NewID() string {
	return uuid.NewString()
}

// Load reads the plan from the given YAML path. A missing file is not
// an error: planning starts from an empty plan.
func Load(path string) (*Plan, error) {
	if path == "" {
		return nil, errors.New("plan path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Plan{}, nil
		}
		return nil, err
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Save writes the plan atomically (temp file + rename, 0600), matching
// the config writer so a crash never leaves a half-written plan.
func Save(path string, plan *Plan) error {
	if path == "" {
		return errors.New("plan path is empty")
	}
	if plan == nil {
		return errors.New("plan is nil")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(plan)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".tripcal-plan-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
