// Package scenario loads encounter scenarios from YAML: the arena, the target's route and the groups of
// combatants that converge on it.
package scenario

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/gauntlet/internal/game/dice"
	"github.com/cory-johannsen/gauntlet/internal/game/nav"
	"github.com/cory-johannsen/gauntlet/internal/game/space"
)

// Point is a ground-plane position.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Vec converts p to a space.Vec2.
func (p Point) Vec() space.Vec2 { return space.V(p.X, p.Y) }

// Arena is the walkable ground as WKT polygons.
type Arena struct {
	Bounds    string   `yaml:"bounds"`
	Obstacles []string `yaml:"obstacles"`
}

// Target describes the common target. With a route it walks the waypoints in order at Speed and loops.
type Target struct {
	Position Point   `yaml:"position"`
	Route    []Point `yaml:"route"`
	Speed    float64 `yaml:"speed"`
	Health   float64 `yaml:"health"`
}

// Group spawns Count combatants scattered within Spread of Spawn.
type Group struct {
	Name   string  `yaml:"name"`
	Count  int     `yaml:"count"`
	Spawn  Point   `yaml:"spawn"`
	Spread float64 `yaml:"spread"`
}

// Position draws one spawn position, uniform over the spread disc.
func (g *Group) Position(src dice.Source) space.Vec2 {
	r := g.Spread * math.Sqrt(src.Float64())
	return g.Spawn.Vec().Add(space.DirFromAngle(dice.Range(src, 0, 360)).Scale(r))
}

// Positions draws a spawn position for each member of the group.
//
// Postcondition: Returns exactly Count positions.
func (g *Group) Positions(src dice.Source) []space.Vec2 {
	out := make([]space.Vec2, 0, g.Count)
	for i := 0; i < g.Count; i++ {
		out = append(out, g.Position(src))
	}
	return out
}

// Scenario is one encounter setup.
type Scenario struct {
	ID          string   `yaml:"id"`
	Description string   `yaml:"description"`
	Ticks       int      `yaml:"ticks"`
	Arena       Arena    `yaml:"arena"`
	Target      Target   `yaml:"target"`
	Groups      []*Group `yaml:"groups"`
}

// Validate checks the scenario for required fields.
//
// Postcondition: Returns nil if valid, or an error naming the first violation.
func (s *Scenario) Validate() error {
	if s.ID == "" {
		return errors.New("scenario: id must not be empty")
	}
	if strings.TrimSpace(s.Arena.Bounds) == "" {
		return fmt.Errorf("scenario %q: arena bounds must not be empty", s.ID)
	}
	if s.Ticks < 0 {
		return fmt.Errorf("scenario %q: ticks must not be negative", s.ID)
	}
	if s.Target.Speed < 0 {
		return fmt.Errorf("scenario %q: target speed must not be negative", s.ID)
	}
	if len(s.Target.Route) > 0 && s.Target.Speed == 0 {
		return fmt.Errorf("scenario %q: target route requires a positive speed", s.ID)
	}
	if len(s.Groups) == 0 {
		return fmt.Errorf("scenario %q: must have at least one group", s.ID)
	}
	names := make(map[string]struct{}, len(s.Groups))
	for _, g := range s.Groups {
		if g.Name == "" {
			return fmt.Errorf("scenario %q: group has empty name", s.ID)
		}
		if _, dup := names[g.Name]; dup {
			return fmt.Errorf("scenario %q: duplicate group %q", s.ID, g.Name)
		}
		names[g.Name] = struct{}{}
		if g.Count < 1 {
			return fmt.Errorf("scenario %q group %q: count must be >= 1, got %d", s.ID, g.Name, g.Count)
		}
		if g.Spread < 0 {
			return fmt.Errorf("scenario %q group %q: spread must not be negative", s.ID, g.Name)
		}
	}
	return nil
}

// Combatants returns the total number of combatants across all groups.
func (s *Scenario) Combatants() int {
	n := 0
	for _, g := range s.Groups {
		n += g.Count
	}
	return n
}

// BuildArena parses the scenario's arena geometry.
func (s *Scenario) BuildArena() (*nav.Arena, error) {
	a, err := nav.NewArena(s.Arena.Bounds, s.Arena.Obstacles)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.ID, err)
	}
	return a, nil
}

// yamlScenarioFile wraps the YAML top-level key.
type yamlScenarioFile struct {
	Scenario *Scenario `yaml:"scenario"`
}

// Parse decodes and validates a scenario document.
//
// Postcondition: Returns a valid Scenario or an error.
func Parse(data []byte) (*Scenario, error) {
	var f yamlScenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	if f.Scenario == nil {
		return nil, errors.New("missing top-level 'scenario' key")
	}
	if err := f.Scenario.Validate(); err != nil {
		return nil, err
	}
	return f.Scenario, nil
}

// Load reads one scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario.Load: reading %q: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario.Load: %s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// LoadDir reads all *.yaml files from dir.
//
// Postcondition: returns (nil, nil) if dir contains no .yaml files; scenario IDs are unique.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scenario.LoadDir: reading %q: %w", dir, err)
	}
	var out []*Scenario
	seen := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		s, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("scenario.LoadDir: id %q defined in both %s and %s", s.ID, prev, e.Name())
		}
		seen[s.ID] = e.Name()
		out = append(out, s)
	}
	return out, nil
}
