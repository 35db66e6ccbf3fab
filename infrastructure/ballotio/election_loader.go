package ballotio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"github.com/liamblake/hcvote/internal/application"
)

// Package-level validator shared by the ballotio loaders.
var validate = validator.New()

// ElectionDefinition is the YAML description of an election: shared
// metadata plus one configuration per position, counted in order.
type ElectionDefinition struct {
	// Version is the definition schema version.
	Version string `yaml:"version" validate:"required"`

	// Metadata describes the election for reports and discovery.
	Metadata ElectionMetadata `yaml:"metadata"`

	// Positions lists every position to count, in counting order.
	Positions []application.ElectionConfig `yaml:"positions" validate:"required,min=1,dive"`

	// ExcludeElected carries elected candidates forward as pre-count
	// exclusions for later positions, so nobody wins two seats.
	ExcludeElected bool `yaml:"exclude_elected"`
}

// ElectionMetadata labels an election definition.
type ElectionMetadata struct {
	// Name is the human-readable election name.
	Name string `yaml:"name" validate:"max=255"`

	// Description explains the election's purpose.
	Description string `yaml:"description" validate:"max=1000"`
}

// ElectionLoader parses and validates YAML election definitions.
// Parsed definitions are cached by SHA256 of the source bytes, with
// singleflight collapsing concurrent loads of identical input.
//
// Cached definitions are shared; callers must not mutate them.
type ElectionLoader struct {
	validator *validator.Validate

	cache   map[string]*ElectionDefinition
	cacheMu sync.RWMutex
	sf      singleflight.Group
}

// NewElectionLoader creates a loader with an empty cache.
func NewElectionLoader() *ElectionLoader {
	return &ElectionLoader{
		validator: validator.New(),
		cache:     make(map[string]*ElectionDefinition),
	}
}

// LoadFromFile reads, parses, and validates the definition at path.
func (l *ElectionLoader) LoadFromFile(ctx context.Context, path string) (*ElectionDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read election definition: %w", err)
	}
	return l.load(ctx, data)
}

// LoadFromReader parses and validates a definition from r.
func (l *ElectionLoader) LoadFromReader(ctx context.Context, r io.Reader) (*ElectionDefinition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read election definition: %w", err)
	}
	return l.load(ctx, data)
}

func (l *ElectionLoader) load(ctx context.Context, data []byte) (*ElectionDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	l.cacheMu.RLock()
	cached, ok := l.cache[hash]
	l.cacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	def, err, _ := l.sf.Do(hash, func() (any, error) {
		var def ElectionDefinition
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("parse election definition: %w", err)
		}
		if err := l.validateDefinition(&def); err != nil {
			return nil, err
		}

		l.cacheMu.Lock()
		l.cache[hash] = &def
		l.cacheMu.Unlock()
		return &def, nil
	})
	if err != nil {
		return nil, err
	}
	return def.(*ElectionDefinition), nil
}

// validateDefinition applies struct-tag validation plus the semantic
// checks tags cannot express: unique candidate IDs per position, and
// pre-count exclusions referencing registered candidates.
func (l *ElectionLoader) validateDefinition(def *ElectionDefinition) error {
	if err := l.validator.Struct(def); err != nil {
		return fmt.Errorf("election definition validation failed: %w", err)
	}

	for i, pos := range def.Positions {
		ids := make(map[string]struct{}, len(pos.Candidates))
		for _, c := range pos.Candidates {
			if _, dup := ids[c.ID]; dup {
				return fmt.Errorf("position %d (%s): duplicate candidate %q", i, pos.Name, c.ID)
			}
			ids[c.ID] = struct{}{}
		}
		for _, id := range pos.ExcludeFirst {
			if _, ok := ids[id]; !ok {
				return fmt.Errorf("position %d (%s): exclude_first references unknown candidate %q", i, pos.Name, id)
			}
		}
	}
	return nil
}
