// Package fixtures loads DOM entities from YAML documents and applies them to
// an object store. Tests and demos build their state explicitly from these
// documents instead of sharing global test data.
//
// A document lists entities under four keys:
//
//	behavior_definitions: [...]
//	section_definitions: [...]
//	definitions: [...]
//	instances: [...]
//
// Identities are written as canonical UUID strings.
package fixtures

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"

	"github.com/aretw0/dom/pkg/core"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Document is a set of entities of every type.
type Document struct {
	BehaviorDefinitions []*core.BehaviorDefinition `yaml:"behavior_definitions"`
	SectionDefinitions  []*core.SectionDefinition  `yaml:"section_definitions"`
	Definitions         []*core.Definition         `yaml:"definitions"`
	Instances           []*core.Instance           `yaml:"instances"`
}

// Seeder replaces whole collections at once. memory.Store implements it.
type Seeder interface {
	SetBehaviorDefinitions(defs ...*core.BehaviorDefinition) error
	SetSectionDefinitions(defs ...*core.SectionDefinition) error
	SetDefinitions(defs ...*core.Definition) error
	SetInstances(instances ...*core.Instance) error
}

// Parse decodes one YAML document. Unknown keys are rejected.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Load parses every file of fsys matching the glob pattern, in lexical order,
// and merges them into one document.
func Load(fsys fs.FS, pattern string) (*Document, error) {
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to match fixtures %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no fixture matches %q", core.ErrNotFound, pattern)
	}
	slices.Sort(matches)

	doc := &Document{}
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read fixture %s: %w", name, err)
		}
		part, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		doc.Merge(part)
	}
	return doc, nil
}

// Merge appends the entities of other to d.
func (d *Document) Merge(other *Document) {
	if other == nil {
		return
	}
	d.BehaviorDefinitions = append(d.BehaviorDefinitions, other.BehaviorDefinitions...)
	d.SectionDefinitions = append(d.SectionDefinitions, other.SectionDefinitions...)
	d.Definitions = append(d.Definitions, other.Definitions...)
	d.Instances = append(d.Instances, other.Instances...)
}

// Requests returns one create request per entity, schemas before the
// instances that depend on them.
func (d *Document) Requests() []core.Request {
	var reqs []core.Request
	for _, b := range d.BehaviorDefinitions {
		reqs = append(reqs, core.CreateRequest{Object: b})
	}
	for _, s := range d.SectionDefinitions {
		reqs = append(reqs, core.CreateRequest{Object: s})
	}
	for _, def := range d.Definitions {
		reqs = append(reqs, core.CreateRequest{Object: def})
	}
	for _, inst := range d.Instances {
		reqs = append(reqs, core.CreateRequest{Object: inst})
	}
	return reqs
}

// Apply creates every entity of d through t in a single round-trip.
func (d *Document) Apply(ctx context.Context, t core.Transport) error {
	reqs := d.Requests()
	if len(reqs) == 0 {
		return nil
	}
	resps, err := t.Send(ctx, reqs)
	if err != nil {
		return fmt.Errorf("failed to apply fixtures: %w", err)
	}
	if len(resps) != len(reqs) {
		return fmt.Errorf("transport returned %d responses for %d fixture requests", len(resps), len(reqs))
	}
	return nil
}

// Seed replaces the collections of s with the entities of d.
func (d *Document) Seed(s Seeder) error {
	if err := s.SetBehaviorDefinitions(d.BehaviorDefinitions...); err != nil {
		return err
	}
	if err := s.SetSectionDefinitions(d.SectionDefinitions...); err != nil {
		return err
	}
	if err := s.SetDefinitions(d.Definitions...); err != nil {
		return err
	}
	return s.SetInstances(d.Instances...)
}

func (d *Document) validate() error {
	for i, b := range d.BehaviorDefinitions {
		if err := check(b, "behavior_definitions", i); err != nil {
			return err
		}
	}
	for i, s := range d.SectionDefinitions {
		if err := check(s, "section_definitions", i); err != nil {
			return err
		}
	}
	for i, def := range d.Definitions {
		if err := check(def, "definitions", i); err != nil {
			return err
		}
	}
	for i, inst := range d.Instances {
		if err := check(inst, "instances", i); err != nil {
			return err
		}
	}
	return nil
}

func check(o core.Object, key string, i int) error {
	if core.IsNil(o) {
		return fmt.Errorf("%w: %s[%d] is empty", core.ErrInvalidArgument, key, i)
	}
	if o.ObjectID() == core.EmptyID {
		return fmt.Errorf("%w: %s[%d] has no id", core.ErrInvalidArgument, key, i)
	}
	return nil
}
