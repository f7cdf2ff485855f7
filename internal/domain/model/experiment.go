// Package model defines the core data types and structures used throughout the qbatch job system.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Experiment is a single circuit execution request within a batch. The
// circuit definition is opaque to this library; it is handed to the backend
// unchanged.
type Experiment struct {
	Name       string          `json:"name"`
	Definition json.RawMessage `json:"definition"`
	Shots      int             `json:"shots,omitempty"`
}

// Validate validates the Experiment fields.
func (e *Experiment) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return errors.New("experiment name is required")
	}
	if len(e.Definition) == 0 {
		return errors.New("circuit definition is required")
	}
	if e.Shots < 0 {
		return errors.New("shots must be >= 0")
	}
	return nil
}

// RefKind identifies which variant of an ExperimentRef is populated.
type RefKind string

const (
	// RefKindName selects an experiment by its symbolic name.
	RefKindName RefKind = "name"
	// RefKindExperiment selects an experiment by an Experiment value; its
	// name is extracted during resolution.
	RefKindExperiment RefKind = "experiment"
	// RefKindIndex selects an experiment by its position in the original,
	// undivided batch.
	RefKindIndex RefKind = "index"
)

// ExperimentRef identifies one experiment in a batch. Exactly one variant is
// populated; construct values with RefByName, RefByExperiment, or RefByIndex.
type ExperimentRef struct {
	kind       RefKind
	name       string
	experiment *Experiment
	index      int
}

// RefByName references an experiment by its symbolic name.
func RefByName(name string) ExperimentRef {
	return ExperimentRef{kind: RefKindName, name: name}
}

// RefByExperiment references an experiment by the Experiment value that was
// submitted. The experiment's name is used for resolution.
func RefByExperiment(exp *Experiment) ExperimentRef {
	return ExperimentRef{kind: RefKindExperiment, experiment: exp}
}

// RefByIndex references an experiment by its position in the original batch,
// counted across all jobs in submission order.
func RefByIndex(index int) ExperimentRef {
	return ExperimentRef{kind: RefKindIndex, index: index}
}

// Kind returns which variant of the reference is populated.
func (r ExperimentRef) Kind() RefKind {
	return r.kind
}

// Name returns the referenced experiment name. For RefKindExperiment the name
// is extracted from the experiment value.
func (r ExperimentRef) Name() string {
	if r.kind == RefKindExperiment && r.experiment != nil {
		return r.experiment.Name
	}
	return r.name
}

// Index returns the referenced batch position. Only meaningful for
// RefKindIndex references.
func (r ExperimentRef) Index() int {
	return r.index
}

// String renders the reference for log and error messages.
func (r ExperimentRef) String() string {
	switch r.kind {
	case RefKindIndex:
		return fmt.Sprintf("#%d", r.index)
	case RefKindName, RefKindExperiment:
		return r.Name()
	default:
		return "<empty ref>"
	}
}
