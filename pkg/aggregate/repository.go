// Package aggregate holds the Repository aggregate root: the consistency
// boundary that folds Git domain events into current-state projections
// used before a command is validated and applied.
//
// Ported from original_source/src/aggregate/mod.rs: the Rust struct folded
// events via a match on GitDomainEvent; Go folds them via a type switch on
// events.DomainEvent since there is no tagged union.
package aggregate

import (
	"fmt"
	"time"

	"github.com/arc-self/git-domain/pkg/events"
	"github.com/arc-self/git-domain/pkg/valueobjects"
)

// Metadata is repository-level state not tied to any single commit.
type Metadata struct {
	Name            string
	Description     string
	DefaultBranch   valueobjects.BranchName
	Archived        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CommitCount     int
}

// Repository is the aggregate root folding Git domain events into current
// state: remote, local path, HEAD, branch map, and metadata. Version is a
// monotonically increasing count of events applied; no command handler
// compares it against an expected version before appending.
type Repository struct {
	ID        valueobjects.RepositoryId
	RemoteURL valueobjects.RemoteUrl
	LocalPath string
	Head      valueobjects.CommitHash
	Branches  map[valueobjects.BranchName]valueobjects.CommitHash
	Tags      map[valueobjects.TagName]valueobjects.CommitHash
	Metadata  Metadata
	Version   uint64
}

// New creates an empty Repository aggregate identified by id, ready to fold
// events starting from version 0.
func New(id valueobjects.RepositoryId, name string) *Repository {
	now := time.Now().UTC()
	return &Repository{
		ID:       id,
		Branches: make(map[valueobjects.BranchName]valueobjects.CommitHash),
		Tags:     make(map[valueobjects.TagName]valueobjects.CommitHash),
		Metadata: Metadata{
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// Apply folds one domain event into the aggregate, incrementing Version.
// Apply is not idempotent: applying the same event twice increments
// Version (and, for CommitAnalyzed, CommitCount) twice. Events are folded
// in the order given; Apply does not check them against the event log's
// sequence.
func (r *Repository) Apply(event events.DomainEvent) error {
	if event.RepositoryID() != r.ID {
		return fmt.Errorf("aggregate: event for repository %s applied to %s", event.RepositoryID(), r.ID)
	}

	switch e := event.(type) {
	case *events.RepositoryCloned:
		r.RemoteURL = e.RemoteURL
		r.LocalPath = e.LocalPath
		r.Metadata.UpdatedAt = e.At

	case *events.RepositoryAnalyzed:
		r.Head = e.HeadCommit
		r.Metadata.UpdatedAt = e.At

	case *events.CommitAnalyzed:
		r.Head = e.Hash
		r.Metadata.CommitCount++
		r.Metadata.UpdatedAt = e.At

	case *events.BranchCreated:
		r.Branches[e.Name] = e.Head
		r.Metadata.UpdatedAt = e.At

	case *events.BranchDeleted:
		delete(r.Branches, e.Name)
		r.Metadata.UpdatedAt = e.At

	case *events.TagCreated:
		r.Tags[e.Name] = e.Target
		r.Metadata.UpdatedAt = e.At

	case *events.MergeDetected:
		r.Head = e.MergeCommit
		r.Branches[e.TargetBranch] = e.MergeCommit
		r.Metadata.UpdatedAt = e.At

	case *events.RepositoryMetadataUpdated:
		if !e.DefaultBranch.IsZero() {
			r.Metadata.DefaultBranch = e.DefaultBranch
		}
		if e.Description != "" {
			r.Metadata.Description = e.Description
		}
		r.Metadata.Archived = e.Archived
		r.Metadata.UpdatedAt = e.At

	default:
		// FileAnalyzed and analytics events carry no aggregate-relevant
		// state; they pass through without mutating the root.
	}

	r.Version++
	return nil
}

// ApplyAll folds a sequence of events in order, stopping at the first
// error — used when rehydrating an aggregate from the events that
// eventlog.LoadAggregateEvents returns.
func (r *Repository) ApplyAll(evs []events.DomainEvent) error {
	for i, e := range evs {
		if err := r.Apply(e); err != nil {
			return fmt.Errorf("aggregate: apply event %d: %w", i, err)
		}
	}
	return nil
}

// IsCloned reports whether the RepositoryCloned event has been applied.
func (r *Repository) IsCloned() bool { return r.LocalPath != "" }
