package events

import (
	"time"

	"github.com/arc-self/git-domain/pkg/valueobjects"
)

func init() {
	RegisterEventType("CollaborationDetected", func() DomainEvent { return &CollaborationDetected{} })
	RegisterEventType("CodeOwnershipCalculated", func() DomainEvent { return &CodeOwnershipCalculated{} })
	RegisterEventType("TeamClusterDetected", func() DomainEvent { return &TeamClusterDetected{} })
}

// CollaborationDetected records a computed collaboration strength between
// two authors, grounded on original_source/src/events/collaboration_events.rs.
type CollaborationDetected struct {
	RepoID      valueobjects.RepositoryId `json:"repository_id"`
	AuthorA     valueobjects.AuthorInfo   `json:"author_a"`
	AuthorB     valueobjects.AuthorInfo   `json:"author_b"`
	SharedFiles int                       `json:"shared_files"`
	Strength    float64                   `json:"strength"`
	At          time.Time                 `json:"occurred_at"`
}

func (e *CollaborationDetected) EventType() string                        { return "CollaborationDetected" }
func (e *CollaborationDetected) RepositoryID() valueobjects.RepositoryId   { return e.RepoID }
func (e *CollaborationDetected) OccurredAt() time.Time                     { return e.At }

// FileOwnership is one file's ownership distribution.
type FileOwnership struct {
	Path         valueobjects.FilePath   `json:"path"`
	PrimaryOwner valueobjects.AuthorInfo `json:"primary_owner"`
	OwnershipPct float64                 `json:"ownership_pct"`
}

// CodeOwnershipCalculated records per-file ownership for a repository scan.
// Ties in ownership percentage break lexicographically on AuthorInfo per
// the resolved Open Question (SPEC_FULL.md §7.3).
type CodeOwnershipCalculated struct {
	RepoID     valueobjects.RepositoryId `json:"repository_id"`
	Ownerships []FileOwnership           `json:"ownerships"`
	At         time.Time                 `json:"occurred_at"`
}

func (e *CodeOwnershipCalculated) EventType() string                      { return "CodeOwnershipCalculated" }
func (e *CodeOwnershipCalculated) RepositoryID() valueobjects.RepositoryId { return e.RepoID }
func (e *CodeOwnershipCalculated) OccurredAt() time.Time                   { return e.At }

// TeamClusterDetected records a group of authors whose collaboration edges
// exceed the clustering threshold, along with the cluster's cohesion.
type TeamClusterDetected struct {
	RepoID   valueobjects.RepositoryId `json:"repository_id"`
	Members  []valueobjects.AuthorInfo `json:"members"`
	Cohesion float64                   `json:"cohesion"`
	At       time.Time                 `json:"occurred_at"`
}

func (e *TeamClusterDetected) EventType() string                      { return "TeamClusterDetected" }
func (e *TeamClusterDetected) RepositoryID() valueobjects.RepositoryId { return e.RepoID }
func (e *TeamClusterDetected) OccurredAt() time.Time                   { return e.At }
