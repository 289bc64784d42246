package projection

import (
	"context"
	"sync"
	"time"

	"github.com/arc-self/git-domain/pkg/events"
	"github.com/arc-self/git-domain/pkg/valueobjects"
)

// BranchInfo is one branch's current state, per spec.md §4.5.4.
type BranchInfo struct {
	Head        valueobjects.CommitHash
	IsDefault   bool
	LastUpdated time.Time
}

// BranchStatusProjection maintains repo_id -> (branch_name -> BranchInfo).
type BranchStatusProjection struct {
	mu       sync.RWMutex
	branches map[string]map[string]BranchInfo
	position uint64
}

// NewBranchStatusProjection builds an empty projection.
func NewBranchStatusProjection() *BranchStatusProjection {
	return &BranchStatusProjection{branches: make(map[string]map[string]BranchInfo)}
}

func (p *BranchStatusProjection) Name() string           { return "branch_status" }
func (p *BranchStatusProjection) Position() uint64        { return p.position }
func (p *BranchStatusProjection) SavePosition(seq uint64) { p.position = seq }

func (p *BranchStatusProjection) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.branches = make(map[string]map[string]BranchInfo)
	p.position = 0
}

func (p *BranchStatusProjection) Handles(eventType string) bool {
	switch eventType {
	case "BranchCreated", "BranchDeleted":
		return true
	default:
		return false
	}
}

// Apply is idempotent with respect to sequence: a sequence at or below the
// last-applied position is a no-op, so a redelivered BranchCreated never
// re-adds a branch that a later BranchDeleted already removed.
func (p *BranchStatusProjection) Apply(_ context.Context, env events.Envelope, sequence uint64) error {
	event, err := env.Unwrap()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if sequence != 0 && sequence <= p.position {
		return nil
	}

	switch e := event.(type) {
	case *events.BranchCreated:
		repoID := e.RepositoryID().String()
		if p.branches[repoID] == nil {
			p.branches[repoID] = make(map[string]BranchInfo)
		}
		p.branches[repoID][e.Name.String()] = BranchInfo{
			Head:        e.Head,
			IsDefault:   e.Name.IsDefault(),
			LastUpdated: e.At,
		}
	case *events.BranchDeleted:
		repoID := e.RepositoryID().String()
		delete(p.branches[repoID], e.Name.String())
	}
	return nil
}

// Branches returns a snapshot of every branch tracked for repoID.
func (p *BranchStatusProjection) Branches(repoID string) map[string]BranchInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make(map[string]BranchInfo, len(p.branches[repoID]))
	for k, v := range p.branches[repoID] {
		out[k] = v
	}
	return out
}
