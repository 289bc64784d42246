package projection

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/arc-self/git-domain/pkg/events"
)

// RepositorySummary is one repository's current-state summary, per
// spec.md §4.5.2.
type RepositorySummary struct {
	ID           string
	Name         string
	RemoteURL    string
	LocalPath    string
	BranchCount  int
	CommitCount  int
	LastUpdated  time.Time
}

// RepositoryListProjection maintains a scannable index of every known
// repository's current summary.
type RepositoryListProjection struct {
	mu       sync.RWMutex
	byID     map[string]*RepositorySummary
	position uint64
}

// NewRepositoryListProjection builds an empty projection.
func NewRepositoryListProjection() *RepositoryListProjection {
	return &RepositoryListProjection{byID: make(map[string]*RepositorySummary)}
}

func (p *RepositoryListProjection) Name() string           { return "repository_list" }
func (p *RepositoryListProjection) Position() uint64        { return p.position }
func (p *RepositoryListProjection) SavePosition(seq uint64) { p.position = seq }

func (p *RepositoryListProjection) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byID = make(map[string]*RepositorySummary)
	p.position = 0
}

func (p *RepositoryListProjection) Handles(eventType string) bool {
	switch eventType {
	case "RepositoryCloned", "RepositoryAnalyzed", "BranchCreated", "CommitAnalyzed":
		return true
	default:
		return false
	}
}

func (p *RepositoryListProjection) entry(repoID string) *RepositorySummary {
	s, ok := p.byID[repoID]
	if !ok {
		s = &RepositorySummary{ID: repoID}
		p.byID[repoID] = s
	}
	return s
}

// Apply is idempotent with respect to sequence: a sequence at or below the
// last-applied position is a no-op.
func (p *RepositoryListProjection) Apply(_ context.Context, env events.Envelope, sequence uint64) error {
	event, err := env.Unwrap()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if sequence != 0 && sequence <= p.position {
		return nil
	}
	s := p.entry(event.RepositoryID().String())

	switch e := event.(type) {
	case *events.RepositoryCloned:
		s.RemoteURL = e.RemoteURL.String()
		s.LocalPath = e.LocalPath
		s.LastUpdated = e.At
	case *events.RepositoryAnalyzed:
		s.LastUpdated = e.At
	case *events.BranchCreated:
		s.BranchCount++
		s.LastUpdated = e.At
	case *events.CommitAnalyzed:
		s.CommitCount++
		s.LastUpdated = e.At
	}
	return nil
}

// Get returns a copy of the summary for repoID, if any.
func (p *RepositoryListProjection) Get(repoID string) (RepositorySummary, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.byID[repoID]
	if !ok {
		return RepositorySummary{}, false
	}
	return *s, true
}

// All returns a copy of every known repository summary, in no particular
// order — used by the analytics runner to enumerate repositories to scan.
func (p *RepositoryListProjection) All() []RepositorySummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]RepositorySummary, 0, len(p.byID))
	for _, s := range p.byID {
		out = append(out, *s)
	}
	return out
}

// ScanByRemoteURLSubstring returns every summary whose remote URL contains
// substr, per spec.md §4.5.2's scan support.
func (p *RepositoryListProjection) ScanByRemoteURLSubstring(substr string) []RepositorySummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []RepositorySummary
	for _, s := range p.byID {
		if strings.Contains(s.RemoteURL, substr) {
			out = append(out, *s)
		}
	}
	return out
}
