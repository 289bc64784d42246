package projection

import (
	"context"
	"sync"
	"time"

	"github.com/arc-self/git-domain/pkg/events"
)

// RepositoryStats is one repository's rolled-up activity counters, per
// spec.md §4.5.1.
type RepositoryStats struct {
	RepositoryID        string
	CommitCount         int
	BranchCount         int
	TagCount            int
	LastCommitTime      time.Time
	FilesAnalyzedTotal  int
}

// RepositoryStatsProjection maintains RepositoryStats per repository.
// Ported from original_source/src/nats/projection.rs's
// RepositoryStatsProjection.
type RepositoryStatsProjection struct {
	mu       sync.RWMutex
	stats    map[string]*RepositoryStats
	position uint64
}

// NewRepositoryStatsProjection builds an empty projection.
func NewRepositoryStatsProjection() *RepositoryStatsProjection {
	return &RepositoryStatsProjection{stats: make(map[string]*RepositoryStats)}
}

func (p *RepositoryStatsProjection) Name() string       { return "repository_stats" }
func (p *RepositoryStatsProjection) Position() uint64   { return p.position }
func (p *RepositoryStatsProjection) SavePosition(seq uint64) { p.position = seq }

func (p *RepositoryStatsProjection) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats = make(map[string]*RepositoryStats)
	p.position = 0
}

func (p *RepositoryStatsProjection) Handles(eventType string) bool {
	switch eventType {
	case "CommitAnalyzed", "BranchCreated", "BranchDeleted", "TagCreated", "FileAnalyzed":
		return true
	default:
		return false
	}
}

func (p *RepositoryStatsProjection) entry(repoID string) *RepositoryStats {
	s, ok := p.stats[repoID]
	if !ok {
		s = &RepositoryStats{RepositoryID: repoID}
		p.stats[repoID] = s
	}
	return s
}

// Apply folds one event, per the handler table in spec.md §4.5.1. Idempotent
// with respect to sequence: a sequence at or below the last-applied position
// is a no-op, so redelivery after a crash or Nak never double-counts.
func (p *RepositoryStatsProjection) Apply(_ context.Context, env events.Envelope, sequence uint64) error {
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
	case *events.CommitAnalyzed:
		s.CommitCount++
		if e.At.After(s.LastCommitTime) {
			s.LastCommitTime = e.At
		}
	case *events.BranchCreated:
		s.BranchCount++
	case *events.BranchDeleted:
		if s.BranchCount > 0 {
			s.BranchCount--
		}
	case *events.TagCreated:
		s.TagCount++
	case *events.FileAnalyzed:
		s.FilesAnalyzedTotal++
	}
	return nil
}

// Get returns a copy of the stats for repoID, if any.
func (p *RepositoryStatsProjection) Get(repoID string) (RepositoryStats, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.stats[repoID]
	if !ok {
		return RepositoryStats{}, false
	}
	return *s, true
}

// All returns a snapshot of every tracked repository's stats.
func (p *RepositoryStatsProjection) All() map[string]RepositoryStats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]RepositoryStats, len(p.stats))
	for k, v := range p.stats {
		out[k] = *v
	}
	return out
}
