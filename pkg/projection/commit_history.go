package projection

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arc-self/git-domain/pkg/valueobjects"

	"github.com/arc-self/git-domain/pkg/events"
)

// CommitEntry is one commit as retained by the commit-history projection,
// per spec.md §4.5.3.
type CommitEntry struct {
	Hash      valueobjects.CommitHash
	Author    valueobjects.AuthorInfo
	Message   string
	Timestamp time.Time
}

// CommitHistoryProjection maintains a per-repository commit list, sorted
// newest-first.
type CommitHistoryProjection struct {
	mu       sync.RWMutex
	history  map[string][]CommitEntry
	position uint64
}

// NewCommitHistoryProjection builds an empty projection.
func NewCommitHistoryProjection() *CommitHistoryProjection {
	return &CommitHistoryProjection{history: make(map[string][]CommitEntry)}
}

func (p *CommitHistoryProjection) Name() string           { return "commit_history" }
func (p *CommitHistoryProjection) Position() uint64        { return p.position }
func (p *CommitHistoryProjection) SavePosition(seq uint64) { p.position = seq }

func (p *CommitHistoryProjection) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history = make(map[string][]CommitEntry)
	p.position = 0
}

func (p *CommitHistoryProjection) Handles(eventType string) bool {
	return eventType == "CommitAnalyzed"
}

// Apply is idempotent with respect to sequence: a sequence at or below the
// last-applied position is a no-op, so a single commit is never appended
// twice on redelivery.
func (p *CommitHistoryProjection) Apply(_ context.Context, env events.Envelope, sequence uint64) error {
	event, err := env.Unwrap()
	if err != nil {
		return err
	}
	commit, ok := event.(*events.CommitAnalyzed)
	if !ok {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if sequence != 0 && sequence <= p.position {
		return nil
	}

	repoID := commit.RepositoryID().String()
	p.history[repoID] = append(p.history[repoID], CommitEntry{
		Hash:      commit.Hash,
		Author:    commit.Author,
		Message:   commit.Message,
		Timestamp: commit.At,
	})

	sort.Slice(p.history[repoID], func(i, j int) bool {
		return p.history[repoID][i].Timestamp.After(p.history[repoID][j].Timestamp)
	})
	return nil
}

// History returns up to limit commits for repoID, newest first. limit <= 0
// means unbounded.
func (p *CommitHistoryProjection) History(repoID string, limit int) []CommitEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entries := p.history[repoID]
	if limit <= 0 || limit > len(entries) {
		limit = len(entries)
	}
	out := make([]CommitEntry, limit)
	copy(out, entries[:limit])
	return out
}
