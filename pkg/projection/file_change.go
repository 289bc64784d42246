package projection

import (
	"context"
	"sync"
	"time"

	"github.com/arc-self/git-domain/pkg/events"
	"github.com/arc-self/git-domain/pkg/valueobjects"
)

// FileChangeRecord is one file change as indexed by the file-change
// projection, combining the event's FileChange with the owning commit's
// identity and author.
type FileChangeRecord struct {
	Path      valueobjects.FilePath
	CommitHash valueobjects.CommitHash
	Author    valueobjects.AuthorInfo
	Additions int
	Deletions int
	IsRename  bool
	Timestamp time.Time
}

// RenameInfo records that a file's current path resulted from a rename at
// a given commit. Per the resolved Open Question (SPEC_FULL.md §7.2), only
// the new path is tracked — no prior-path chain.
type RenameInfo struct {
	CommitHash valueobjects.CommitHash
	Timestamp  time.Time
}

// FileStatistics is a pure rollup over one path's FileChangeRecord slice,
// per spec.md §4.5.5.
type FileStatistics struct {
	TotalAdditions int
	TotalDeletions int
	ChangeCount    int
	UniqueAuthors  int
	FirstCommit    time.Time
	LastCommit     time.Time
}

// FileChangeProjection keeps three indexes consistent per CommitAnalyzed:
// path -> changes, commit hash -> changes, path -> rename history.
type FileChangeProjection struct {
	mu        sync.RWMutex
	byPath    map[string][]FileChangeRecord
	byCommit  map[string][]FileChangeRecord
	renames   map[string][]RenameInfo
	position  uint64
}

// NewFileChangeProjection builds an empty projection.
func NewFileChangeProjection() *FileChangeProjection {
	return &FileChangeProjection{
		byPath:   make(map[string][]FileChangeRecord),
		byCommit: make(map[string][]FileChangeRecord),
		renames:  make(map[string][]RenameInfo),
	}
}

func (p *FileChangeProjection) Name() string           { return "file_change" }
func (p *FileChangeProjection) Position() uint64        { return p.position }
func (p *FileChangeProjection) SavePosition(seq uint64) { p.position = seq }

func (p *FileChangeProjection) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byPath = make(map[string][]FileChangeRecord)
	p.byCommit = make(map[string][]FileChangeRecord)
	p.renames = make(map[string][]RenameInfo)
	p.position = 0
}

func (p *FileChangeProjection) Handles(eventType string) bool {
	return eventType == "CommitAnalyzed"
}

// Apply is idempotent with respect to sequence: a sequence at or below the
// last-applied position is a no-op, so the three indexes never double-count
// a commit's file changes on redelivery.
func (p *FileChangeProjection) Apply(_ context.Context, env events.Envelope, sequence uint64) error {
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

	for _, fc := range commit.Files {
		record := FileChangeRecord{
			Path:       fc.Path,
			CommitHash: commit.Hash,
			Author:     commit.Author,
			Additions:  fc.Additions,
			Deletions:  fc.Deletions,
			IsRename:   fc.IsRename,
			Timestamp:  commit.At,
		}
		path := fc.Path.String()
		p.byPath[path] = append(p.byPath[path], record)
		p.byCommit[commit.Hash.String()] = append(p.byCommit[commit.Hash.String()], record)
		if fc.IsRename {
			p.renames[path] = append(p.renames[path], RenameInfo{CommitHash: commit.Hash, Timestamp: commit.At})
		}
	}
	return nil
}

// ChangesForPath returns every recorded change to path.
func (p *FileChangeProjection) ChangesForPath(path string) []FileChangeRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]FileChangeRecord, len(p.byPath[path]))
	copy(out, p.byPath[path])
	return out
}

// ChangesForCommit returns every file changed by a commit.
func (p *FileChangeProjection) ChangesForCommit(hash string) []FileChangeRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]FileChangeRecord, len(p.byCommit[hash]))
	copy(out, p.byCommit[hash])
	return out
}

// RenamesForPath returns path's recorded rename history.
func (p *FileChangeProjection) RenamesForPath(path string) []RenameInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]RenameInfo, len(p.renames[path]))
	copy(out, p.renames[path])
	return out
}

// Statistics computes FileStatistics over path's change history — a pure
// function of ChangesForPath, per spec.md §4.5.5.
func Statistics(changes []FileChangeRecord) FileStatistics {
	var stats FileStatistics
	authors := make(map[string]struct{})

	for i, c := range changes {
		stats.TotalAdditions += c.Additions
		stats.TotalDeletions += c.Deletions
		stats.ChangeCount++
		authors[c.Author.String()] = struct{}{}

		if i == 0 || c.Timestamp.Before(stats.FirstCommit) {
			stats.FirstCommit = c.Timestamp
		}
		if i == 0 || c.Timestamp.After(stats.LastCommit) {
			stats.LastCommit = c.Timestamp
		}
	}
	stats.UniqueAuthors = len(authors)
	return stats
}
