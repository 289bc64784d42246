package projection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/git-domain/pkg/events"
	"github.com/arc-self/git-domain/pkg/valueobjects"
)

func envelopeFor(t *testing.T, event events.DomainEvent) events.Envelope {
	t.Helper()
	env, err := events.NewEnvelope(event)
	require.NoError(t, err)
	return env
}

func TestRepositoryStatsProjection(t *testing.T) {
	p := NewRepositoryStatsProjection()
	repoID := valueobjects.NewRepositoryId()
	hash, _ := valueobjects.NewCommitHash("abc1234")

	env := envelopeFor(t, &events.CommitAnalyzed{RepoID: repoID, Hash: hash, At: time.Now().UTC()})
	require.NoError(t, p.Apply(context.Background(), env, 1))

	stats, ok := p.Get(repoID.String())
	require.True(t, ok)
	assert.Equal(t, 1, stats.CommitCount)

	branch, _ := valueobjects.NewBranchName("feature/x")
	branchEnv := envelopeFor(t, &events.BranchCreated{RepoID: repoID, Name: branch, Head: hash, At: time.Now().UTC()})
	require.NoError(t, p.Apply(context.Background(), branchEnv, 2))
	stats, _ = p.Get(repoID.String())
	assert.Equal(t, 1, stats.BranchCount)
}

func TestRepositoryStatsBranchCountFloorsAtZero(t *testing.T) {
	p := NewRepositoryStatsProjection()
	repoID := valueobjects.NewRepositoryId()
	branch, _ := valueobjects.NewBranchName("feature/x")
	env := envelopeFor(t, &events.BranchDeleted{RepoID: repoID, Name: branch, At: time.Now().UTC()})
	require.NoError(t, p.Apply(context.Background(), env, 1))

	stats, ok := p.Get(repoID.String())
	require.True(t, ok)
	assert.Equal(t, 0, stats.BranchCount)
}

func TestRepositoryListScanByRemoteURLSubstring(t *testing.T) {
	p := NewRepositoryListProjection()
	repoID := valueobjects.NewRepositoryId()
	url, _ := valueobjects.NewRemoteUrl("https://github.com/example/demo.git")

	env := envelopeFor(t, &events.RepositoryCloned{RepoID: repoID, RemoteURL: url, LocalPath: "/tmp/d", At: time.Now().UTC()})
	require.NoError(t, p.Apply(context.Background(), env, 1))

	matches := p.ScanByRemoteURLSubstring("example")
	require.Len(t, matches, 1)
	assert.Equal(t, repoID.String(), matches[0].ID)

	assert.Empty(t, p.ScanByRemoteURLSubstring("nonexistent"))
}

func TestCommitHistorySortedNewestFirst(t *testing.T) {
	p := NewCommitHistoryProjection()
	repoID := valueobjects.NewRepositoryId()
	h1, _ := valueobjects.NewCommitHash("1111111")
	h2, _ := valueobjects.NewCommitHash("2222222")

	older := envelopeFor(t, &events.CommitAnalyzed{RepoID: repoID, Hash: h1, At: time.Now().Add(-time.Hour)})
	newer := envelopeFor(t, &events.CommitAnalyzed{RepoID: repoID, Hash: h2, At: time.Now()})

	require.NoError(t, p.Apply(context.Background(), older, 1))
	require.NoError(t, p.Apply(context.Background(), newer, 2))

	history := p.History(repoID.String(), 0)
	require.Len(t, history, 2)
	assert.Equal(t, h2, history[0].Hash)
	assert.Equal(t, h1, history[1].Hash)

	limited := p.History(repoID.String(), 1)
	require.Len(t, limited, 1)
	assert.Equal(t, h2, limited[0].Hash)
}

func TestBranchStatusDefaultBranch(t *testing.T) {
	p := NewBranchStatusProjection()
	repoID := valueobjects.NewRepositoryId()
	main, _ := valueobjects.NewBranchName("main")
	hash, _ := valueobjects.NewCommitHash("abc1234")

	env := envelopeFor(t, &events.BranchCreated{RepoID: repoID, Name: main, Head: hash, At: time.Now().UTC()})
	require.NoError(t, p.Apply(context.Background(), env, 1))

	branches := p.Branches(repoID.String())
	require.Contains(t, branches, "main")
	assert.True(t, branches["main"].IsDefault)

	del := envelopeFor(t, &events.BranchDeleted{RepoID: repoID, Name: main, At: time.Now().UTC()})
	require.NoError(t, p.Apply(context.Background(), del, 2))
	assert.NotContains(t, p.Branches(repoID.String()), "main")
}

func TestFileChangeProjectionIndexesAndStatistics(t *testing.T) {
	p := NewFileChangeProjection()
	repoID := valueobjects.NewRepositoryId()
	hash, _ := valueobjects.NewCommitHash("abc1234")
	path, _ := valueobjects.NewFilePath("src/main.go")
	author := valueobjects.NewAuthorInfo("Alice", "alice@example.com")

	env := envelopeFor(t, &events.CommitAnalyzed{
		RepoID:  repoID,
		Hash:    hash,
		Author:  author,
		Message: "add file",
		At:      time.Now().UTC(),
		Files: []events.FileChange{
			{Path: path, Additions: 10, Deletions: 2},
		},
	})
	require.NoError(t, p.Apply(context.Background(), env, 1))

	changes := p.ChangesForPath("src/main.go")
	require.Len(t, changes, 1)
	stats := Statistics(changes)
	assert.Equal(t, 10, stats.TotalAdditions)
	assert.Equal(t, 2, stats.TotalDeletions)
	assert.Equal(t, 1, stats.UniqueAuthors)

	byCommit := p.ChangesForCommit(hash.String())
	require.Len(t, byCommit, 1)
}

// TestProjectionsIdempotentOnReplayedSequence covers Testable Property #4
// (spec.md §8): applying the highest-seen sequence a second time must not
// drift projection state, the way JetStream redelivers a message Nak'd or
// left unacked after a crash between SavePosition and Ack.
func TestProjectionsIdempotentOnReplayedSequence(t *testing.T) {
	repoID := valueobjects.NewRepositoryId()
	hash, _ := valueobjects.NewCommitHash("abc1234")

	t.Run("repository_stats", func(t *testing.T) {
		p := NewRepositoryStatsProjection()
		env := envelopeFor(t, &events.CommitAnalyzed{RepoID: repoID, Hash: hash, At: time.Now().UTC()})
		require.NoError(t, p.Apply(context.Background(), env, 1))
		p.SavePosition(1)

		require.NoError(t, p.Apply(context.Background(), env, 1))
		stats, ok := p.Get(repoID.String())
		require.True(t, ok)
		assert.Equal(t, 1, stats.CommitCount)
	})

	t.Run("repository_list", func(t *testing.T) {
		p := NewRepositoryListProjection()
		url, _ := valueobjects.NewRemoteUrl("https://github.com/example/demo.git")
		env := envelopeFor(t, &events.RepositoryCloned{RepoID: repoID, RemoteURL: url, LocalPath: "/tmp/d", At: time.Now().UTC()})
		require.NoError(t, p.Apply(context.Background(), env, 1))
		p.SavePosition(1)

		require.NoError(t, p.Apply(context.Background(), env, 1))
		matches := p.ScanByRemoteURLSubstring("example")
		require.Len(t, matches, 1)
	})

	t.Run("commit_history", func(t *testing.T) {
		p := NewCommitHistoryProjection()
		env := envelopeFor(t, &events.CommitAnalyzed{RepoID: repoID, Hash: hash, At: time.Now().UTC()})
		require.NoError(t, p.Apply(context.Background(), env, 1))
		p.SavePosition(1)

		require.NoError(t, p.Apply(context.Background(), env, 1))
		assert.Len(t, p.History(repoID.String(), 0), 1)
	})

	t.Run("branch_status", func(t *testing.T) {
		p := NewBranchStatusProjection()
		main, _ := valueobjects.NewBranchName("main")
		env := envelopeFor(t, &events.BranchCreated{RepoID: repoID, Name: main, Head: hash, At: time.Now().UTC()})
		require.NoError(t, p.Apply(context.Background(), env, 1))
		p.SavePosition(1)

		require.NoError(t, p.Apply(context.Background(), env, 1))
		assert.Len(t, p.Branches(repoID.String()), 1)

		del := envelopeFor(t, &events.BranchDeleted{RepoID: repoID, Name: main, At: time.Now().UTC()})
		require.NoError(t, p.Apply(context.Background(), del, 2))
		p.SavePosition(2)

		require.NoError(t, p.Apply(context.Background(), del, 2))
		assert.NotContains(t, p.Branches(repoID.String()), "main")
	})

	t.Run("file_change", func(t *testing.T) {
		p := NewFileChangeProjection()
		path, _ := valueobjects.NewFilePath("src/main.go")
		author := valueobjects.NewAuthorInfo("Alice", "alice@example.com")
		env := envelopeFor(t, &events.CommitAnalyzed{
			RepoID:  repoID,
			Hash:    hash,
			Author:  author,
			Message: "add file",
			At:      time.Now().UTC(),
			Files:   []events.FileChange{{Path: path, Additions: 10, Deletions: 2}},
		})
		require.NoError(t, p.Apply(context.Background(), env, 1))
		p.SavePosition(1)

		require.NoError(t, p.Apply(context.Background(), env, 1))
		changes := p.ChangesForPath("src/main.go")
		require.Len(t, changes, 1)
		stats := Statistics(changes)
		assert.Equal(t, 10, stats.TotalAdditions)
	})
}
