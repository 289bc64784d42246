package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/git-domain/pkg/events"
	"github.com/arc-self/git-domain/pkg/valueobjects"
)

func TestApplyRepositoryClonedAndCommit(t *testing.T) {
	id := valueobjects.NewRepositoryId()
	repo := New(id, "demo")
	assert.False(t, repo.IsCloned())

	url, err := valueobjects.NewRemoteUrl("https://github.com/example/demo.git")
	require.NoError(t, err)

	err = repo.Apply(&events.RepositoryCloned{
		RepoID:    id,
		RemoteURL: url,
		LocalPath: "/tmp/demo",
		At:        time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.True(t, repo.IsCloned())
	assert.EqualValues(t, 1, repo.Version)

	hash, err := valueobjects.NewCommitHash("abcdef1")
	require.NoError(t, err)
	err = repo.Apply(&events.CommitAnalyzed{
		RepoID: id,
		Hash:   hash,
		At:     time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, hash, repo.Head)
	assert.Equal(t, 1, repo.Metadata.CommitCount)
	assert.EqualValues(t, 2, repo.Version)
}

func TestApplyRejectsForeignRepositoryEvent(t *testing.T) {
	repo := New(valueobjects.NewRepositoryId(), "demo")
	foreign := valueobjects.NewRepositoryId()
	err := repo.Apply(&events.RepositoryCloned{RepoID: foreign, At: time.Now().UTC()})
	assert.Error(t, err)
}

func TestApplyBranchLifecycle(t *testing.T) {
	id := valueobjects.NewRepositoryId()
	repo := New(id, "demo")
	branch, err := valueobjects.NewBranchName("feature/x")
	require.NoError(t, err)
	hash, err := valueobjects.NewCommitHash("1234567")
	require.NoError(t, err)

	require.NoError(t, repo.Apply(&events.BranchCreated{RepoID: id, Name: branch, Head: hash, At: time.Now().UTC()}))
	assert.Contains(t, repo.Branches, branch)

	require.NoError(t, repo.Apply(&events.BranchDeleted{RepoID: id, Name: branch, At: time.Now().UTC()}))
	assert.NotContains(t, repo.Branches, branch)
}

func TestApplyAllFoldsInOrderAndStopsAtFirstError(t *testing.T) {
	id := valueobjects.NewRepositoryId()
	branch, err := valueobjects.NewBranchName("main")
	require.NoError(t, err)
	hash, err := valueobjects.NewCommitHash("abc1234")
	require.NoError(t, err)

	repo := New(id, "demo")
	require.NoError(t, repo.ApplyAll([]events.DomainEvent{
		&events.RepositoryCloned{RepoID: id, LocalPath: "/tmp/demo", At: time.Now().UTC()},
		&events.BranchCreated{RepoID: id, Name: branch, Head: hash, At: time.Now().UTC()},
	}))
	assert.True(t, repo.IsCloned())
	assert.Contains(t, repo.Branches, branch)
	assert.EqualValues(t, 2, repo.Version)

	foreign := valueobjects.NewRepositoryId()
	bad := New(id, "demo")
	err = bad.ApplyAll([]events.DomainEvent{
		&events.RepositoryCloned{RepoID: id, At: time.Now().UTC()},
		&events.RepositoryCloned{RepoID: foreign, At: time.Now().UTC()},
		&events.BranchCreated{RepoID: id, Name: branch, Head: hash, At: time.Now().UTC()},
	})
	assert.Error(t, err)
	assert.EqualValues(t, 1, bad.Version)
	assert.NotContains(t, bad.Branches, branch)
}
