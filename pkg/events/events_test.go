package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/git-domain/pkg/valueobjects"
)

func TestMetadataCorrelationChain(t *testing.T) {
	root := NewMetadata()
	assert.Equal(t, root.CorrelationID, root.EventID)
	assert.Equal(t, root.CausationID, root.EventID)

	child := MetadataFromCorrelation(root.CorrelationID, root.EventID)
	assert.Equal(t, root.CorrelationID, child.CorrelationID)
	assert.Equal(t, root.EventID, child.CausationID)
	assert.NotEqual(t, root.EventID, child.EventID)
}

func TestCorrelationContextPushPop(t *testing.T) {
	ctx := NewCorrelationContext()
	root := ctx.CreateMetadata()

	ctx.PushCausation(root.EventID)
	child := ctx.CreateMetadata()
	assert.Equal(t, root.CorrelationID, child.CorrelationID)
	assert.Equal(t, root.EventID, child.CausationID)

	ctx.PopCausation()
	assert.Equal(t, ctx.CorrelationID(), ctx.CausationID())
}

func TestEnvelopeRoundTrip(t *testing.T) {
	repoID := valueobjects.NewRepositoryId()
	commit, err := valueobjects.NewCommitHash("1234567")
	require.NoError(t, err)
	remote, err := valueobjects.NewRemoteUrl("https://github.com/example/repo.git")
	require.NoError(t, err)

	event := &RepositoryCloned{
		RepoID:    repoID,
		RemoteURL: remote,
		LocalPath: "/tmp/repo",
		At:        time.Now().UTC(),
	}
	env, err := NewEnvelope(event)
	require.NoError(t, err)
	assert.Equal(t, "RepositoryCloned", env.EventType)
	assert.Equal(t, env.Metadata.EventID, env.Metadata.CorrelationID)

	decoded, err := env.Unwrap()
	require.NoError(t, err)
	cloned, ok := decoded.(*RepositoryCloned)
	require.True(t, ok)
	assert.Equal(t, repoID, cloned.RepositoryID())
	assert.Equal(t, "/tmp/repo", cloned.LocalPath)

	caused, err := NewCausedEnvelope(&BranchCreated{
		RepoID: repoID,
		Head:   commit,
		At:     time.Now().UTC(),
	}, env.Metadata)
	require.NoError(t, err)
	assert.Equal(t, env.Metadata.CorrelationID, caused.Metadata.CorrelationID)
	assert.Equal(t, env.Metadata.EventID, caused.Metadata.CausationID)
}

func TestUnwrapUnknownEventType(t *testing.T) {
	env := Envelope{EventType: "NotARealEvent", Payload: []byte(`{}`)}
	_, err := env.Unwrap()
	assert.Error(t, err)
}

func TestCommitAnalyzedIsMerge(t *testing.T) {
	h1, _ := valueobjects.NewCommitHash("1111111")
	h2, _ := valueobjects.NewCommitHash("2222222")
	c := &CommitAnalyzed{Parents: []valueobjects.CommitHash{h1, h2}}
	assert.True(t, c.IsMerge())

	single := &CommitAnalyzed{Parents: []valueobjects.CommitHash{h1}}
	assert.False(t, single.IsMerge())
}
