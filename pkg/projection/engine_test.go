package projection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/arc-self/git-domain/pkg/core/natsclient"
	"github.com/arc-self/git-domain/pkg/events"
	"github.com/arc-self/git-domain/pkg/projection/projectionmock"
	"github.com/arc-self/git-domain/pkg/valueobjects"
)

// Rebuild resets a projection and replays every event the eventsGetter
// returns, skipping ones the projection doesn't Handle and saving the
// highest applied sequence as the new position.
func TestEngineRebuildReplaysHandledEventsInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repoID := valueobjects.NewRepositoryId()
	hash, _ := valueobjects.NewCommitHash("abc1234")
	commitEvent, err := events.NewEnvelope(&events.CommitAnalyzed{RepoID: repoID, Hash: hash})
	require.NoError(t, err)
	commitEvent.Sequence = 3

	branchEvent, err := events.NewEnvelope(&events.BranchCreated{RepoID: repoID})
	require.NoError(t, err)
	branchEvent.Sequence = 5

	eventsAfter := func(ctx context.Context, start uint64, limit int) ([]events.Envelope, error) {
		return []events.Envelope{commitEvent, branchEvent}, nil
	}

	mockProj := projectionmock.NewMockProjection(ctrl)
	mockProj.EXPECT().Reset()
	mockProj.EXPECT().Name().Return("stats").AnyTimes()
	mockProj.EXPECT().Handles("CommitAnalyzed").Return(true)
	mockProj.EXPECT().Handles("BranchCreated").Return(false)
	mockProj.EXPECT().Apply(gomock.Any(), commitEvent, uint64(3)).Return(nil)
	mockProj.EXPECT().SavePosition(uint64(3))

	e := New(&natsclient.Client{Log: zaptest.NewLogger(t)}, eventsAfter, "test_group")
	e.Register(mockProj)

	require.NoError(t, e.Rebuild(context.Background(), "stats"))
}

func TestEngineRebuildUnknownProjection(t *testing.T) {
	e := New(&natsclient.Client{Log: zaptest.NewLogger(t)}, nil, "test_group")
	err := e.Rebuild(context.Background(), "missing")
	require.Error(t, err)
}
