package analyticsrunner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/arc-self/git-domain/pkg/projection"
	"github.com/arc-self/git-domain/pkg/valueobjects"
)

// analyzeRepository must short-circuit before touching the event log when
// a repository has no recorded commit history, since *eventlog.Log needs a
// live JetStream connection to construct meaningfully.
func TestAnalyzeRepositorySkipsWhenNoHistory(t *testing.T) {
	r := New(nil,
		projection.NewRepositoryListProjection(),
		projection.NewCommitHistoryProjection(),
		projection.NewFileChangeProjection(),
		zaptest.NewLogger(t),
	)

	err := r.analyzeRepository(context.Background(), valueobjects.NewRepositoryId())
	require.NoError(t, err)
}

func TestNewBuildsDefaultConfigs(t *testing.T) {
	r := New(nil,
		projection.NewRepositoryListProjection(),
		projection.NewCommitHistoryProjection(),
		projection.NewFileChangeProjection(),
		zaptest.NewLogger(t),
	)

	assert.Equal(t, 168.0, r.collabCfg.WindowHours)
	assert.Equal(t, 90, r.qualityCfg.ChurnWindowDays)
}
