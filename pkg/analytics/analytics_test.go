package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arc-self/git-domain/pkg/events"
	"github.com/arc-self/git-domain/pkg/valueobjects"
)

func path(t *testing.T, s string) valueobjects.FilePath {
	t.Helper()
	p, err := valueobjects.NewFilePath(s)
	require.NoError(t, err)
	return p
}

func TestDetectCollaborationsSharedFiles(t *testing.T) {
	now := time.Now()
	alice := valueobjects.NewAuthorInfo("Alice", "alice@example.com")
	bob := valueobjects.NewAuthorInfo("Bob", "bob@example.com")

	observations := []CommitObservation{
		{Author: alice, Files: []valueobjects.FilePath{path(t, "a.go"), path(t, "b.go")}, Timestamp: now},
		{Author: bob, Files: []valueobjects.FilePath{path(t, "a.go"), path(t, "b.go")}, Timestamp: now.Add(time.Hour)},
	}

	collabs := DetectCollaborations(observations, DefaultCollaborationConfig())
	require.Len(t, collabs, 1)
	assert.Equal(t, 2, len(collabs[0].SharedFiles))
	assert.Greater(t, collabs[0].Strength, 0.0)
}

func TestDetectCollaborationsBelowMinSharedSkipped(t *testing.T) {
	now := time.Now()
	alice := valueobjects.NewAuthorInfo("Alice", "alice@example.com")
	bob := valueobjects.NewAuthorInfo("Bob", "bob@example.com")

	observations := []CommitObservation{
		{Author: alice, Files: []valueobjects.FilePath{path(t, "a.go")}, Timestamp: now},
		{Author: bob, Files: []valueobjects.FilePath{path(t, "a.go")}, Timestamp: now},
	}
	collabs := DetectCollaborations(observations, DefaultCollaborationConfig())
	assert.Empty(t, collabs)
}

func TestComputeOwnershipTieBreaksLexicographically(t *testing.T) {
	alice := valueobjects.NewAuthorInfo("Alice", "alice@example.com")
	bob := valueobjects.NewAuthorInfo("Bob", "bob@example.com")

	observations := []CommitObservation{
		{Author: alice, Files: []valueobjects.FilePath{path(t, "a.go")}},
		{Author: bob, Files: []valueobjects.FilePath{path(t, "a.go")}},
	}
	ownership := ComputeOwnership(observations)
	require.Len(t, ownership, 1)
	assert.Equal(t, "Alice", ownership[0].PrimaryOwner.Name)
	assert.Equal(t, 0.5, ownership[0].OwnershipPct)
}

func TestDetectTeamClustersThreshold(t *testing.T) {
	alice := valueobjects.NewAuthorInfo("Alice", "a@example.com")
	bob := valueobjects.NewAuthorInfo("Bob", "b@example.com")
	collabs := []Collaboration{
		{AuthorA: alice, AuthorB: bob, Strength: 0.9, SharedFiles: []string{"a.go"}},
	}
	clusters := DetectTeamClusters(collabs, 2)
	require.Len(t, clusters, 1)
	assert.Len(t, clusters[0].Members, 2)
	assert.Equal(t, 1.0, clusters[0].Cohesion)
}

func TestComputeChurnWindow(t *testing.T) {
	now := time.Now()
	alice := valueobjects.NewAuthorInfo("Alice", "a@example.com")
	touches := []ChurnObservation{
		{Author: alice, Timestamp: now.Add(-10 * 24 * time.Hour)},
		{Author: alice, Timestamp: now.Add(-200 * 24 * time.Hour)}, // outside window
	}
	churn := ComputeChurn(touches, 90, now)
	assert.Equal(t, 1, churn.ChangeCount)
	assert.Equal(t, 1, churn.UniqueAuthors)
}

func TestRiskAssessmentBuckets(t *testing.T) {
	cfg := DefaultCodeQualityConfig()
	_, low := RiskAssessment(0, 0, 0, cfg)
	assert.Equal(t, events.RiskLow, low)

	_, critical := RiskAssessment(50, 2, 2000, cfg)
	assert.Equal(t, events.RiskCritical, critical)
}

func TestIdentifyDebtRules(t *testing.T) {
	cfg := DefaultCodeQualityConfig()
	findings := IdentifyDebt(20, 600, 0.6, cfg)
	require.Len(t, findings, 3)

	reasons := map[events.DebtReason]bool{}
	for _, f := range findings {
		reasons[f.Reason] = true
	}
	assert.True(t, reasons[events.DebtHighComplexity])
	assert.True(t, reasons[events.DebtLargeFile])
	assert.True(t, reasons[events.DebtHighChurn])
}

func TestComputeHealthScoreClamped(t *testing.T) {
	score := ComputeHealthScore(HealthInputs{ActiveContributors: 1, CommitsLastWeek: 0, StaleRatio: 1, CriticalIssues: 10})
	assert.InDelta(t, 0.0, score, 1e-9)

	perfect := ComputeHealthScore(HealthInputs{ActiveContributors: 5, CommitsLastWeek: 10})
	assert.Equal(t, 1.0, perfect)
}

func TestDetectCircularDependencies(t *testing.T) {
	graph := DependencyGraph{
		"a.go": {"b.go"},
		"b.go": {"c.go"},
		"c.go": {"a.go"},
	}
	cycles := DetectCircularDependencies(graph)
	require.Len(t, cycles, 1)
	assert.GreaterOrEqual(t, len(cycles[0]), 2)
}

func TestDetectCircularDependenciesAcyclic(t *testing.T) {
	graph := DependencyGraph{
		"a.go": {"b.go"},
		"b.go": {},
	}
	assert.Empty(t, DetectCircularDependencies(graph))
}
