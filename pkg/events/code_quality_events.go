package events

import (
	"time"

	"github.com/arc-self/git-domain/pkg/valueobjects"
)

func init() {
	RegisterEventType("FileComplexityAnalyzed", func() DomainEvent { return &FileComplexityAnalyzed{} })
	RegisterEventType("FileChurnCalculated", func() DomainEvent { return &FileChurnCalculated{} })
	RegisterEventType("TechnicalDebtIdentified", func() DomainEvent { return &TechnicalDebtIdentified{} })
	RegisterEventType("RepositoryHealthCalculated", func() DomainEvent { return &RepositoryHealthCalculated{} })
	RegisterEventType("CircularDependencyDetected", func() DomainEvent { return &CircularDependencyDetected{} })
}

// RiskLevel buckets a numeric risk score, per spec.md §4.6.2.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// FileComplexityAnalyzed records a cyclomatic-complexity estimate for one
// file, grounded on original_source/src/analyzers/code_quality_analyzer.rs.
type FileComplexityAnalyzed struct {
	RepoID     valueobjects.RepositoryId `json:"repository_id"`
	Path       valueobjects.FilePath     `json:"path"`
	Complexity int                       `json:"complexity"`
	RiskScore  float64                   `json:"risk_score"`
	Risk       RiskLevel                 `json:"risk"`
	At         time.Time                 `json:"occurred_at"`
}

func (e *FileComplexityAnalyzed) EventType() string                      { return "FileComplexityAnalyzed" }
func (e *FileComplexityAnalyzed) RepositoryID() valueobjects.RepositoryId { return e.RepoID }
func (e *FileComplexityAnalyzed) OccurredAt() time.Time                   { return e.At }

// FileChurnCalculated records how frequently a file changes over a lookback
// window, used by the technical-debt HighChurn rule.
type FileChurnCalculated struct {
	RepoID      valueobjects.RepositoryId `json:"repository_id"`
	Path        valueobjects.FilePath     `json:"path"`
	ChangeCount int                       `json:"change_count"`
	WindowDays  int                       `json:"window_days"`
	At          time.Time                 `json:"occurred_at"`
}

func (e *FileChurnCalculated) EventType() string                      { return "FileChurnCalculated" }
func (e *FileChurnCalculated) RepositoryID() valueobjects.RepositoryId { return e.RepoID }
func (e *FileChurnCalculated) OccurredAt() time.Time                   { return e.At }

// DebtReason names which technical-debt rule fired, per spec.md §4.6.2.
type DebtReason string

const (
	DebtHighComplexity DebtReason = "HighComplexity"
	DebtLargeFile      DebtReason = "LargeFile"
	DebtHighChurn      DebtReason = "HighChurn"
)

// TechnicalDebtIdentified records that a file tripped one or more
// technical-debt rules.
type TechnicalDebtIdentified struct {
	RepoID  valueobjects.RepositoryId `json:"repository_id"`
	Path    valueobjects.FilePath     `json:"path"`
	Reasons []DebtReason              `json:"reasons"`
	At      time.Time                 `json:"occurred_at"`
}

func (e *TechnicalDebtIdentified) EventType() string                      { return "TechnicalDebtIdentified" }
func (e *TechnicalDebtIdentified) RepositoryID() valueobjects.RepositoryId { return e.RepoID }
func (e *TechnicalDebtIdentified) OccurredAt() time.Time                   { return e.At }

// RepositoryHealthCalculated records a rolled-up health score for a
// repository (as computed by analytics.ComputeHealthScore from contributor
// count, weekly commit count, stale-file ratio, and critical issue count)
// together with the number of files carrying identified debt.
type RepositoryHealthCalculated struct {
	RepoID        valueobjects.RepositoryId `json:"repository_id"`
	HealthScore   float64                   `json:"health_score"`
	DebtFileCount int                       `json:"debt_file_count"`
	At            time.Time                 `json:"occurred_at"`
}

func (e *RepositoryHealthCalculated) EventType() string { return "RepositoryHealthCalculated" }
func (e *RepositoryHealthCalculated) RepositoryID() valueobjects.RepositoryId {
	return e.RepoID
}
func (e *RepositoryHealthCalculated) OccurredAt() time.Time { return e.At }

// CircularDependencyDetected records a dependency cycle found by the DFS
// cycle detector, naming the files in the cycle in traversal order.
type CircularDependencyDetected struct {
	RepoID valueobjects.RepositoryId `json:"repository_id"`
	Cycle  []valueobjects.FilePath   `json:"cycle"`
	At     time.Time                 `json:"occurred_at"`
}

func (e *CircularDependencyDetected) EventType() string                      { return "CircularDependencyDetected" }
func (e *CircularDependencyDetected) RepositoryID() valueobjects.RepositoryId { return e.RepoID }
func (e *CircularDependencyDetected) OccurredAt() time.Time                   { return e.At }
