package analytics

import (
	"sort"
	"time"

	"github.com/arc-self/git-domain/pkg/events"
	"github.com/arc-self/git-domain/pkg/valueobjects"
)

// CodeQualityConfig tunes the code-quality analyzer, per spec.md §4.6.2.
type CodeQualityConfig struct {
	LargeFileThreshold      int
	HighComplexityThreshold int
	ChurnWindowDays         int
}

// DefaultCodeQualityConfig matches spec.md §4.6.2's defaults.
func DefaultCodeQualityConfig() CodeQualityConfig {
	return CodeQualityConfig{LargeFileThreshold: 500, HighComplexityThreshold: 10, ChurnWindowDays: 90}
}

// Complexity is the pass-through packaging of one file's static metrics.
type Complexity struct {
	Path                valueobjects.FilePath
	LinesOfCode         int
	FunctionCount       int
	MaxNestingDepth     int
	CyclomaticComplexity int
	Language            string
}

// ChurnObservation is one (author, timestamp) touch of a file, the input
// to churn computation.
type ChurnObservation struct {
	Author    valueobjects.AuthorInfo
	Timestamp time.Time
}

// Churn is the computed churn rate for a file over a window.
type Churn struct {
	ChangeCount   int
	WindowDays    int
	ChurnRate     float64
	UniqueAuthors int
}

// ComputeChurn restricts touches to [now-window, now] and computes
// churn_rate = count / window_days and the distinct-author count, per
// spec.md §4.6.2's Churn definition.
func ComputeChurn(touches []ChurnObservation, windowDays int, now time.Time) Churn {
	cutoff := now.AddDate(0, 0, -windowDays)
	authors := make(map[string]struct{})
	count := 0
	for _, t := range touches {
		if t.Timestamp.Before(cutoff) || t.Timestamp.After(now) {
			continue
		}
		count++
		authors[t.Author.String()] = struct{}{}
	}

	rate := 0.0
	if windowDays > 0 {
		rate = float64(count) / float64(windowDays)
	}
	return Churn{ChangeCount: count, WindowDays: windowDays, ChurnRate: rate, UniqueAuthors: len(authors)}
}

// RiskAssessment combines complexity, churn and size into a risk score and
// bucket, per spec.md §4.6.2's Risk level definition.
func RiskAssessment(complexity int, churnRate float64, linesOfCode int, cfg CodeQualityConfig) (float64, events.RiskLevel) {
	score := 2*churnRate +
		float64(complexity)/float64(cfg.HighComplexityThreshold) +
		0.5*(float64(linesOfCode)/float64(cfg.LargeFileThreshold))

	var level events.RiskLevel
	switch {
	case score < 1:
		level = events.RiskLow
	case score < 2:
		level = events.RiskMedium
	case score < 3:
		level = events.RiskHigh
	default:
		level = events.RiskCritical
	}
	return score, level
}

// DebtFinding is one technical-debt rule match for a file.
type DebtFinding struct {
	Reason   events.DebtReason
	Severity float64
	EffortHours float64
}

// IdentifyDebt evaluates the three technical-debt rules from spec.md
// §4.6.2 against one file's complexity/size/churn and returns every rule
// that matched.
func IdentifyDebt(complexity, linesOfCode int, churnRate float64, cfg CodeQualityConfig) []DebtFinding {
	var findings []DebtFinding

	if complexity > cfg.HighComplexityThreshold {
		findings = append(findings, DebtFinding{
			Reason:      events.DebtHighComplexity,
			Severity:    minFloat(1, float64(complexity)/float64(cfg.HighComplexityThreshold)),
			EffortHours: 0.5 * float64(complexity),
		})
	}
	if linesOfCode > cfg.LargeFileThreshold {
		findings = append(findings, DebtFinding{
			Reason:      events.DebtLargeFile,
			Severity:    minFloat(1, float64(linesOfCode)/float64(cfg.LargeFileThreshold)),
			EffortHours: 0.01 * float64(linesOfCode),
		})
	}
	if churnRate > 0.5 {
		findings = append(findings, DebtFinding{
			Reason:      events.DebtHighChurn,
			Severity:    minFloat(1, churnRate),
			EffortHours: 10,
		})
	}
	return findings
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// HealthInputs are the repository-level signals the health score folds.
type HealthInputs struct {
	ActiveContributors int
	CommitsLastWeek    int
	StaleRatio         float64
	CriticalIssues     int
}

// ComputeHealthScore folds HealthInputs into a [0,1] health score, per
// spec.md §4.6.2's Repository health definition.
func ComputeHealthScore(in HealthInputs) float64 {
	score := 1.0
	if in.ActiveContributors < 3 {
		score -= 0.2
	}
	if in.CommitsLastWeek < 5 {
		score -= 0.1
	}
	score -= 0.3 * in.StaleRatio
	score -= minFloat(0.4, 0.1*float64(in.CriticalIssues))

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// DependencyGraph is an adjacency list over file paths, file -> its direct
// dependencies, the input to circular-dependency detection.
type DependencyGraph map[string][]string

// DetectCircularDependencies runs DFS with explicit visited/rec_stack
// sets, per spec.md §4.6.2: on encountering a gray (in-stack) neighbor, it
// emits the cycle slice from that neighbor's first occurrence in the
// current path. Every reported cycle has length >= 2.
func DetectCircularDependencies(graph DependencyGraph) [][]string {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	var path []string
	var cycles [][]string

	nodes := make([]string, 0, len(graph))
	for n := range graph {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)

	var dfs func(node string)
	dfs = func(node string) {
		visited[node] = true
		recStack[node] = true
		path = append(path, node)

		deps := append([]string(nil), graph[node]...)
		sort.Strings(deps)
		for _, neighbor := range deps {
			if recStack[neighbor] {
				start := indexOf(path, neighbor)
				if start >= 0 {
					cycle := append([]string(nil), path[start:]...)
					if len(cycle) >= 2 {
						cycles = append(cycles, cycle)
					}
				}
				continue
			}
			if !visited[neighbor] {
				dfs(neighbor)
			}
		}

		path = path[:len(path)-1]
		recStack[node] = false
	}

	for _, n := range nodes {
		if !visited[n] {
			dfs(n)
		}
	}
	return cycles
}

func indexOf(path []string, node string) int {
	for i, p := range path {
		if p == node {
			return i
		}
	}
	return -1
}
