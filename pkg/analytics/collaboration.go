// Package analytics implements the batch algorithms over historical event
// streams described in spec.md §4.6: collaboration detection, code
// ownership, team clustering, code-quality risk scoring, technical-debt
// identification, repository health, and circular-dependency detection.
//
// Grounded on original_source/src/analyzers/collaboration_analyzer.rs and
// code_quality_analyzer.rs. The Rust analyzers operated over in-memory
// Vec<CommitInfo>; these ports operate over the same shape of slice, kept
// independent of the event log so they can run over either a live replay
// or a query-layer snapshot.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/arc-self/git-domain/pkg/valueobjects"
)

// CommitObservation is one (commit, author, files, time) tuple fed to the
// collaboration analyzer, per spec.md §4.6.1's input shape.
type CommitObservation struct {
	CommitHash valueobjects.CommitHash
	Author     valueobjects.AuthorInfo
	Files      []valueobjects.FilePath
	Timestamp  time.Time
}

// CollaborationConfig tunes the collaboration analyzer.
type CollaborationConfig struct {
	WindowHours    float64
	MinSharedFiles int
	MinTeamSize    int
}

// DefaultCollaborationConfig matches spec.md §4.6.1's defaults.
func DefaultCollaborationConfig() CollaborationConfig {
	return CollaborationConfig{WindowHours: 168, MinSharedFiles: 2, MinTeamSize: 2}
}

// Collaboration is one computed author pair's collaboration strength.
type Collaboration struct {
	AuthorA     valueobjects.AuthorInfo
	AuthorB     valueobjects.AuthorInfo
	SharedFiles []string
	Strength    float64
}

type fileTouch struct {
	author valueobjects.AuthorInfo
	file   string
	at     time.Time
}

// authorFileTimes builds author -> file -> [timestamps], per step 1 of the
// collaboration algorithm.
func authorFileTimes(observations []CommitObservation) map[string]map[string][]time.Time {
	out := make(map[string]map[string][]time.Time)
	for _, obs := range observations {
		key := obs.Author.String()
		if out[key] == nil {
			out[key] = make(map[string][]time.Time)
		}
		for _, f := range obs.Files {
			path := f.String()
			out[key][path] = append(out[key][path], obs.Timestamp)
		}
	}
	return out
}

func filesOf(byFile map[string][]time.Time) map[string]struct{} {
	set := make(map[string]struct{}, len(byFile))
	for f := range byFile {
		set[f] = struct{}{}
	}
	return set
}

func authorsByName(observations []CommitObservation) map[string]valueobjects.AuthorInfo {
	out := make(map[string]valueobjects.AuthorInfo)
	for _, obs := range observations {
		out[obs.Author.String()] = obs.Author
	}
	return out
}

// DetectCollaborations runs the pairwise collaboration algorithm from
// spec.md §4.6.1 steps 2a-2g over every unordered author pair.
func DetectCollaborations(observations []CommitObservation, cfg CollaborationConfig) []Collaboration {
	byAuthor := authorFileTimes(observations)
	authors := authorsByName(observations)

	names := make([]string, 0, len(byAuthor))
	for name := range byAuthor {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Collaboration
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, b := names[i], names[j]
			filesA, filesB := byAuthor[a], byAuthor[b]
			setA, setB := filesOf(filesA), filesOf(filesB)

			var shared []string
			for f := range setA {
				if _, ok := setB[f]; ok {
					shared = append(shared, f)
				}
			}
			if len(shared) < cfg.MinSharedFiles {
				continue
			}
			sort.Strings(shared)

			var overlaps int
			windowNanos := cfg.WindowHours * float64(time.Hour)
			for _, f := range shared {
				for _, t1 := range filesA[f] {
					for _, t2 := range filesB[f] {
						diff := t1.Sub(t2)
						if diff < 0 {
							diff = -diff
						}
						if float64(diff) <= windowNanos {
							overlaps++
						}
					}
				}
			}

			sharedRatio := 2 * float64(len(shared)) / float64(len(setA)+len(setB))
			timeFactor := math.Min(1, float64(overlaps)/float64(len(shared)))
			strength := 0.6*sharedRatio + 0.4*timeFactor

			out = append(out, Collaboration{
				AuthorA:     authors[a],
				AuthorB:     authors[b],
				SharedFiles: shared,
				Strength:    strength,
			})
		}
	}
	return out
}

// FileOwnership is one file's computed ownership distribution, per
// spec.md §4.6.1's ownership section.
type FileOwnership struct {
	Path         string
	PrimaryOwner valueobjects.AuthorInfo
	OwnershipPct float64
	Contributors []ContributorShare
}

// ContributorShare is one author's share of a file's commits, listed in
// descending order.
type ContributorShare struct {
	Author valueobjects.AuthorInfo
	Commits int
	Share   float64
}

// ComputeOwnership computes, per file, the primary owner (argmax commit
// count, ties broken lexicographically on AuthorInfo per the resolved
// Open Question) and the descending contributor list.
func ComputeOwnership(observations []CommitObservation) []FileOwnership {
	counts := make(map[string]map[string]int) // file -> author name -> count
	authorIdentity := make(map[string]valueobjects.AuthorInfo)

	for _, obs := range observations {
		authorIdentity[obs.Author.String()] = obs.Author
		for _, f := range obs.Files {
			path := f.String()
			if counts[path] == nil {
				counts[path] = make(map[string]int)
			}
			counts[path][obs.Author.String()]++
		}
	}

	paths := make([]string, 0, len(counts))
	for p := range counts {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	out := make([]FileOwnership, 0, len(paths))
	for _, path := range paths {
		perAuthor := counts[path]
		total := 0
		for _, c := range perAuthor {
			total += c
		}

		names := make([]string, 0, len(perAuthor))
		for name := range perAuthor {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			ai, bi := authorIdentity[names[i]], authorIdentity[names[j]]
			if perAuthor[names[i]] != perAuthor[names[j]] {
				return perAuthor[names[i]] > perAuthor[names[j]]
			}
			return ai.Less(bi)
		})

		contributors := make([]ContributorShare, 0, len(names))
		for _, name := range names {
			contributors = append(contributors, ContributorShare{
				Author:  authorIdentity[name],
				Commits: perAuthor[name],
				Share:   float64(perAuthor[name]) / float64(total),
			})
		}

		out = append(out, FileOwnership{
			Path:         path,
			PrimaryOwner: contributors[0].Author,
			OwnershipPct: contributors[0].Share,
			Contributors: contributors,
		})
	}
	return out
}

// TeamCluster is a connected component of authors whose pairwise
// collaboration strength exceeds the clustering threshold.
type TeamCluster struct {
	Members    []valueobjects.AuthorInfo
	Cohesion   float64
	FocusAreas []string
}

const clusterEdgeThreshold = 0.5

// DetectTeamClusters flood-fills connected components over edges with
// weight > 0.5, per spec.md §4.6.1's team-clustering section.
func DetectTeamClusters(collabs []Collaboration, minTeamSize int) []TeamCluster {
	adjacency := make(map[string]map[string]float64)
	identity := make(map[string]valueobjects.AuthorInfo)
	addNode := func(name string, info valueobjects.AuthorInfo) {
		if adjacency[name] == nil {
			adjacency[name] = make(map[string]float64)
		}
		identity[name] = info
	}

	for _, c := range collabs {
		an, bn := c.AuthorA.String(), c.AuthorB.String()
		addNode(an, c.AuthorA)
		addNode(bn, c.AuthorB)
		if c.Strength > clusterEdgeThreshold {
			adjacency[an][bn] = c.Strength
			adjacency[bn][an] = c.Strength
		}
	}

	visited := make(map[string]bool)
	names := make([]string, 0, len(adjacency))
	for n := range adjacency {
		names = append(names, n)
	}
	sort.Strings(names)

	var clusters []TeamCluster
	for _, start := range names {
		if visited[start] {
			continue
		}
		component := floodFill(start, adjacency, visited)
		if len(component) < minTeamSize {
			continue
		}
		sort.Strings(component)

		internal, external := countEdges(component, adjacency)
		var cohesion float64
		if internal+external > 0 {
			cohesion = float64(internal) / float64(internal+external)
		}

		members := make([]valueobjects.AuthorInfo, len(component))
		memberSet := make(map[string]struct{}, len(component))
		for i, name := range component {
			members[i] = identity[name]
			memberSet[name] = struct{}{}
		}

		focusSet := make(map[string]struct{})
		for _, c := range collabs {
			_, aIn := memberSet[c.AuthorA.String()]
			_, bIn := memberSet[c.AuthorB.String()]
			if aIn && bIn {
				for _, f := range c.SharedFiles {
					focusSet[f] = struct{}{}
				}
			}
		}
		focus := make([]string, 0, len(focusSet))
		for f := range focusSet {
			focus = append(focus, f)
		}
		sort.Strings(focus)

		clusters = append(clusters, TeamCluster{Members: members, Cohesion: cohesion, FocusAreas: focus})
	}
	return clusters
}

func floodFill(start string, adjacency map[string]map[string]float64, visited map[string]bool) []string {
	var component []string
	stack := []string{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n] {
			continue
		}
		visited[n] = true
		component = append(component, n)
		for neighbor := range adjacency[n] {
			if !visited[neighbor] {
				stack = append(stack, neighbor)
			}
		}
	}
	return component
}

func countEdges(component []string, adjacency map[string]map[string]float64) (internal, external int) {
	members := make(map[string]struct{}, len(component))
	for _, m := range component {
		members[m] = struct{}{}
	}
	seen := make(map[[2]string]bool)
	for _, m := range component {
		for neighbor := range adjacency[m] {
			pair := [2]string{m, neighbor}
			if m > neighbor {
				pair = [2]string{neighbor, m}
			}
			if seen[pair] {
				continue
			}
			seen[pair] = true
			if _, ok := members[neighbor]; ok {
				internal++
			} else {
				external++
			}
		}
	}
	return internal, external
}
