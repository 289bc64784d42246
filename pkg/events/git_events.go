package events

import (
	"time"

	"github.com/arc-self/git-domain/pkg/valueobjects"
)

func init() {
	RegisterEventType("RepositoryCloned", func() DomainEvent { return &RepositoryCloned{} })
	RegisterEventType("RepositoryAnalyzed", func() DomainEvent { return &RepositoryAnalyzed{} })
	RegisterEventType("CommitAnalyzed", func() DomainEvent { return &CommitAnalyzed{} })
	RegisterEventType("BranchCreated", func() DomainEvent { return &BranchCreated{} })
	RegisterEventType("BranchDeleted", func() DomainEvent { return &BranchDeleted{} })
	RegisterEventType("TagCreated", func() DomainEvent { return &TagCreated{} })
	RegisterEventType("MergeDetected", func() DomainEvent { return &MergeDetected{} })
	RegisterEventType("FileAnalyzed", func() DomainEvent { return &FileAnalyzed{} })
	RegisterEventType("RepositoryMetadataUpdated", func() DomainEvent { return &RepositoryMetadataUpdated{} })
}

// RepositoryCloned records that a repository was cloned to a local path.
type RepositoryCloned struct {
	RepoID    valueobjects.RepositoryId `json:"repository_id"`
	RemoteURL valueobjects.RemoteUrl    `json:"remote_url"`
	LocalPath string                    `json:"local_path"`
	At        time.Time                 `json:"occurred_at"`
}

func (e *RepositoryCloned) EventType() string                        { return "RepositoryCloned" }
func (e *RepositoryCloned) RepositoryID() valueobjects.RepositoryId   { return e.RepoID }
func (e *RepositoryCloned) OccurredAt() time.Time                    { return e.At }

// RepositoryAnalyzed records that a full repository scan completed,
// carrying the discovered branch and tag counts.
type RepositoryAnalyzed struct {
	RepoID      valueobjects.RepositoryId `json:"repository_id"`
	HeadCommit  valueobjects.CommitHash   `json:"head_commit"`
	BranchCount int                       `json:"branch_count"`
	TagCount    int                       `json:"tag_count"`
	At          time.Time                 `json:"occurred_at"`
}

func (e *RepositoryAnalyzed) EventType() string                      { return "RepositoryAnalyzed" }
func (e *RepositoryAnalyzed) RepositoryID() valueobjects.RepositoryId { return e.RepoID }
func (e *RepositoryAnalyzed) OccurredAt() time.Time                   { return e.At }

// FileChange describes one file touched by a commit. Per the resolved Open
// Question (SPEC_FULL.md §7.2), renames retain only the new path — no
// prior-path tracking.
type FileChange struct {
	Path      valueobjects.FilePath `json:"path"`
	Additions int                   `json:"additions"`
	Deletions int                   `json:"deletions"`
	IsRename  bool                  `json:"is_rename"`
}

// CommitAnalyzed records a single commit's metadata and file-level diff
// stats as discovered by repository analysis.
type CommitAnalyzed struct {
	RepoID    valueobjects.RepositoryId `json:"repository_id"`
	Hash      valueobjects.CommitHash   `json:"hash"`
	Author    valueobjects.AuthorInfo   `json:"author"`
	Committer valueobjects.AuthorInfo   `json:"committer"`
	Message   string                    `json:"message"`
	Parents   []valueobjects.CommitHash `json:"parents"`
	Files     []FileChange              `json:"files"`
	At        time.Time                 `json:"occurred_at"`
}

func (e *CommitAnalyzed) EventType() string                        { return "CommitAnalyzed" }
func (e *CommitAnalyzed) RepositoryID() valueobjects.RepositoryId   { return e.RepoID }
func (e *CommitAnalyzed) OccurredAt() time.Time                     { return e.At }

// IsMerge reports whether this commit has more than one parent.
func (e *CommitAnalyzed) IsMerge() bool { return len(e.Parents) > 1 }

// BranchCreated records that a branch was created or first observed,
// pointing at a commit.
type BranchCreated struct {
	RepoID valueobjects.RepositoryId `json:"repository_id"`
	Name   valueobjects.BranchName   `json:"name"`
	Head   valueobjects.CommitHash   `json:"head"`
	At     time.Time                 `json:"occurred_at"`
}

func (e *BranchCreated) EventType() string                        { return "BranchCreated" }
func (e *BranchCreated) RepositoryID() valueobjects.RepositoryId   { return e.RepoID }
func (e *BranchCreated) OccurredAt() time.Time                     { return e.At }

// BranchDeleted records that a branch no longer exists in the repository.
type BranchDeleted struct {
	RepoID valueobjects.RepositoryId `json:"repository_id"`
	Name   valueobjects.BranchName   `json:"name"`
	At     time.Time                 `json:"occurred_at"`
}

func (e *BranchDeleted) EventType() string                        { return "BranchDeleted" }
func (e *BranchDeleted) RepositoryID() valueobjects.RepositoryId   { return e.RepoID }
func (e *BranchDeleted) OccurredAt() time.Time                     { return e.At }

// TagCreated records that a tag was created, pointing at a commit.
type TagCreated struct {
	RepoID valueobjects.RepositoryId `json:"repository_id"`
	Name   valueobjects.TagName      `json:"name"`
	Target valueobjects.CommitHash   `json:"target"`
	At     time.Time                 `json:"occurred_at"`
}

func (e *TagCreated) EventType() string                        { return "TagCreated" }
func (e *TagCreated) RepositoryID() valueobjects.RepositoryId   { return e.RepoID }
func (e *TagCreated) OccurredAt() time.Time                     { return e.At }

// MergeDetected records that a merge commit joined two branches.
type MergeDetected struct {
	RepoID        valueobjects.RepositoryId `json:"repository_id"`
	MergeCommit   valueobjects.CommitHash   `json:"merge_commit"`
	SourceBranch  valueobjects.BranchName   `json:"source_branch"`
	TargetBranch  valueobjects.BranchName   `json:"target_branch"`
	ParentCommits []valueobjects.CommitHash `json:"parent_commits"`
	At            time.Time                 `json:"occurred_at"`
}

func (e *MergeDetected) EventType() string                        { return "MergeDetected" }
func (e *MergeDetected) RepositoryID() valueobjects.RepositoryId   { return e.RepoID }
func (e *MergeDetected) OccurredAt() time.Time                     { return e.At }

// FileAnalyzed records line-count and language classification for a file
// as of the analyzed commit.
type FileAnalyzed struct {
	RepoID   valueobjects.RepositoryId `json:"repository_id"`
	Path     valueobjects.FilePath     `json:"path"`
	Language string                    `json:"language,omitempty"`
	Lines    int                       `json:"lines"`
	At       time.Time                 `json:"occurred_at"`
}

func (e *FileAnalyzed) EventType() string                        { return "FileAnalyzed" }
func (e *FileAnalyzed) RepositoryID() valueobjects.RepositoryId   { return e.RepoID }
func (e *FileAnalyzed) OccurredAt() time.Time                     { return e.At }

// RepositoryMetadataUpdated records a change to repository-level metadata
// (description, default branch, archival state) not tied to a commit.
type RepositoryMetadataUpdated struct {
	RepoID        valueobjects.RepositoryId `json:"repository_id"`
	DefaultBranch valueobjects.BranchName   `json:"default_branch,omitempty"`
	Description   string                    `json:"description,omitempty"`
	Archived      bool                      `json:"archived"`
	At            time.Time                 `json:"occurred_at"`
}

func (e *RepositoryMetadataUpdated) EventType() string                      { return "RepositoryMetadataUpdated" }
func (e *RepositoryMetadataUpdated) RepositoryID() valueobjects.RepositoryId { return e.RepoID }
func (e *RepositoryMetadataUpdated) OccurredAt() time.Time                   { return e.At }
