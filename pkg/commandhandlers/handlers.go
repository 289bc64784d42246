// Package commandhandlers implements the dispatcher.Handler for every
// command type in pkg/subject's command set: decode the JSON payload,
// validate through valueobjects, append the resulting DomainEvent(s) to
// the event log, and return them so the dispatcher can reply with the
// command's result.
//
// Grounded on original_source/src/nats/command.rs's CommandHandler trait
// impls, one function per command rather than one trait per command.
package commandhandlers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arc-self/git-domain/pkg/aggregate"
	"github.com/arc-self/git-domain/pkg/dispatcher"
	"github.com/arc-self/git-domain/pkg/eventlog"
	"github.com/arc-self/git-domain/pkg/events"
	"github.com/arc-self/git-domain/pkg/valueobjects"
)

// Handlers bundles the event-log dependency every command handler needs.
type Handlers struct {
	log *eventlog.Log
}

// New builds a Handlers set backed by log.
func New(log *eventlog.Log) *Handlers {
	return &Handlers{log: log}
}

// Register binds every command type this package implements onto d.
func (h *Handlers) Register(d *dispatcher.Dispatcher) {
	d.Register("CloneRepository", h.CloneRepository)
	d.Register("AnalyzeCommit", h.AnalyzeCommit)
	d.Register("CreateBranch", h.CreateBranch)
	d.Register("DeleteBranch", h.DeleteBranch)
	d.Register("CreateTag", h.CreateTag)
}

// loadAggregate rehydrates a Repository aggregate from every event recorded
// for repoID so handlers can check invariants (duplicate branch/tag names,
// clone-before-analyze) against current state before appending a new one.
func (h *Handlers) loadAggregate(ctx context.Context, repoID valueobjects.RepositoryId) (*aggregate.Repository, error) {
	envs, err := h.log.LoadAggregateEvents(ctx, repoID)
	if err != nil {
		return nil, fmt.Errorf("load aggregate state: %w", err)
	}
	decoded := make([]events.DomainEvent, 0, len(envs))
	for _, env := range envs {
		event, err := env.Unwrap()
		if err != nil {
			return nil, fmt.Errorf("decode aggregate event: %w", err)
		}
		decoded = append(decoded, event)
	}
	agg := aggregate.New(repoID, "")
	if err := agg.ApplyAll(decoded); err != nil {
		return nil, fmt.Errorf("fold aggregate state: %w", err)
	}
	return agg, nil
}

func (h *Handlers) appendOne(ctx context.Context, event events.DomainEvent) ([]events.DomainEvent, error) {
	env, err := events.NewEnvelope(event)
	if err != nil {
		return nil, fmt.Errorf("build envelope: %w", err)
	}
	if _, err := h.log.Append(ctx, env); err != nil {
		return nil, fmt.Errorf("append event: %w", err)
	}
	return []events.DomainEvent{event}, nil
}

type cloneRepositoryPayload struct {
	RepositoryID string `json:"repository_id"`
	RemoteURL    string `json:"remote_url"`
	LocalPath    string `json:"local_path"`
}

// CloneRepository validates a clone request and records RepositoryCloned.
func (h *Handlers) CloneRepository(ctx context.Context, cmd dispatcher.Command) ([]events.DomainEvent, error) {
	var p cloneRepositoryPayload
	if err := json.Unmarshal(cmd.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", dispatcher.ErrMalformedPayload, err)
	}

	repoID, err := resolveRepositoryID(p.RepositoryID)
	if err != nil {
		return nil, err
	}
	remoteURL, err := valueobjects.NewRemoteUrl(p.RemoteURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote_url: %w", err)
	}
	if p.LocalPath == "" {
		return nil, fmt.Errorf("local_path is required")
	}

	return h.appendOne(ctx, &events.RepositoryCloned{
		RepoID:    repoID,
		RemoteURL: remoteURL,
		LocalPath: p.LocalPath,
		At:        time.Now().UTC(),
	})
}

type fileChangePayload struct {
	Path      string `json:"path"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	IsRename  bool   `json:"is_rename"`
}

type analyzeCommitPayload struct {
	RepositoryID string             `json:"repository_id"`
	Hash         string             `json:"hash"`
	AuthorName   string             `json:"author_name"`
	AuthorEmail  string             `json:"author_email"`
	Message      string             `json:"message"`
	Parents      []string           `json:"parents"`
	Files        []fileChangePayload `json:"files"`
}

// AnalyzeCommit validates a commit-analysis request and records
// CommitAnalyzed.
func (h *Handlers) AnalyzeCommit(ctx context.Context, cmd dispatcher.Command) ([]events.DomainEvent, error) {
	var p analyzeCommitPayload
	if err := json.Unmarshal(cmd.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", dispatcher.ErrMalformedPayload, err)
	}

	repoID, err := resolveRepositoryID(p.RepositoryID)
	if err != nil {
		return nil, err
	}
	hash, err := valueobjects.NewCommitHash(p.Hash)
	if err != nil {
		return nil, fmt.Errorf("invalid hash: %w", err)
	}

	agg, err := h.loadAggregate(ctx, repoID)
	if err != nil {
		return nil, err
	}
	if !agg.IsCloned() {
		return nil, fmt.Errorf("repository %s has not been cloned", repoID)
	}

	parents := make([]valueobjects.CommitHash, 0, len(p.Parents))
	for _, raw := range p.Parents {
		parent, err := valueobjects.NewCommitHash(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid parent hash %q: %w", raw, err)
		}
		parents = append(parents, parent)
	}

	files := make([]events.FileChange, 0, len(p.Files))
	for _, f := range p.Files {
		path, err := valueobjects.NewFilePath(f.Path)
		if err != nil {
			return nil, fmt.Errorf("invalid file path %q: %w", f.Path, err)
		}
		files = append(files, events.FileChange{
			Path:      path,
			Additions: f.Additions,
			Deletions: f.Deletions,
			IsRename:  f.IsRename,
		})
	}

	return h.appendOne(ctx, &events.CommitAnalyzed{
		RepoID:    repoID,
		Hash:      hash,
		Author:    valueobjects.NewAuthorInfo(p.AuthorName, p.AuthorEmail),
		Committer: valueobjects.NewAuthorInfo(p.AuthorName, p.AuthorEmail),
		Message:   p.Message,
		Parents:   parents,
		Files:     files,
		At:        time.Now().UTC(),
	})
}

type createBranchPayload struct {
	RepositoryID string `json:"repository_id"`
	Name         string `json:"name"`
	Head         string `json:"head"`
}

// CreateBranch validates a branch-creation request and records
// BranchCreated.
func (h *Handlers) CreateBranch(ctx context.Context, cmd dispatcher.Command) ([]events.DomainEvent, error) {
	var p createBranchPayload
	if err := json.Unmarshal(cmd.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", dispatcher.ErrMalformedPayload, err)
	}

	repoID, err := resolveRepositoryID(p.RepositoryID)
	if err != nil {
		return nil, err
	}
	name, err := valueobjects.NewBranchName(p.Name)
	if err != nil {
		return nil, fmt.Errorf("invalid branch name: %w", err)
	}
	head, err := valueobjects.NewCommitHash(p.Head)
	if err != nil {
		return nil, fmt.Errorf("invalid head: %w", err)
	}

	agg, err := h.loadAggregate(ctx, repoID)
	if err != nil {
		return nil, err
	}
	if _, exists := agg.Branches[name]; exists {
		return nil, fmt.Errorf("branch %s already exists", name)
	}

	return h.appendOne(ctx, &events.BranchCreated{
		RepoID: repoID,
		Name:   name,
		Head:   head,
		At:     time.Now().UTC(),
	})
}

type deleteBranchPayload struct {
	RepositoryID string `json:"repository_id"`
	Name         string `json:"name"`
}

// DeleteBranch validates a branch-deletion request and records
// BranchDeleted.
func (h *Handlers) DeleteBranch(ctx context.Context, cmd dispatcher.Command) ([]events.DomainEvent, error) {
	var p deleteBranchPayload
	if err := json.Unmarshal(cmd.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", dispatcher.ErrMalformedPayload, err)
	}

	repoID, err := resolveRepositoryID(p.RepositoryID)
	if err != nil {
		return nil, err
	}
	name, err := valueobjects.NewBranchName(p.Name)
	if err != nil {
		return nil, fmt.Errorf("invalid branch name: %w", err)
	}

	agg, err := h.loadAggregate(ctx, repoID)
	if err != nil {
		return nil, err
	}
	if _, exists := agg.Branches[name]; !exists {
		return nil, fmt.Errorf("branch %s does not exist", name)
	}

	return h.appendOne(ctx, &events.BranchDeleted{
		RepoID: repoID,
		Name:   name,
		At:     time.Now().UTC(),
	})
}

type createTagPayload struct {
	RepositoryID string `json:"repository_id"`
	Name         string `json:"name"`
	Target       string `json:"target"`
}

// CreateTag validates a tag-creation request and records TagCreated.
func (h *Handlers) CreateTag(ctx context.Context, cmd dispatcher.Command) ([]events.DomainEvent, error) {
	var p createTagPayload
	if err := json.Unmarshal(cmd.Payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", dispatcher.ErrMalformedPayload, err)
	}

	repoID, err := resolveRepositoryID(p.RepositoryID)
	if err != nil {
		return nil, err
	}
	name, err := valueobjects.NewTagName(p.Name)
	if err != nil {
		return nil, fmt.Errorf("invalid tag name: %w", err)
	}
	target, err := valueobjects.NewCommitHash(p.Target)
	if err != nil {
		return nil, fmt.Errorf("invalid target: %w", err)
	}

	agg, err := h.loadAggregate(ctx, repoID)
	if err != nil {
		return nil, err
	}
	if _, exists := agg.Tags[name]; exists {
		return nil, fmt.Errorf("tag %s already exists", name)
	}

	return h.appendOne(ctx, &events.TagCreated{
		RepoID: repoID,
		Name:   name,
		Target: target,
		At:     time.Now().UTC(),
	})
}

func resolveRepositoryID(raw string) (valueobjects.RepositoryId, error) {
	if raw == "" {
		return valueobjects.NewRepositoryId(), nil
	}
	id, err := valueobjects.ParseRepositoryId(raw)
	if err != nil {
		return valueobjects.RepositoryId{}, fmt.Errorf("invalid repository_id: %w", err)
	}
	return id, nil
}
