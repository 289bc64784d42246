// Package analyticsrunner schedules the batch analytics in pkg/analytics
// (collaboration detection, ownership, team clustering, file churn) over
// every known repository's commit and file-change history, appending the
// results to the event log the same way a command handler appends a
// command's effect — the analytics themselves are read-only over the
// projections, but their findings are first-class events per spec.md §4.6.
package analyticsrunner

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/arc-self/git-domain/pkg/analytics"
	"github.com/arc-self/git-domain/pkg/eventlog"
	"github.com/arc-self/git-domain/pkg/events"
	"github.com/arc-self/git-domain/pkg/projection"
	"github.com/arc-self/git-domain/pkg/valueobjects"
)

// Runner periodically recomputes collaboration, ownership, team-cluster and
// churn analytics from the commit-history and file-change projections.
type Runner struct {
	log     *eventlog.Log
	list    *projection.RepositoryListProjection
	history *projection.CommitHistoryProjection
	files   *projection.FileChangeProjection

	collabCfg  analytics.CollaborationConfig
	qualityCfg analytics.CodeQualityConfig

	logger *zap.Logger
	cron   *cron.Cron
}

// New builds a Runner over the given projections, scheduled with
// robfig/cron the same way pkg/supervision schedules the projection-lag
// sweep.
func New(
	log *eventlog.Log,
	list *projection.RepositoryListProjection,
	history *projection.CommitHistoryProjection,
	files *projection.FileChangeProjection,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		log:        log,
		list:       list,
		history:    history,
		files:      files,
		collabCfg:  analytics.DefaultCollaborationConfig(),
		qualityCfg: analytics.DefaultCodeQualityConfig(),
		logger:     logger,
		cron:       cron.New(),
	}
}

// Start schedules runOnce on the given cron expression and begins running
// it in the background.
func (r *Runner) Start(schedule string) error {
	if _, err := r.cron.AddFunc(schedule, r.runOnce); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

// Stop waits for any in-flight run to finish and stops the scheduler.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Runner) runOnce() {
	ctx := context.Background()
	for _, summary := range r.list.All() {
		repoID, err := valueobjects.ParseRepositoryId(summary.ID)
		if err != nil {
			r.logger.Warn("analytics runner: skipping unparseable repository id",
				zap.String("id", summary.ID), zap.Error(err))
			continue
		}
		if err := r.analyzeRepository(ctx, repoID); err != nil {
			r.logger.Error("analytics runner: repository scan failed",
				zap.String("repository_id", summary.ID), zap.Error(err))
		}
	}
}

// analyzeRepository runs every batch analyzer over one repository's known
// history and appends the resulting analytics events.
func (r *Runner) analyzeRepository(ctx context.Context, repoID valueobjects.RepositoryId) error {
	entries := r.history.History(repoID.String(), 0)
	if len(entries) == 0 {
		return nil
	}

	observations := make([]analytics.CommitObservation, 0, len(entries))
	touches := make(map[string][]analytics.ChurnObservation)
	paths := make(map[string]valueobjects.FilePath)

	for _, e := range entries {
		changes := r.files.ChangesForCommit(e.Hash.String())
		files := make([]valueobjects.FilePath, 0, len(changes))
		for _, c := range changes {
			files = append(files, c.Path)
			key := c.Path.String()
			paths[key] = c.Path
			touches[key] = append(touches[key], analytics.ChurnObservation{
				Author:    e.Author,
				Timestamp: e.Timestamp,
			})
		}
		observations = append(observations, analytics.CommitObservation{
			CommitHash: e.Hash,
			Author:     e.Author,
			Files:      files,
			Timestamp:  e.Timestamp,
		})
	}

	now := time.Now().UTC()
	var batch []events.DomainEvent

	collabs := analytics.DetectCollaborations(observations, r.collabCfg)
	for _, c := range collabs {
		batch = append(batch, &events.CollaborationDetected{
			RepoID:      repoID,
			AuthorA:     c.AuthorA,
			AuthorB:     c.AuthorB,
			SharedFiles: len(c.SharedFiles),
			Strength:    c.Strength,
			At:          now,
		})
	}

	if ownerships := analytics.ComputeOwnership(observations); len(ownerships) > 0 {
		fileOwnerships := make([]events.FileOwnership, 0, len(ownerships))
		for _, o := range ownerships {
			path, ok := paths[o.Path]
			if !ok {
				continue
			}
			fileOwnerships = append(fileOwnerships, events.FileOwnership{
				Path:         path,
				PrimaryOwner: o.PrimaryOwner,
				OwnershipPct: o.OwnershipPct,
			})
		}
		batch = append(batch, &events.CodeOwnershipCalculated{
			RepoID:     repoID,
			Ownerships: fileOwnerships,
			At:         now,
		})
	}

	for _, tc := range analytics.DetectTeamClusters(collabs, r.collabCfg.MinTeamSize) {
		batch = append(batch, &events.TeamClusterDetected{
			RepoID:   repoID,
			Members:  tc.Members,
			Cohesion: tc.Cohesion,
			At:       now,
		})
	}

	for key, path := range paths {
		churn := analytics.ComputeChurn(touches[key], r.qualityCfg.ChurnWindowDays, now)
		batch = append(batch, &events.FileChurnCalculated{
			RepoID:      repoID,
			Path:        path,
			ChangeCount: churn.ChangeCount,
			WindowDays:  churn.WindowDays,
			At:          now,
		})
	}

	return r.appendBatch(ctx, batch)
}

// appendBatch wraps every derived event in its own envelope and writes
// them with a single eventlog.Log.AppendBatch call rather than one round
// trip per finding.
func (r *Runner) appendBatch(ctx context.Context, batch []events.DomainEvent) error {
	if len(batch) == 0 {
		return nil
	}
	envs := make([]events.Envelope, 0, len(batch))
	for _, event := range batch {
		env, err := events.NewEnvelope(event)
		if err != nil {
			return err
		}
		envs = append(envs, env)
	}
	_, err := r.log.AppendBatch(ctx, envs)
	return err
}
