// Package subject implements the bijective mapping between a typed
// (MessageKind, Aggregate, Action) triple and the dotted NATS subject
// strings the Git domain publishes and subscribes on.
//
// Ported from original_source/src/nats/subject.rs: the Rust side modeled
// Aggregate/MessageType/CommandAction/EventAction/QueryAction as enums with
// Display impls; Go models them as string-backed types with a constant set
// of values, since Go enums are conventionally typed constants rather than
// closed sum types.
package subject

import "fmt"

// Domain is the fixed domain segment of every subject this package builds.
const Domain = "git"

// MessageKind identifies which of the three subject families a subject
// belongs to.
type MessageKind string

const (
	KindCommand MessageKind = "cmd"
	KindEvent   MessageKind = "event"
	KindQuery   MessageKind = "query"
)

// Aggregate names one of the Git domain's aggregate roots.
type Aggregate string

const (
	AggregateRepository Aggregate = "repository"
	AggregateCommit     Aggregate = "commit"
	AggregateBranch     Aggregate = "branch"
	AggregateTag        Aggregate = "tag"
)

// Subject is a fully-resolved (kind, aggregate, action) triple, renderable
// as a lowercase dot-separated NATS subject.
type Subject struct {
	Kind      MessageKind
	Aggregate Aggregate
	Action    string
}

// String renders "git.<kind>.<aggregate>.<action>".
func (s Subject) String() string {
	return fmt.Sprintf("%s.%s.%s.%s", Domain, s.Kind, s.Aggregate, s.Action)
}

// Wildcard builds the subject matching every message of kind, regardless of
// aggregate or action: "git.<kind>.>".
func Wildcard(kind MessageKind) string {
	return fmt.Sprintf("%s.%s.>", Domain, kind)
}

// AggregateWildcard builds the subject matching every message of kind for
// one aggregate: "git.<kind>.<aggregate>.>".
func AggregateWildcard(kind MessageKind, aggregate Aggregate) string {
	return fmt.Sprintf("%s.%s.%s.>", Domain, kind, aggregate)
}

type actionEntry struct {
	aggregate Aggregate
	action    string
}

// commandActions enumerates the total set of recognized command type names,
// per spec.md §4.1: unknown names must return absence, never a guess. Only
// names backed by a pkg/commandhandlers handler belong here — this is not
// aspirational router vocabulary.
var commandActions = map[string]actionEntry{
	"CloneRepository": {AggregateRepository, "clone"},
	"AnalyzeCommit":   {AggregateCommit, "analyze"},
	"CreateBranch":    {AggregateBranch, "create"},
	"DeleteBranch":    {AggregateBranch, "delete"},
	"CreateTag":       {AggregateTag, "create"},
}

// eventActions enumerates the total set of recognized event type names. Only
// names backed by an events.DomainEvent implementation belong here.
var eventActions = map[string]actionEntry{
	"RepositoryCloned":           {AggregateRepository, "cloned"},
	"RepositoryAnalyzed":         {AggregateRepository, "analyzed"},
	"RepositoryMetadataUpdated":  {AggregateRepository, "metadata_updated"},
	"CommitAnalyzed":             {AggregateCommit, "analyzed"},
	"FileAnalyzed":               {AggregateCommit, "file_analyzed"},
	"MergeDetected":              {AggregateCommit, "merge_detected"},
	"BranchCreated":              {AggregateBranch, "created"},
	"BranchDeleted":              {AggregateBranch, "deleted"},
	"TagCreated":                 {AggregateTag, "created"},
	"CollaborationDetected":      {AggregateCommit, "collaboration_detected"},
	"CodeOwnershipCalculated":    {AggregateCommit, "ownership_calculated"},
	"TeamClusterDetected":        {AggregateCommit, "team_cluster_detected"},
	"FileComplexityAnalyzed":     {AggregateCommit, "complexity_analyzed"},
	"FileChurnCalculated":        {AggregateCommit, "churn_calculated"},
	"TechnicalDebtIdentified":    {AggregateCommit, "debt_identified"},
	"RepositoryHealthCalculated": {AggregateRepository, "health_calculated"},
	"CircularDependencyDetected": {AggregateCommit, "circular_dependency_detected"},
}

// queryActions enumerates the total set of recognized query type names.
var queryActions = map[string]actionEntry{
	"GetRepository":        {AggregateRepository, "get"},
	"ListRepositories":     {AggregateRepository, "list"},
	"GetRepositoryDetails": {AggregateRepository, "details"},
	"GetCommit":            {AggregateCommit, "get"},
	"GetCommitHistory":     {AggregateCommit, "history"},
	"GetBranch":            {AggregateBranch, "get"},
	"ListBranches":         {AggregateBranch, "list"},
	"GetTag":               {AggregateTag, "get"},
	"ListTags":             {AggregateTag, "list"},
	"GetFileChanges":       {AggregateCommit, "changes"},
}

func lookup(table map[string]actionEntry, kind MessageKind, name string) (Subject, bool) {
	entry, ok := table[name]
	if !ok {
		return Subject{}, false
	}
	return Subject{Kind: kind, Aggregate: entry.aggregate, Action: entry.action}, true
}

// CommandSubject maps a command type name to its Subject. Returns false for
// any name not in the enumerated command set — callers must not guess.
func CommandSubject(commandType string) (Subject, bool) {
	return lookup(commandActions, KindCommand, commandType)
}

// EventSubject maps an event type name to its Subject.
func EventSubject(eventType string) (Subject, bool) {
	return lookup(eventActions, KindEvent, eventType)
}

// QuerySubject maps a query type name to its Subject.
func QuerySubject(queryType string) (Subject, bool) {
	return lookup(queryActions, KindQuery, queryType)
}

// AckSubject builds the per-command ack subject "git.ack.<command_id>".
func AckSubject(commandID string) string {
	return fmt.Sprintf("%s.ack.%s", Domain, commandID)
}
