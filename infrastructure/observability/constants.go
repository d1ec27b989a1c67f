package observability

// Metric name prefixes
const (
	MetricPrefix = "pointsbot"
)

// Metric names
const (
	// Discord metrics
	CommandsTotal   = MetricPrefix + ".commands.total"
	CommandDuration = MetricPrefix + ".commands.duration"

	// Ledger metrics
	LedgerTransactionsTotal = MetricPrefix + ".ledger.transactions_total"
	LedgerPointsMoved       = MetricPrefix + ".ledger.points_moved_total"
	GuildResetsTotal        = MetricPrefix + ".ledger.guild_resets_total"

	// Role metrics
	ThresholdChangesTotal = MetricPrefix + ".roles.threshold_changes_total"
	RoleChangesTotal      = MetricPrefix + ".roles.changes_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// Database metrics
	DatabaseQueriesTotal  = MetricPrefix + ".database.queries_total"
	DatabaseQueryDuration = MetricPrefix + ".database.query_duration"
)

// Label keys
const (
	// Common labels
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelOutcome   = "outcome"

	// Discord labels
	LabelCommand = "command"

	// Role labels
	LabelAction = "action"

	// Database labels
	LabelRepository = "repository"
	LabelMethod     = "method"
)

// Outcomes
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Role change actions
const (
	RoleActionGrant  = "grant"
	RoleActionRevoke = "revoke"
	RoleActionFailed = "failed"
)
