package observability

const (
	MetricPrefix = "guildkeeper"
)

// Metric names
const (
	// Activity metrics
	MessagesReadTotal   = MetricPrefix + ".activity.messages_read_total"
	ActivityAwardsTotal = MetricPrefix + ".activity.awards_total"
	VoiceSessionsClosed = MetricPrefix + ".voice.sessions_closed_total"

	// Scheduler metrics
	SchedulerJobRunsTotal = MetricPrefix + ".scheduler.job_runs_total"
	SchedulerJobDuration  = MetricPrefix + ".scheduler.job_duration"
	SchedulerTicksSkipped = MetricPrefix + ".scheduler.ticks_skipped_total"

	// Economy metrics
	EconomyTransactionsTotal = MetricPrefix + ".economy.transactions_total"
	CompensationsTotal       = MetricPrefix + ".economy.compensations_total"

	// Moderation metrics
	EnforcementActionsTotal = MetricPrefix + ".moderation.enforcement_actions_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelType      = "type"
	LabelEventType = "event_type"
	LabelJob       = "job"
	LabelOutcome   = "outcome"
	LabelAction    = "action"
)

// Job outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped"
)

// Activity award sources
const (
	AwardSourceMessage = "message"
	AwardSourceVoice   = "voice"
)
