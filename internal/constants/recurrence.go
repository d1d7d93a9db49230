package constants

// Frequency is the recurrence rule family of a habit or recurring step.
type Frequency string

// GoalStatus is the lifecycle state of a goal.
type GoalStatus string

// DisplayMode controls how a recurring step template is rendered.
type DisplayMode string

// WorkflowType identifies a pending workflow notification.
type WorkflowType string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	// FrequencyCustom is a legacy value treated as weekly.
	FrequencyCustom Frequency = "custom"

	GoalActive    GoalStatus = "active"
	GoalPaused    GoalStatus = "paused"
	GoalCompleted GoalStatus = "completed"

	DisplayNextOnly DisplayMode = "next_only"
	DisplayAll      DisplayMode = "all"

	WorkflowDailyReview WorkflowType = "daily_review"

	// Ordinal prefixes for composite monthly tokens such as "first_monday".
	OrdinalFirst  = "first"
	OrdinalSecond = "second"
	OrdinalThird  = "third"
	OrdinalFourth = "fourth"
	OrdinalLast   = "last"
)

// Ordinals lists the composite-token ordinals in index order; "last" is handled separately.
var Ordinals = []string{OrdinalFirst, OrdinalSecond, OrdinalThird, OrdinalFourth}
