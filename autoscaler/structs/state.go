package structs

import "time"

// ScalingState is the persisted daemon-wide scaling state. It backs the
// failsafe circuit breaker and records the most recent scaling activity for
// operator inspection.
type ScalingState struct {
	// FailsafeMode tracks whether an operator has placed the daemon in
	// failsafe mode. When enabled, no scaling evaluations or operations are
	// performed by any running copy of the daemon.
	FailsafeMode bool `json:"failsafe_mode"`

	// FailsafeModeAdmin indicates the state change originates from the CLI
	// tools, which suppresses the in-daemon logging output.
	FailsafeModeAdmin bool `json:"-"`

	// LastScalingEvent represents the last time a scale operation was
	// successfully issued.
	LastScalingEvent time.Time `json:"last_scaling_event"`

	// LastUpdated tracks the last time the state tracking data was updated.
	LastUpdated time.Time `json:"last_updated"`
}

// CostState is the persisted accounting state of the cost-based scaling
// policy. It is mutated on hour boundaries and by node-termination events;
// the decision procedure itself only reads it.
type CostState struct {
	// StartTime is the wall-clock instant cost tracking began.
	StartTime time.Time `json:"start_time"`

	// HourIndex is the number of whole hours of tracking already accounted
	// for. A new hour boundary resets SpentThisHour.
	HourIndex int `json:"hour_index"`

	// SpentThisHour accumulates the estimated spend within the current hour.
	SpentThisHour float64 `json:"spent_this_hour"`

	// TotalSecondsInstancesUsed accumulates the observed lifetime of every
	// terminated instance.
	TotalSecondsInstancesUsed float64 `json:"total_seconds_instances_used"`

	// InstancesTracked is the number of terminated instances accounted for
	// in TotalSecondsInstancesUsed.
	InstancesTracked int `json:"instances_tracked"`

	// LastUpdated tracks the last time the state tracking data was updated.
	LastUpdated time.Time `json:"last_updated"`
}

// GrowthState is the persisted trigger state of the growth-based scaling
// policy.
type GrowthState struct {
	// TriggerCount is the number of consecutive qualifying growth cycles
	// observed so far.
	TriggerCount int `json:"trigger_count"`

	// LastPendingCount is the pending-pod count recorded at the last
	// qualifying growth cycle.
	LastPendingCount int `json:"last_pending_count"`

	// LastUpdated tracks the last time the state tracking data was updated.
	LastUpdated time.Time `json:"last_updated"`
}

// StatusResponse is the daemon-wide status view returned by the status
// endpoints.
type StatusResponse struct {
	// Version is the running daemon version.
	Version string `json:"version"`

	// Leader reports whether this daemon currently holds the leadership
	// lock.
	Leader bool `json:"leader"`

	// Failsafe reports whether the failsafe circuit breaker is tripped.
	Failsafe bool `json:"failsafe"`
}

// PolicyStatus is the point-in-time view of the active scaling policy
// returned by the status endpoints.
type PolicyStatus struct {
	// Policy is the active policy name.
	Policy string `json:"policy"`

	// Failsafe reports whether the daemon currently declines all scaling
	// activity.
	Failsafe bool `json:"failsafe"`

	// Cost carries the cost policy accounting state, when active.
	Cost *CostState `json:"cost,omitempty"`

	// Growth carries the growth policy trigger state, when active.
	Growth *GrowthState `json:"growth,omitempty"`
}

// FailsafeMode carries the parsed CLI options for an administrative change
// to the failsafe lock.
type FailsafeMode struct {
	// Config is the merged daemon configuration used to reach Consul.
	Config *Config

	// Enable and Disable indicate the requested transition. Exactly one
	// must be set.
	Enable  bool
	Disable bool

	// Force suppresses confirmation prompts.
	Force bool

	// Verb is the action word used when prompting and reporting.
	Verb string
}
