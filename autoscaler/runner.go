package autoscaler

import (
	"fmt"
	"os"
	"strings"
	"time"

	metrics "github.com/armon/go-metrics"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/logging"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/notifier"
)

// Runner drives one decision cycle at a time: failsafe check, node group
// refresh, pending pod collection and the policy application, followed by
// state persistence. Cycles are initiated by the server's scaling ticker,
// which also holds the leadership check.
type Runner struct {
	// config is the Config that created this Runner. It is used internally to
	// construct other objects and pass data.
	config *structs.Config

	cluster  *StandardCluster
	timeouts *AutoscalingTimeouts
	policy   ScalingPolicy
	groups   []*structs.Group
	state    *structs.ScalingState
}

// NewRunner sets up the Runner type. The supplied policy decides how pending
// demand translates into scale operations; the node groups are built from
// the configuration and attached to the supplied scaling provider.
func NewRunner(config *structs.Config, policy ScalingPolicy,
	provider structs.ScalingProvider) (*Runner, error) {

	timeouts := NewAutoscalingTimeouts(
		time.Duration(config.CooldownPeriod) * time.Second)

	fanout := notifier.NewMultiProvider(
		config.Notification.ClusterScalingUID,
		config.Notification.ClusterIdentifier,
		config.Notification.Notifiers...)

	groups, err := buildGroups(config, provider)
	if err != nil {
		return nil, err
	}

	runner := &Runner{
		config:   config,
		cluster:  NewStandardCluster(config.OverProvision, timeouts, fanout),
		timeouts: timeouts,
		policy:   policy,
		groups:   groups,
		state:    &structs.ScalingState{},
	}
	return runner, nil
}

// Cycle performs a single scaling evaluation.
func (r *Runner) Cycle() {
	defer metrics.MeasureSince([]string{"cycle"}, time.Now())

	if !r.failsafeCheck() {
		logging.Warning("core/runner: the daemon is in failsafe mode, no " +
			"scaling evaluations or operations will be performed")
		return
	}

	r.refreshGroups()

	pendingPods, err := r.config.KubeClient.PendingPods()
	if err != nil {
		logging.Error("core/runner: failed to collect pending pods: %v", err)
		return
	}

	if r.config.ScalingDisable {
		logging.Info("core/runner: scaling is administratively disabled, "+
			"%v pending pods will not be acted upon", pendingPods.Count())
		return
	}

	r.cluster.UpdateSelectors(pendingPods)
	r.policy.Apply(pendingPods, r.groups, r.cluster)

	r.persistPolicyState()
}

// Status surfaces the active policy state for the status endpoints.
func (r *Runner) Status() structs.PolicyStatus {
	status := r.policy.Status()
	status.Failsafe = r.state.FailsafeMode
	return status
}

// failsafeCheck reloads the persisted daemon state and evaluates the
// failsafe circuit breaker.
func (r *Runner) failsafeCheck() bool {
	statePath := r.config.ConsulKeyRoot + "/state"
	r.config.ConsulClient.ReadState(statePath, r.state)

	return FailsafeCheck(r.state)
}

// refreshGroups updates every node group's capacity view from the scaling
// provider and maintains the process-wide cooldown tracker. A group that
// cannot be refreshed or fails the provider safety check is treated as
// stalled.
func (r *Runner) refreshGroups() {
	for _, group := range r.groups {
		if err := group.Provider.Refresh(group); err != nil {
			logging.Error("core/runner: failed to refresh node group %v: %v",
				group.Name, err)
			r.timeouts.RecordFailure(group)
			continue
		}

		if !group.Provider.SafetyCheck(group) {
			r.timeouts.RecordFailure(group)
			continue
		}

		r.timeouts.Clear(group)
	}
}

// persistPolicyState stores the cross-cycle policy counters so that a
// restart resumes accounting rather than starting over.
func (r *Runner) persistPolicyState() {
	switch policy := r.policy.(type) {
	case *CostBasedScalingPolicy:
		state := policy.State()
		path := r.config.ConsulKeyRoot + "/policy/cost"
		if err := r.config.ConsulClient.PersistState(path, &state); err != nil {
			logging.Error("core/runner: %v", err)
		}

	case *GrowthBasedScalingPolicy:
		state := policy.State()
		path := r.config.ConsulKeyRoot + "/policy/growth"
		if err := r.config.ConsulClient.PersistState(path, &state); err != nil {
			logging.Error("core/runner: %v", err)
		}
	}
}

// NewScalingPolicy builds the configured scaling policy, restoring any
// persisted policy state from Consul.
func NewScalingPolicy(config *structs.Config) (ScalingPolicy, error) {
	switch config.Policy.Name {

	case structs.PolicyBasic:
		return NewBasicScalingPolicy(), nil

	case structs.PolicyCost:
		costs, err := loadCostTable(config)
		if err != nil {
			return nil, err
		}

		state := &structs.CostState{}
		path := config.ConsulKeyRoot + "/policy/cost"
		config.ConsulClient.ReadState(path, state)

		return NewCostBasedScalingPolicy(config.Policy.MaxCostPerHour, costs,
			state), nil

	case structs.PolicyGrowth:
		state := &structs.GrowthState{}
		path := config.ConsulKeyRoot + "/policy/growth"
		config.ConsulClient.ReadState(path, state)

		return NewGrowthBasedScalingPolicy(config.Policy.GrowthFactor,
			config.Policy.TriggersToProvision, state), nil

	default:
		return nil, fmt.Errorf("unknown scaling policy %v, must be one of: "+
			"%v, %v, %v", config.Policy.Name, structs.PolicyBasic,
			structs.PolicyCost, structs.PolicyGrowth)
	}
}

// loadCostTable reads the cost reference data for the configured region.
func loadCostTable(config *structs.Config) (structs.CostTable, error) {
	file, err := os.Open(config.Policy.CostDataPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open cost reference data at %v: %v",
			config.Policy.CostDataPath, err)
	}
	defer file.Close()

	return structs.ParseCostTable(file, config.Region)
}

// buildGroups translates the configured node groups into core group objects
// attached to the scaling provider.
func buildGroups(config *structs.Config,
	provider structs.ScalingProvider) ([]*structs.Group, error) {

	var groups []*structs.Group

	for _, groupConfig := range config.NodeGroups {
		taints, err := parseTaints(groupConfig.Taints)
		if err != nil {
			return nil, fmt.Errorf("node group %v: %v", groupConfig.Name, err)
		}

		groups = append(groups, &structs.Group{
			Name:         groupConfig.Name,
			Region:       config.Region,
			InstanceType: groupConfig.InstanceType,
			UnitCapacity: structs.Resource{
				CPUMillis: groupConfig.CPUMillis,
				MemoryMB:  groupConfig.MemoryMB,
				GPU:       groupConfig.GPU,
				Pods:      groupConfig.MaxPods,
			},
			Priority: groupConfig.Priority,
			Labels:   groupConfig.Labels,
			Taints:   taints,
			Provider: provider,
		})
	}

	return groups, nil
}

// parseTaints parses taint declarations of the form key=value:effect.
func parseTaints(declarations []string) ([]structs.Taint, error) {
	var taints []structs.Taint

	for _, declaration := range declarations {
		pair, effect, ok := strings.Cut(declaration, ":")
		if !ok {
			return nil, fmt.Errorf("invalid taint %q, expected key=value:effect",
				declaration)
		}

		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid taint %q, expected key=value:effect",
				declaration)
		}

		taints = append(taints, structs.Taint{
			Key:    key,
			Value:  value,
			Effect: effect,
		})
	}

	return taints, nil
}
