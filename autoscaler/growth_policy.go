package autoscaler

import (
	"sync"
	"time"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/logging"
)

// recedeFactor is the fraction of the last recorded pending count below which
// demand is considered to have receded, discarding the accumulated growth
// signal.
const recedeFactor = 0.75

// GrowthBasedScalingPolicy defers scaling until pending demand has grown by
// a configured factor for a configured number of consecutive cycles. This
// trades scheduling latency for resistance to short demand spikes.
type GrowthBasedScalingPolicy struct {
	growthFactor        float64
	triggersToProvision int

	stateLock sync.Mutex
	state     *structs.GrowthState
}

// NewGrowthBasedScalingPolicy returns a growth-triggered scaling policy. A
// previously persisted state may be passed in to resume the trigger window
// across restarts.
func NewGrowthBasedScalingPolicy(growthFactor float64, triggersToProvision int,
	state *structs.GrowthState) *GrowthBasedScalingPolicy {

	if state == nil {
		state = &structs.GrowthState{}
	}

	return &GrowthBasedScalingPolicy{
		growthFactor:        growthFactor,
		triggersToProvision: triggersToProvision,
		state:               state,
	}
}

// Name returns the name of the scaling policy.
func (p *GrowthBasedScalingPolicy) Name() string {
	return structs.PolicyGrowth
}

// Status returns the point-in-time view of the policy.
func (p *GrowthBasedScalingPolicy) Status() structs.PolicyStatus {
	p.stateLock.Lock()
	defer p.stateLock.Unlock()

	state := *p.state
	return structs.PolicyStatus{Policy: p.Name(), Growth: &state}
}

// State returns a copy of the trigger state for persistence.
func (p *GrowthBasedScalingPolicy) State() structs.GrowthState {
	p.stateLock.Lock()
	defer p.stateLock.Unlock()
	return *p.state
}

// Apply updates the trigger window with the observed pending count and only
// runs the decision procedure once enough consecutive growth cycles have
// accumulated.
func (p *GrowthBasedScalingPolicy) Apply(pendingPods structs.PendingPods,
	groups []*structs.Group, cluster structs.Cluster) {

	if !p.observe(pendingPods.Count()) {
		return
	}

	var asyncOperations []*structs.AsyncOperation

	for selectorsHash, pods := range pendingPods {
		asyncOperations = append(asyncOperations,
			decideNumInstances(cluster, groups, selectorsHash, pods, nil)...)
	}

	fulfillRequests(cluster, asyncOperations)
}

// observe folds one cycle's pending count into the trigger window and reports
// whether the policy should provision this cycle. Provisioning consumes the
// accumulated signal.
func (p *GrowthBasedScalingPolicy) observe(numPending int) bool {
	p.stateLock.Lock()
	defer p.stateLock.Unlock()

	switch {
	case p.state.LastPendingCount == 0:
		// First sight of demand establishes the baseline without counting
		// as growth.
		if numPending > 0 {
			p.state.LastPendingCount = numPending
			p.state.LastUpdated = time.Now()
		}

	case float64(numPending) > p.growthFactor*float64(p.state.LastPendingCount):
		p.state.TriggerCount++
		p.state.LastPendingCount = numPending
		p.state.LastUpdated = time.Now()
		logging.Debug("core/growth_policy: pending count grew to %v, "+
			"trigger %v of %v", numPending, p.state.TriggerCount,
			p.triggersToProvision)

	case float64(numPending) < recedeFactor*float64(p.state.LastPendingCount):
		logging.Debug("core/growth_policy: pending count receded to %v, "+
			"discarding %v triggers", numPending, p.state.TriggerCount)
		p.state.TriggerCount = 0
		p.state.LastPendingCount = 0
		p.state.LastUpdated = time.Now()
	}

	logging.Info("core/growth_policy: %v pending pods, trigger %v of %v, "+
		"last recorded count %v", numPending, p.state.TriggerCount,
		p.triggersToProvision, p.state.LastPendingCount)

	if p.state.TriggerCount < p.triggersToProvision {
		return false
	}

	p.state.TriggerCount = 0
	p.state.LastPendingCount = 0
	p.state.LastUpdated = time.Now()
	return true
}
