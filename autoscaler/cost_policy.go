package autoscaler

import (
	"sync"
	"time"

	"github.com/dariubs/percent"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/logging"
)

// defaultAvgHoursUsed is assumed until enough terminated instances have been
// tracked to compute a real average lifetime.
const defaultAvgHoursUsed = 0.25

// budgetThresholdPercent is the soft ceiling applied to the hourly budget.
// Predicted spend beyond this share of the budget caps the request; it is not
// a hard guarantee, actual spend depends on real instance lifetimes.
const budgetThresholdPercent = 75

// CostBasedScalingPolicy scales like the basic policy but caps every request
// so that the predicted hourly spend stays within a soft share of the
// configured budget. Spend is estimated from the rolling average lifetime of
// terminated instances, fed in through the NodeTerminated event sink.
type CostBasedScalingPolicy struct {
	maxCostPerHour float64
	costs          structs.CostTable

	stateLock sync.Mutex
	state     *structs.CostState
}

// NewCostBasedScalingPolicy returns a cost-constrained scaling policy using
// the supplied per-instance-type hourly cost table. A previously persisted
// state may be passed in to resume accounting across restarts.
func NewCostBasedScalingPolicy(maxCostPerHour float64, costs structs.CostTable,
	state *structs.CostState) *CostBasedScalingPolicy {

	if state == nil || state.StartTime.IsZero() {
		state = &structs.CostState{StartTime: time.Now()}
	}

	return &CostBasedScalingPolicy{
		maxCostPerHour: maxCostPerHour,
		costs:          costs,
		state:          state,
	}
}

// Name returns the name of the scaling policy.
func (p *CostBasedScalingPolicy) Name() string {
	return structs.PolicyCost
}

// Status returns the point-in-time view of the policy.
func (p *CostBasedScalingPolicy) Status() structs.PolicyStatus {
	p.stateLock.Lock()
	defer p.stateLock.Unlock()

	state := *p.state
	return structs.PolicyStatus{Policy: p.Name(), Cost: &state}
}

// State returns a copy of the accounting state for persistence.
func (p *CostBasedScalingPolicy) State() structs.CostState {
	p.stateLock.Lock()
	defer p.stateLock.Unlock()
	return *p.state
}

// Apply runs the decision procedure with the budget gate hooked into the
// per-group loop.
func (p *CostBasedScalingPolicy) Apply(pendingPods structs.PendingPods,
	groups []*structs.Group, cluster structs.Cluster) {

	p.rolloverHour()
	p.logStats()

	var asyncOperations []*structs.AsyncOperation

	for selectorsHash, pods := range pendingPods {
		asyncOperations = append(asyncOperations, decideNumInstances(
			cluster, groups, selectorsHash, pods, p.budgetGate)...)
	}

	fulfillRequests(cluster, asyncOperations)
}

// NodeTerminated accounts for a removed instance. The node-lifecycle
// collaborator must report every removal for spend tracking to stay accurate;
// terminations are not detected here.
func (p *CostBasedScalingPolicy) NodeTerminated(creationTime time.Time, instanceType string) {
	lifetime := time.Since(creationTime)

	p.stateLock.Lock()
	defer p.stateLock.Unlock()

	p.state.TotalSecondsInstancesUsed += lifetime.Seconds()
	p.state.InstancesTracked++
	p.state.LastUpdated = time.Now()

	costPerHour, ok := p.costs[instanceType]
	if !ok {
		logging.Warning("core/cost_policy: no cost reference data for "+
			"instance type %v, spend tracking is incomplete", instanceType)
		return
	}

	p.state.SpentThisHour += lifetime.Hours() * costPerHour

	logging.Debug("core/cost_policy: tracked termination of %v instance "+
		"after %v, spent this hour now %.4f", instanceType,
		lifetime.Round(time.Second), p.state.SpentThisHour)
}

// budgetGate caps unitsRequested at the largest count whose predicted spend
// stays within the soft budget ceiling.
func (p *CostBasedScalingPolicy) budgetGate(group *structs.Group, unitsRequested int) int {
	costPerHour, ok := p.costs[group.InstanceType]
	if !ok {
		logging.Warning("core/cost_policy: no cost reference data for "+
			"instance type %v, group %v is not budget capped",
			group.InstanceType, group.Name)
		return unitsRequested
	}

	p.stateLock.Lock()
	defer p.stateLock.Unlock()

	threshold := percent.PercentFloat(budgetThresholdPercent, p.maxCostPerHour)
	avgHoursUsed := p.avgHoursUsedPerInstance()

	for i := 0; i < unitsRequested; i++ {
		predictedCost := p.state.SpentThisHour +
			float64(i+1)*avgHoursUsed*costPerHour

		if predictedCost > threshold {
			logging.Info("core/cost_policy: budget gate capped group %v "+
				"request from %v to %v units (spent: %.4f, predicted: %.4f, "+
				"threshold: %.4f)", group.Name, unitsRequested, i,
				p.state.SpentThisHour, predictedCost, threshold)
			return i
		}
	}

	return unitsRequested
}

// avgHoursUsedPerInstance derives the rolling average instance lifetime.
// Callers must hold stateLock.
func (p *CostBasedScalingPolicy) avgHoursUsedPerInstance() float64 {
	if p.state.InstancesTracked == 0 {
		return defaultAvgHoursUsed
	}
	return p.state.TotalSecondsInstancesUsed /
		float64(p.state.InstancesTracked) / 3600
}

// rolloverHour resets the hourly spend accumulator when the wall clock has
// crossed into a new tracking hour.
func (p *CostBasedScalingPolicy) rolloverHour() {
	p.stateLock.Lock()
	defer p.stateLock.Unlock()

	elapsedHours := int(time.Since(p.state.StartTime).Hours())
	if elapsedHours > p.state.HourIndex {
		logging.Debug("core/cost_policy: hour boundary crossed, resetting "+
			"hourly spend of %.4f", p.state.SpentThisHour)
		p.state.HourIndex = elapsedHours
		p.state.SpentThisHour = 0
		p.state.LastUpdated = time.Now()
	}
}

func (p *CostBasedScalingPolicy) logStats() {
	p.stateLock.Lock()
	defer p.stateLock.Unlock()

	logging.Info("core/cost_policy: hour %v, spent %.4f of %.4f budget "+
		"(%.1f%%), avg instance lifetime %.2fh over %v instances",
		p.state.HourIndex, p.state.SpentThisHour, p.maxCostPerHour,
		percent.PercentOfFloat(p.state.SpentThisHour, p.maxCostPerHour),
		p.avgHoursUsedPerInstance(), p.state.InstancesTracked)
}
