package autoscaler

import (
	"testing"
	"time"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/testutil"
)

func TestGrowthPolicy_TriggersAfterSustainedGrowth(t *testing.T) {
	policy := NewGrowthBasedScalingPolicy(2, 3, nil)

	// The first observation establishes the baseline; each subsequent count
	// more than doubles the last, so the third growth lands on the fourth
	// call and fires the provision.
	sequence := []int{1, 3, 7}
	for i, numPending := range sequence {
		if policy.observe(numPending) {
			t.Fatalf("provision fired early at call %v", i+1)
		}
	}

	if !policy.observe(15) {
		t.Fatal("expected provision on the fourth call")
	}

	state := policy.State()
	if state.TriggerCount != 0 || state.LastPendingCount != 0 {
		t.Fatalf("expected trigger state consumed but got %+v", state)
	}
}

func TestGrowthPolicy_RecedingDemandResetsTriggers(t *testing.T) {
	policy := NewGrowthBasedScalingPolicy(2, 3, nil)

	policy.observe(4)
	policy.observe(9)
	if state := policy.State(); state.TriggerCount != 1 {
		t.Fatalf("expected 1 trigger but got %v", state.TriggerCount)
	}

	// 6 is below 75% of the last recorded count of 9.
	policy.observe(6)

	state := policy.State()
	if state.TriggerCount != 0 || state.LastPendingCount != 0 {
		t.Fatalf("expected trigger state reset but got %+v", state)
	}
}

func TestGrowthPolicy_SteadyDemandHoldsState(t *testing.T) {
	policy := NewGrowthBasedScalingPolicy(2, 3, nil)

	policy.observe(4)
	policy.observe(9)

	// 8 neither doubles 9 nor drops below 75% of it.
	policy.observe(8)

	state := policy.State()
	if state.TriggerCount != 1 || state.LastPendingCount != 9 {
		t.Fatalf("expected trigger state held but got %+v", state)
	}
}

func TestGrowthPolicy_ResumesFromPersistedState(t *testing.T) {
	persisted := &structs.GrowthState{TriggerCount: 2, LastPendingCount: 7,
		LastUpdated: time.Now()}
	policy := NewGrowthBasedScalingPolicy(2, 3, persisted)

	if !policy.observe(15) {
		t.Fatal("expected provision to fire from the persisted trigger window")
	}
}

func TestGrowthPolicy_ApplyScalesOnlyWhenTriggered(t *testing.T) {
	cluster, _ := testCluster(0)
	provider := &testutil.FakeScalingProvider{}
	group := testGroup("workers-a", provider)

	policy := NewGrowthBasedScalingPolicy(2, 1, nil)

	pendingPods := testPendingPods("web-1")
	cluster.UpdateSelectors(pendingPods)

	// Baseline cycle: no provision yet.
	policy.Apply(pendingPods, []*structs.Group{group}, cluster)
	if len(provider.Calls()) != 0 {
		t.Fatalf("expected no scale calls on baseline but got %v", provider.Calls())
	}

	grownPods := testPendingPods("web-1", "web-2", "web-3")
	cluster.UpdateSelectors(grownPods)

	policy.Apply(grownPods, []*structs.Group{group}, cluster)
	calls := provider.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 scale call after growth but got %v", len(calls))
	}
	if calls[0].NewCapacity != 2 {
		t.Fatalf("expected new capacity 2 but got %v", calls[0].NewCapacity)
	}
}
