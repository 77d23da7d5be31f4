package autoscaler

import (
	"errors"
	"testing"
	"time"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/testutil"
)

func testCluster(overProvision int) (*StandardCluster, *testutil.FakeNotifier) {
	fakeNotifier := &testutil.FakeNotifier{}
	cluster := NewStandardCluster(overProvision,
		NewAutoscalingTimeouts(5*time.Minute), fakeNotifier)
	return cluster, fakeNotifier
}

func testGroup(name string, provider structs.ScalingProvider) *structs.Group {
	return &structs.Group{
		Name:         name,
		Region:       "us-east-1",
		InstanceType: "m4.large",
		UnitCapacity: structs.Resource{CPUMillis: 2000, MemoryMB: 8192, Pods: 110},
		MaxSize:      10,
		Labels:       map[string]string{"role": "web"},
		Provider:     provider,
	}
}

func testPendingPods(names ...string) structs.PendingPods {
	pendingPods := make(structs.PendingPods)
	for _, name := range names {
		pod := structs.NewPod(name, "default",
			structs.Resource{CPUMillis: 1000, MemoryMB: 512, Pods: 1},
			map[string]string{"role": "web"}, nil)
		pendingPods[pod.SelectorsHash] = append(pendingPods[pod.SelectorsHash], pod)
	}
	return pendingPods
}

func TestScalingPolicy_BasicScalesToFitPendingPods(t *testing.T) {
	cluster, fakeNotifier := testCluster(0)
	provider := &testutil.FakeScalingProvider{}
	group := testGroup("workers-a", provider)

	pendingPods := testPendingPods("web-1", "web-2", "web-3")
	cluster.UpdateSelectors(pendingPods)

	NewBasicScalingPolicy().Apply(pendingPods, []*structs.Group{group}, cluster)

	calls := provider.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 scale call but got %v", len(calls))
	}
	if calls[0].NewCapacity != 2 {
		t.Fatalf("expected new capacity 2 but got %v", calls[0].NewCapacity)
	}

	if len(fakeNotifier.ScaleMessages) != 1 {
		t.Fatalf("expected 1 scale notification but got %v",
			len(fakeNotifier.ScaleMessages))
	}
	message := fakeNotifier.ScaleMessages[0]
	if message.UnitsRequested != 2 || len(message.Pods) != 3 {
		t.Fatalf("expected 2 units for 3 pods but got %v units for %v",
			message.UnitsRequested, message.Pods)
	}
}

func TestScalingPolicy_HonorsOverProvision(t *testing.T) {
	cluster, _ := testCluster(1)
	provider := &testutil.FakeScalingProvider{}
	group := testGroup("workers-a", provider)

	pendingPods := testPendingPods("web-1")
	cluster.UpdateSelectors(pendingPods)

	NewBasicScalingPolicy().Apply(pendingPods, []*structs.Group{group}, cluster)

	calls := provider.Calls()
	if len(calls) != 1 || calls[0].NewCapacity != 2 {
		t.Fatalf("expected new capacity 2 with over-provisioning but got %v", calls)
	}
}

func TestScalingPolicy_NeverExceedsMaxSize(t *testing.T) {
	cluster, _ := testCluster(0)
	provider := &testutil.FakeScalingProvider{}
	group := testGroup("workers-a", provider)
	group.ActualCapacity = 8
	group.DesiredCapacity = 8

	pendingPods := testPendingPods("web-1", "web-2", "web-3", "web-4",
		"web-5", "web-6", "web-7", "web-8")
	cluster.UpdateSelectors(pendingPods)

	NewBasicScalingPolicy().Apply(pendingPods, []*structs.Group{group}, cluster)

	calls := provider.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 scale call but got %v", len(calls))
	}
	if calls[0].NewCapacity > group.MaxSize {
		t.Fatalf("new capacity %v exceeds max size %v",
			calls[0].NewCapacity, group.MaxSize)
	}
	if calls[0].NewCapacity != 10 {
		t.Fatalf("expected new capacity 10 but got %v", calls[0].NewCapacity)
	}
}

func TestScalingPolicy_SkipsGroupAtCeiling(t *testing.T) {
	cluster, _ := testCluster(0)
	provider := &testutil.FakeScalingProvider{}
	group := testGroup("workers-a", provider)
	group.ActualCapacity = 10
	group.DesiredCapacity = 10

	pendingPods := testPendingPods("web-1")
	cluster.UpdateSelectors(pendingPods)

	NewBasicScalingPolicy().Apply(pendingPods, []*structs.Group{group}, cluster)

	if len(provider.Calls()) != 0 {
		t.Fatalf("expected no scale calls but got %v", provider.Calls())
	}
}

func TestScalingPolicy_TimedOutGroupUsesDesiredHeadroom(t *testing.T) {
	cluster, _ := testCluster(0)
	provider := &testutil.FakeScalingProvider{}

	group := testGroup("workers-a", provider)
	group.ActualCapacity = 1
	group.DesiredCapacity = 3
	group.UnschedulableNodes = true
	group.CooldownUntil = time.Now().Add(time.Minute)

	// Five pods need 3 units; the timed out group only gets credited with
	// capacity already committed, so nothing new is requested beyond it.
	pendingPods := testPendingPods("web-1", "web-2", "web-3", "web-4", "web-5")
	cluster.UpdateSelectors(pendingPods)

	NewBasicScalingPolicy().Apply(pendingPods, []*structs.Group{group}, cluster)

	calls := provider.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 scale call but got %v", len(calls))
	}
	if calls[0].NewCapacity != 3 {
		t.Fatalf("expected new capacity 3 but got %v", calls[0].NewCapacity)
	}
}

func TestScalingPolicy_SkipsTimedOutGroupWithoutUnschedulableNodes(t *testing.T) {
	cluster, _ := testCluster(0)
	provider := &testutil.FakeScalingProvider{}
	group := testGroup("workers-a", provider)
	group.CooldownUntil = time.Now().Add(time.Minute)

	pendingPods := testPendingPods("web-1")
	cluster.UpdateSelectors(pendingPods)

	NewBasicScalingPolicy().Apply(pendingPods, []*structs.Group{group}, cluster)

	if len(provider.Calls()) != 0 {
		t.Fatalf("expected no scale calls but got %v", provider.Calls())
	}
}

func TestScalingPolicy_PrioritizesGroups(t *testing.T) {
	cluster, _ := testCluster(0)
	providerA := &testutil.FakeScalingProvider{}
	providerB := &testutil.FakeScalingProvider{}

	groupA := testGroup("workers-a", providerA)
	groupA.Priority = 10
	groupB := testGroup("workers-b", providerB)
	groupB.Priority = 1

	pendingPods := testPendingPods("web-1")
	cluster.UpdateSelectors(pendingPods)

	NewBasicScalingPolicy().Apply(pendingPods,
		[]*structs.Group{groupA, groupB}, cluster)

	if len(providerB.Calls()) != 1 {
		t.Fatalf("expected the priority group to scale but got %v",
			providerB.Calls())
	}
}

func TestScalingPolicy_IgnoresGroupsWithMismatchedLabels(t *testing.T) {
	cluster, _ := testCluster(0)
	provider := &testutil.FakeScalingProvider{}
	group := testGroup("workers-a", provider)
	group.Labels = map[string]string{"role": "batch"}

	pendingPods := testPendingPods("web-1")
	cluster.UpdateSelectors(pendingPods)

	NewBasicScalingPolicy().Apply(pendingPods, []*structs.Group{group}, cluster)

	if len(provider.Calls()) != 0 {
		t.Fatalf("expected no scale calls but got %v", provider.Calls())
	}
}

func TestScalingPolicy_FailedScaleNotifiesWithoutAborting(t *testing.T) {
	cluster, fakeNotifier := testCluster(0)

	failing := &testutil.FakeScalingProvider{Err: errors.New("api throttled")}
	group := testGroup("workers-a", failing)

	pendingPods := testPendingPods("web-1")
	cluster.UpdateSelectors(pendingPods)

	NewBasicScalingPolicy().Apply(pendingPods, []*structs.Group{group}, cluster)

	if len(fakeNotifier.ScaleMessages) != 0 {
		t.Fatalf("expected no scale notification on failure but got %v",
			fakeNotifier.ScaleMessages)
	}
	if len(fakeNotifier.Failures) != 1 {
		t.Fatalf("expected 1 failure notification but got %v",
			len(fakeNotifier.Failures))
	}
}

func TestScalingPolicy_ScaleTimeoutOnlyLogs(t *testing.T) {
	cluster, fakeNotifier := testCluster(0)

	sluggish := &testutil.FakeScalingProvider{Err: structs.ErrScaleTimeout}
	group := testGroup("workers-a", sluggish)

	pendingPods := testPendingPods("web-1")
	cluster.UpdateSelectors(pendingPods)

	NewBasicScalingPolicy().Apply(pendingPods, []*structs.Group{group}, cluster)

	if len(fakeNotifier.ScaleMessages) != 0 || len(fakeNotifier.Failures) != 0 {
		t.Fatalf("expected no notifications on timeout but got %v scale, %v failure",
			len(fakeNotifier.ScaleMessages), len(fakeNotifier.Failures))
	}
}
