package autoscaler

import (
	"testing"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/testutil"
)

func testRunner(t *testing.T, config *structs.Config) (*Runner, *testutil.FakeScalingProvider) {
	provider := &testutil.FakeScalingProvider{}

	runner, err := NewRunner(config, NewBasicScalingPolicy(), provider)
	if err != nil {
		t.Fatal(err)
	}

	// The fake provider does not refresh capacity limits from a cloud API,
	// so the ceiling is set directly.
	for _, group := range runner.groups {
		group.MaxSize = 10
	}

	return runner, provider
}

func testRunnerConfig(pendingPods structs.PendingPods) *structs.Config {
	return &structs.Config{
		ConsulKeyRoot:   "autoscaler/config",
		ScalingInterval: 10,
		ConsulClient:    &testutil.FakeConsulClient{},
		KubeClient:      &testutil.FakeKubeClient{Pods: pendingPods},
		Policy:          &structs.PolicyConfig{Name: structs.PolicyBasic},
		Notification:    &structs.Notification{},
		NodeGroups: []*structs.NodeGroupConfig{
			{
				Name:         "workers-a",
				InstanceType: "m4.large",
				CPUMillis:    2000,
				MemoryMB:     8192,
				MaxPods:      110,
				Labels:       map[string]string{"role": "web"},
			},
		},
	}
}

func TestRunner_CycleScalesPendingPods(t *testing.T) {
	config := testRunnerConfig(testPendingPods("web-1", "web-2", "web-3"))
	runner, provider := testRunner(t, config)

	runner.Cycle()

	calls := provider.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 scale call but got %v", len(calls))
	}
	if calls[0].GroupName != "workers-a" || calls[0].NewCapacity != 2 {
		t.Fatalf("expected workers-a to be scaled to 2 but got %v", calls)
	}
}

func TestRunner_CycleHonorsFailsafeMode(t *testing.T) {
	config := testRunnerConfig(testPendingPods("web-1"))
	runner, provider := testRunner(t, config)

	state := &structs.ScalingState{FailsafeMode: true}
	if err := config.ConsulClient.PersistState("autoscaler/config/state", state); err != nil {
		t.Fatal(err)
	}

	runner.Cycle()

	if calls := provider.Calls(); len(calls) != 0 {
		t.Fatalf("expected no scale calls in failsafe mode but got %v", calls)
	}
}

func TestRunner_CycleHonorsScalingDisable(t *testing.T) {
	config := testRunnerConfig(testPendingPods("web-1"))
	config.ScalingDisable = true
	runner, provider := testRunner(t, config)

	runner.Cycle()

	if calls := provider.Calls(); len(calls) != 0 {
		t.Fatalf("expected no scale calls while scaling is disabled but got %v", calls)
	}
}
