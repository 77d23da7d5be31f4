package autoscaler

import (
	"testing"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/testutil"
)

func TestFailsafe_FailsafeCheck(t *testing.T) {
	state := &structs.ScalingState{}

	// Test circuit breaker.
	state.FailsafeMode = true
	if FailsafeCheck(state) {
		t.Fatal("expected FailsafeCheck to answer false but got true")
	}

	state.FailsafeMode = false
	if !FailsafeCheck(state) {
		t.Fatal("expected FailsafeCheck to answer true but got false")
	}
}

func TestFailsafe_SetFailsafeMode(t *testing.T) {
	consul := &testutil.FakeConsulClient{}
	config := &structs.Config{
		ConsulKeyRoot: "autoscaler/config",
		ConsulClient:  consul,
	}

	state := &structs.ScalingState{}

	if err := SetFailsafeMode(state, config, true); err != nil {
		t.Fatal(err)
	}
	if !state.FailsafeMode {
		t.Fatal("expected FailsafeMode to be true but got false")
	}

	// The persisted copy must carry the lock so other daemons observe it.
	persisted := &structs.ScalingState{}
	if !consul.ReadState("autoscaler/config/state", persisted) {
		t.Fatal("expected persisted state to be found")
	}
	if !persisted.FailsafeMode {
		t.Fatal("expected persisted FailsafeMode to be true but got false")
	}

	if err := SetFailsafeMode(state, config, false); err != nil {
		t.Fatal(err)
	}
	if state.FailsafeMode {
		t.Fatal("expected FailsafeMode to be false but got true")
	}
}
