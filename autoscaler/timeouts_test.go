package autoscaler

import (
	"testing"
	"time"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
)

func TestTimeouts_RecordFailureStartsCooldown(t *testing.T) {
	timeouts := NewAutoscalingTimeouts(5 * time.Minute)
	group := &structs.Group{Name: "workers-a"}

	if timeouts.IsTimedOut(group) {
		t.Fatal("expected fresh group to not be timed out")
	}

	timeouts.RecordFailure(group)

	if !timeouts.IsTimedOut(group) {
		t.Fatal("expected group to be timed out after failure")
	}
}

func TestTimeouts_CooldownExpires(t *testing.T) {
	timeouts := NewAutoscalingTimeouts(time.Millisecond)
	group := &structs.Group{Name: "workers-a"}

	timeouts.RecordFailure(group)
	time.Sleep(5 * time.Millisecond)

	if timeouts.IsTimedOut(group) {
		t.Fatal("expected cooldown to have expired")
	}
}

func TestTimeouts_ClearRemovesCooldown(t *testing.T) {
	timeouts := NewAutoscalingTimeouts(5 * time.Minute)
	group := &structs.Group{Name: "workers-a"}

	timeouts.RecordFailure(group)
	timeouts.Clear(group)

	if timeouts.IsTimedOut(group) {
		t.Fatal("expected cleared group to not be timed out")
	}
}
