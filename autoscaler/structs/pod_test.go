package structs

import "testing"

func TestToleration_Tolerates(t *testing.T) {
	taint := Taint{Key: "dedicated", Value: "batch", Effect: "NoSchedule"}

	cases := []struct {
		name       string
		toleration Toleration
		expected   bool
	}{
		{"equal match", Toleration{Key: "dedicated", Operator: TolerationOpEqual,
			Value: "batch", Effect: "NoSchedule"}, true},
		{"equal mismatch", Toleration{Key: "dedicated", Operator: TolerationOpEqual,
			Value: "gpu", Effect: "NoSchedule"}, false},
		{"exists ignores value", Toleration{Key: "dedicated",
			Operator: TolerationOpExists, Effect: "NoSchedule"}, true},
		{"empty effect matches all", Toleration{Key: "dedicated",
			Operator: TolerationOpExists}, true},
		{"effect mismatch", Toleration{Key: "dedicated",
			Operator: TolerationOpExists, Effect: "NoExecute"}, false},
		{"key mismatch", Toleration{Key: "other",
			Operator: TolerationOpExists}, false},
		{"empty operator behaves as equal", Toleration{Key: "dedicated",
			Value: "batch"}, true},
	}

	for _, tc := range cases {
		if got := tc.toleration.Tolerates(taint); got != tc.expected {
			t.Fatalf("%s: expected %v but got %v", tc.name, tc.expected, got)
		}
	}
}

func TestPod_GroupKey(t *testing.T) {
	podA := NewPod("web-1", "default", Resource{CPUMillis: 100},
		map[string]string{"role": "web"}, nil)
	podB := NewPod("web-2", "default", Resource{CPUMillis: 200},
		map[string]string{"role": "web"}, nil)
	podC := NewPod("batch-1", "default", Resource{CPUMillis: 100},
		map[string]string{"role": "batch"}, nil)

	if podA.SelectorsHash != podB.SelectorsHash {
		t.Fatal("expected pods with identical selectors to share a group key")
	}
	if podA.SelectorsHash == podC.SelectorsHash {
		t.Fatal("expected pods with different selectors to have distinct group keys")
	}
}

func TestPendingPods_Count(t *testing.T) {
	podA := NewPod("web-1", "default", Resource{}, map[string]string{"role": "web"}, nil)
	podB := NewPod("batch-1", "default", Resource{}, map[string]string{"role": "batch"}, nil)

	pendingPods := PendingPods{
		podA.SelectorsHash: {podA},
		podB.SelectorsHash: {podB},
	}

	if count := pendingPods.Count(); count != 2 {
		t.Fatalf("expected 2 pending pods but got %v", count)
	}
}
