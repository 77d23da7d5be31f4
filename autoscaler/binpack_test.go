package autoscaler

import (
	"testing"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
)

func testPackGroup() *structs.Group {
	return &structs.Group{
		Name:         "workers-a",
		InstanceType: "m4.large",
		UnitCapacity: structs.Resource{CPUMillis: 2000, MemoryMB: 8192, Pods: 110},
		MaxSize:      10,
	}
}

func testPackPod(name string, cpuMillis int64) *structs.Pod {
	return &structs.Pod{
		Name:      name,
		Namespace: "default",
		Resources: structs.Resource{CPUMillis: cpuMillis, MemoryMB: 512, Pods: 1},
	}
}

func TestBinpack_FirstFit(t *testing.T) {
	group := testPackGroup()
	pods := []*structs.Pod{
		testPackPod("web-1", 1000),
		testPackPod("web-2", 1000),
		testPackPod("web-3", 1000),
	}

	bins, assignedPods := packPods(group, pods)

	if len(bins) != 2 {
		t.Fatalf("expected 2 bins but got %v", len(bins))
	}
	if len(assignedPods[0]) != 2 || len(assignedPods[1]) != 1 {
		t.Fatalf("expected pod split 2/1 but got %v/%v",
			len(assignedPods[0]), len(assignedPods[1]))
	}
}

func TestBinpack_FirstFitReusesResidual(t *testing.T) {
	group := testPackGroup()
	pods := []*structs.Pod{
		testPackPod("web-1", 1500),
		testPackPod("web-2", 400),
		testPackPod("web-3", 700),
	}

	bins, assignedPods := packPods(group, pods)

	if len(bins) != 2 {
		t.Fatalf("expected 2 bins but got %v", len(bins))
	}

	// The 400m pod lands in the first bin's residual, the 700m pod opens a
	// second bin.
	if len(assignedPods[0]) != 2 {
		t.Fatalf("expected first bin to hold 2 pods but got %v",
			len(assignedPods[0]))
	}
}

func TestBinpack_SkipsOversizedPod(t *testing.T) {
	group := testPackGroup()
	pods := []*structs.Pod{
		testPackPod("huge-1", 4000),
		testPackPod("web-1", 1000),
	}

	bins, assignedPods := packPods(group, pods)

	if len(bins) != 1 {
		t.Fatalf("expected 1 bin but got %v", len(bins))
	}
	if len(assignedPods[0]) != 1 || assignedPods[0][0].Name != "web-1" {
		t.Fatalf("expected only web-1 to be packed but got %v", assignedPods[0])
	}
}

func TestBinpack_SkipsUntoleratedPod(t *testing.T) {
	group := testPackGroup()
	group.Taints = []structs.Taint{
		{Key: "dedicated", Value: "batch", Effect: "NoSchedule"},
	}

	plain := testPackPod("web-1", 1000)
	tolerant := testPackPod("batch-1", 1000)
	tolerant.Tolerations = []structs.Toleration{
		{Key: "dedicated", Operator: structs.TolerationOpEqual,
			Value: "batch", Effect: "NoSchedule"},
	}

	bins, assignedPods := packPods(group, []*structs.Pod{plain, tolerant})

	if len(bins) != 1 {
		t.Fatalf("expected 1 bin but got %v", len(bins))
	}
	if assignedPods[0][0].Name != "batch-1" {
		t.Fatalf("expected batch-1 to be packed but got %v",
			assignedPods[0][0].Name)
	}
}

func TestBinpack_NoFeasiblePods(t *testing.T) {
	group := testPackGroup()

	bins, _ := packPods(group, []*structs.Pod{testPackPod("huge-1", 9000)})

	if len(bins) != 0 {
		t.Fatalf("expected no bins but got %v", len(bins))
	}
}
