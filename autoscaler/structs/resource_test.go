package structs

import "testing"

func TestResource_Subtract(t *testing.T) {
	capacity := Resource{CPUMillis: 2000, MemoryMB: 8192, GPU: 1, Pods: 110}
	request := Resource{CPUMillis: 500, MemoryMB: 1024, Pods: 1}

	residual := capacity.Subtract(request)

	if residual.CPUMillis != 1500 || residual.MemoryMB != 7168 ||
		residual.GPU != 1 || residual.Pods != 109 {
		t.Fatalf("unexpected residual %v", residual)
	}

	// The receiver is unchanged.
	if capacity.CPUMillis != 2000 {
		t.Fatalf("expected receiver untouched but got %v", capacity)
	}
}

func TestResource_IsFeasible(t *testing.T) {
	if !(Resource{}).IsFeasible() {
		t.Fatal("expected the zero resource to be feasible")
	}
	if (Resource{CPUMillis: -1}).IsFeasible() {
		t.Fatal("expected negative cpu to be infeasible")
	}
	if (Resource{GPU: -1}).IsFeasible() {
		t.Fatal("expected negative gpu to be infeasible")
	}
}

func TestResource_SubtractOvercommit(t *testing.T) {
	capacity := Resource{CPUMillis: 1000, MemoryMB: 1024, Pods: 10}
	request := Resource{CPUMillis: 2000, MemoryMB: 512, Pods: 1}

	if capacity.Subtract(request).IsFeasible() {
		t.Fatal("expected overcommitted residual to be infeasible")
	}
}
