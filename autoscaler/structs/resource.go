package structs

import "fmt"

// Resource is a multi-dimensional capacity or requirement vector. Each field
// represents one schedulable dimension of a worker node or workload unit.
// Resource values are passed by value; arithmetic never mutates the receiver.
type Resource struct {
	// CPUMillis is the CPU dimension in millicores (1000 = 1 vCPU).
	CPUMillis int64 `json:"cpu_millis"`

	// MemoryMB is the memory dimension in megabytes.
	MemoryMB int64 `json:"memory_mb"`

	// GPU is the number of GPU devices.
	GPU int64 `json:"gpu"`

	// Pods is the scheduling slot dimension; a fresh node can host at most
	// this many workload units regardless of remaining compute headroom.
	Pods int64 `json:"pods"`
}

// Subtract returns a new Resource with each dimension of other subtracted
// from the receiver. Dimensions may go negative; use IsFeasible to test the
// result.
func (r Resource) Subtract(other Resource) Resource {
	return Resource{
		CPUMillis: r.CPUMillis - other.CPUMillis,
		MemoryMB:  r.MemoryMB - other.MemoryMB,
		GPU:       r.GPU - other.GPU,
		Pods:      r.Pods - other.Pods,
	}
}

// Add returns a new Resource with each dimension of other added to the
// receiver.
func (r Resource) Add(other Resource) Resource {
	return Resource{
		CPUMillis: r.CPUMillis + other.CPUMillis,
		MemoryMB:  r.MemoryMB + other.MemoryMB,
		GPU:       r.GPU + other.GPU,
		Pods:      r.Pods + other.Pods,
	}
}

// IsFeasible reports whether every dimension of the vector is non-negative,
// meaning the capacity it represents is actually available.
func (r Resource) IsFeasible() bool {
	return r.CPUMillis >= 0 && r.MemoryMB >= 0 && r.GPU >= 0 && r.Pods >= 0
}

func (r Resource) String() string {
	return fmt.Sprintf("(cpu: %vm, memory: %vMB, gpu: %v, pods: %v)",
		r.CPUMillis, r.MemoryMB, r.GPU, r.Pods)
}
