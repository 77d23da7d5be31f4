package helper

import (
	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
)

// Max returns the largest float from a variable length list of floats.
func Max(values ...float64) float64 {
	max := values[0]
	for _, i := range values[1:] {
		if i > max {
			max = i
		}
	}

	return max
}

// Min returns the smallest float from a variable length list of floats.
func Min(values ...float64) float64 {
	min := values[0]
	for _, i := range values[1:] {
		if i < min {
			min = i
		}
	}
	return min
}

// MaxInt returns the largest int from a variable length list of ints.
func MaxInt(values ...int) int {
	max := values[0]
	for _, i := range values[1:] {
		if i > max {
			max = i
		}
	}

	return max
}

// MinInt returns the smallest int from a variable length list of ints.
func MinInt(values ...int) int {
	min := values[0]
	for _, i := range values[1:] {
		if i < min {
			min = i
		}
	}
	return min
}

// FlattenPods collapses a per-unit pod assignment into a single slice of pod
// identifiers.
func FlattenPods(assignedPods [][]*structs.Pod) []string {
	var flat []string
	for _, unitPods := range assignedPods {
		for _, pod := range unitPods {
			flat = append(flat, pod.ID())
		}
	}
	return flat
}

// StringInSlice reports whether the needle is present in the haystack.
func StringInSlice(needle string, haystack []string) bool {
	for _, candidate := range haystack {
		if candidate == needle {
			return true
		}
	}
	return false
}
