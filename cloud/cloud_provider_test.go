package cloud

import (
	"testing"

	"github.com/PSilvestre/kubernetes-ec2-autoscaler/autoscaler/structs"
)

// Validate required parameters are correctly detected as missing when
// setting up a scaling provider.
func TestScalingProvider_ProviderFactory(t *testing.T) {
	// Verify an exception is thrown when we specify an invalid scaling
	// provider.
	config := &structs.Config{Region: "us-east-1"}

	if _, err := NewScalingProvider("foo", config, nil); err == nil {
		t.Fatalf("no exception was raised when we attempted to create a scaling " +
			"provider with an invalid provider type")
	}

	// Verify an exception is thrown when we specify a valid scaling provider
	// but don't include the required region.
	if _, err := NewScalingProvider("aws", &structs.Config{}, nil); err == nil {
		t.Fatalf("no exception was raised when we specified a valid scaling " +
			"provider but failed to include all required configuration parameters")
	}

	// Verify no exception is raised when we pass all required parameters.
	if _, err := NewScalingProvider("aws", config, nil); err != nil {
		t.Fatalf("an exception was raised when we specified a valid scaling " +
			"provider and all required configuration parameters: %v", err)
	}
}
